package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
)

// ErrRunNotFound is what RunStore implementations return for unknown ids.
var ErrRunNotFound = errors.New("run not found")

type RunStore interface {
	GetRun(ctx context.Context, id int64) (*pipeline.Run, error)
	ListRuns(ctx context.Context, limit int) ([]pipeline.Run, error)
	FileReports(ctx context.Context, runID int64) ([]pipeline.FileReport, error)
}

type RunHandler struct {
	runs     RunStore
	notFound func(error) bool
}

// NewRunHandler creates the ingestion history endpoints; notFound classifies
// the store's missing-run error.
func NewRunHandler(runs RunStore, notFound func(error) bool) *RunHandler {
	if notFound == nil {
		notFound = func(err error) bool { return errors.Is(err, ErrRunNotFound) }
	}
	return &RunHandler{runs: runs, notFound: notFound}
}

func (h *RunHandler) ListRuns(c *gin.Context) {
	runs, err := h.runs.ListRuns(c.Request.Context(), parsePositiveIntWithDefault(c.Query("limit"), 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GetRun returns one run with the reports of its files.
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		if h.notFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch run"})
		return
	}
	files, err := h.runs.FileReports(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch file reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "files": files})
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if fallback <= 0 {
		fallback = 50
	}
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
