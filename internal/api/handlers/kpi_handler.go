package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/service"
)

// KpiService is what the KPI endpoints need from the service layer.
type KpiService interface {
	Ingest(ctx context.Context, inputs []pipeline.Input) (*service.IngestReport, error)
	List(ctx context.Context, filter domain.KpiFilter) (*cache.KpiView, error)
	GlobalPPM(ctx context.Context, filter domain.KpiFilter) (domain.GlobalPpm, error)
	SaveManual(ctx context.Context, entries []domain.MonthlySiteKpi) ([]domain.MonthlySiteKpi, error)
	Recalculate(ctx context.Context, req service.RecalculateRequest) (*service.RecalculateResult, error)
}

type KpiHandler struct {
	svc            KpiService
	maxUploadBytes int64
	log            zerolog.Logger
}

func NewKpiHandler(svc KpiService, maxUploadBytes int64, log zerolog.Logger) *KpiHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	return &KpiHandler{svc: svc, maxUploadBytes: maxUploadBytes, log: log}
}

// Upload parses the multipart "files" and stores the resulting KPIs. An
// optional "kind" form value forces the export type of every file.
func (h *KpiHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.error(c, http.StatusRequestEntityTooLarge, "upload exceeds size limit", err)
			return
		}
		h.error(c, http.StatusBadRequest, "invalid form data", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		h.error(c, http.StatusBadRequest, "no files provided", nil)
		return
	}

	kind := pipeline.KindUnknown
	if raw := strings.TrimSpace(c.PostForm("kind")); raw != "" {
		k, ok := pipeline.ParseKind(strings.ToLower(raw))
		if !ok {
			h.error(c, http.StatusBadRequest, fmt.Sprintf("unknown kind %q", raw), nil)
			return
		}
		kind = k
	}

	inputs := make([]pipeline.Input, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			h.error(c, http.StatusBadRequest, fmt.Sprintf("failed to read %s", fh.Filename), err)
			return
		}
		inputs = append(inputs, pipeline.Input{Name: fh.Filename, Data: data, Kind: kind})
	}

	report, err := h.svc.Ingest(c.Request.Context(), inputs)
	if err != nil {
		h.serviceError(c, "failed to process files", err)
		return
	}

	status := http.StatusOK
	if allFailed(report.Files) {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, report)
}

// ListKpis returns the stored KPIs, filtered by ?from=YYYY-MM&to=YYYY-MM&sites=A,B.
func (h *KpiHandler) ListKpis(c *gin.Context) {
	view, err := h.svc.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.serviceError(c, "failed to fetch kpis", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *KpiHandler) GetGlobalPPM(c *gin.Context) {
	ppm, err := h.svc.GlobalPPM(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.serviceError(c, "failed to compute global ppm", err)
		return
	}
	c.JSON(http.StatusOK, ppm)
}

// SaveKpis stores manually entered KPIs over the stored ones.
func (h *KpiHandler) SaveKpis(c *gin.Context) {
	var entries []domain.MonthlySiteKpi
	if err := c.ShouldBindJSON(&entries); err != nil {
		h.error(c, http.StatusBadRequest, "invalid kpi payload", err)
		return
	}
	merged, err := h.svc.SaveManual(c.Request.Context(), entries)
	if err != nil {
		h.serviceError(c, "failed to save kpis", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kpis": merged})
}

func (h *KpiHandler) Recalculate(c *gin.Context) {
	var req service.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, http.StatusBadRequest, "invalid recalculation payload", err)
		return
	}
	res, err := h.svc.Recalculate(c.Request.Context(), req)
	if err != nil {
		h.serviceError(c, "failed to recalculate kpis", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func filterFromQuery(c *gin.Context) domain.KpiFilter {
	f := domain.KpiFilter{
		FromMonth: strings.TrimSpace(c.Query("from")),
		ToMonth:   strings.TrimSpace(c.Query("to")),
	}
	for _, v := range c.QueryArray("sites") {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Sites = append(f.Sites, s)
			}
		}
	}
	return f
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func allFailed(files []pipeline.FileReport) bool {
	for _, f := range files {
		if f.Status != pipeline.FileStatusFailed {
			return false
		}
	}
	return len(files) > 0
}

func (h *KpiHandler) serviceError(c *gin.Context, message string, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		h.error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	h.error(c, http.StatusInternalServerError, message, err)
}

func (h *KpiHandler) error(c *gin.Context, status int, message string, err error) {
	event := h.log.Warn()
	if status >= http.StatusInternalServerError {
		event = h.log.Error()
	}
	event.Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(status, gin.H{"error": message})
}
