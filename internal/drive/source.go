package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// FileAPI is the part of the Drive API the source needs.
type FileAPI interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, f *File, w io.Writer) error
}

// Source pulls the exports of one Drive folder into memory.
type Source struct {
	api FileAPI
	log zerolog.Logger
}

func NewSource(api FileAPI, log zerolog.Logger) *Source {
	return &Source{api: api, log: log}
}

// Inputs downloads every csv, xlsx and Google Sheets file of the folder,
// ordered by name. Other files are skipped.
func (s *Source) Inputs(ctx context.Context, folderID string) ([]pipeline.Input, error) {
	files, err := s.api.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var inputs []pipeline.Input
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := f.Name
		if f.IsSpreadsheet() && !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
			name += ".xlsx"
		}
		if !sheet.Supported(name) {
			s.log.Debug().Str("file", f.Name).Str("mime_type", f.MimeType).Msg("skipping unsupported drive file")
			continue
		}

		var buf bytes.Buffer
		if err := s.api.DownloadFile(ctx, f, &buf); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		inputs = append(inputs, pipeline.Input{Name: name, Data: buf.Bytes()})
	}

	s.log.Info().Str("folder_id", folderID).Int("files", len(inputs)).Msg("drive exports downloaded")
	return inputs, nil
}
