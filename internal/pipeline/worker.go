package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/ingest"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/metrics"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// classifiedSheet is a decoded sheet with its detected kind.
type classifiedSheet struct {
	sheet sheet.Sheet
	kind  Kind
}

// decodedFile is the first-phase output for one input.
type decodedFile struct {
	input   Input
	sheets  []classifiedSheet
	err     error
	elapsed time.Duration
}

// fileOutput is the parse result of one file; outputs are gathered by index
// after all workers finished.
type fileOutput struct {
	report     FileReport
	complaints []domain.Complaint
	deliveries []domain.Delivery
	deviations []domain.Deviation
	ppaps      []domain.PPAPNotification
	plants     []domain.Plant
}

// forEach runs fn for every index with at most workers goroutines. fn records
// per-item failures in its output; only context cancellation stops the pool.
func forEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int)) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func decodeInput(in Input) decodedFile {
	start := time.Now()
	df := decodedFile{input: in}

	sheets, err := sheet.Decode(in.Name, in.Data)
	if err != nil {
		df.err = err
		df.elapsed = time.Since(start)
		return df
	}
	for _, s := range sheets {
		kind := in.Kind
		if kind == KindUnknown {
			kind = DetectKind(in.Name, s.Name, s.Header())
		}
		df.sheets = append(df.sheets, classifiedSheet{sheet: s, kind: kind})
	}
	df.elapsed = time.Since(start)
	return df
}

// parseFile runs the record parser of every classified sheet accepted by
// include. The report status is set by finish once all phases ran.
func parseFile(p *ingest.Parser, df decodedFile, include func(Kind) bool) fileOutput {
	start := time.Now()
	out := fileOutput{report: FileReport{Name: df.input.Name}}
	if df.err != nil {
		return out
	}

	for _, cs := range df.sheets {
		if !include(cs.kind) {
			continue
		}
		sr := SheetReport{Sheet: cs.sheet.Name, Kind: cs.kind}
		if cs.kind == KindUnknown {
			sr.Error = "sheet does not match any known export"
			out.report.Sheets = append(out.report.Sheets, sr)
			continue
		}

		if err := parseSheet(p, cs, df.input.Name, &out, &sr); err != nil {
			sr.Error = err.Error()
			var colErr *ingest.ColumnResolutionError
			if errors.As(err, &colErr) {
				sr.MissingColumns = colErr.Missing
			}
		}
		metrics.RowsParsed.WithLabelValues(string(cs.kind)).Add(float64(sr.RowsRead))
		metrics.RowsSkipped.WithLabelValues(string(cs.kind)).Add(float64(sr.RowsSkipped))
		out.report.Sheets = append(out.report.Sheets, sr)
	}
	out.report.Duration = time.Since(start)
	return out
}

// merge appends the records and sheet reports of other to o.
func (o *fileOutput) merge(other fileOutput) {
	o.report.Sheets = append(o.report.Sheets, other.report.Sheets...)
	o.report.Duration += other.report.Duration
	o.complaints = append(o.complaints, other.complaints...)
	o.deliveries = append(o.deliveries, other.deliveries...)
	o.deviations = append(o.deviations, other.deviations...)
	o.ppaps = append(o.ppaps, other.ppaps...)
	o.plants = append(o.plants, other.plants...)
}

// finish sets the file status: failed when decoding failed or no sheet parsed.
func (o *fileOutput) finish(df decodedFile) {
	o.report.Duration += df.elapsed
	if df.err != nil {
		o.report.Status = FileStatusFailed
		o.report.Error = df.err.Error()
		return
	}
	for _, s := range o.report.Sheets {
		if s.Error == "" {
			o.report.Status = FileStatusCompleted
			return
		}
	}
	o.report.Status = FileStatusFailed
	o.report.Error = firstSheetError(o.report.Sheets)
}

func parseSheet(p *ingest.Parser, cs classifiedSheet, fileName string, out *fileOutput, sr *SheetReport) error {
	switch cs.kind {
	case KindComplaints:
		res, err := p.ParseComplaints(cs.sheet, fileName)
		fill(sr, res)
		for _, c := range res.Records {
			metrics.Conversions.WithLabelValues(string(c.ConversionStatus())).Inc()
		}
		out.complaints = append(out.complaints, res.Records...)
		return err
	case KindDeliveries:
		res, err := p.ParseDeliveries(cs.sheet, fileName)
		fill(sr, res)
		out.deliveries = append(out.deliveries, res.Records...)
		return err
	case KindDeviations:
		res, err := p.ParseDeviations(cs.sheet, fileName)
		fill(sr, res)
		out.deviations = append(out.deviations, res.Records...)
		return err
	case KindPPAP:
		res, err := p.ParsePPAP(cs.sheet, fileName)
		fill(sr, res)
		out.ppaps = append(out.ppaps, res.Records...)
		return err
	case KindPlants:
		res, err := p.ParsePlants(cs.sheet, fileName)
		fill(sr, res)
		out.plants = append(out.plants, res.Records...)
		return err
	}
	return fmt.Errorf("no parser for kind %q", cs.kind)
}

func fill[T any](sr *SheetReport, res ingest.Result[T]) {
	sr.Records = len(res.Records)
	sr.RowsRead = res.RowsRead
	sr.RowsSkipped = res.RowsSkipped
	sr.Warnings = res.Warnings
}

func firstSheetError(sheets []SheetReport) string {
	for _, s := range sheets {
		if s.Error != "" {
			return s.Error
		}
	}
	return "no sheet to parse"
}

// fileKind labels a report for metrics: the kind of its first parsed sheet.
func fileKind(r FileReport) string {
	for _, s := range r.Sheets {
		if s.Error == "" {
			return string(s.Kind)
		}
	}
	if len(r.Sheets) > 0 {
		return string(r.Sheets[0].Kind)
	}
	return "unknown"
}
