// Package ingest turns decoded sheets into typed quality records.
//
// Each parser resolves its columns once per sheet, then maps every data row.
// Row-level problems become warnings and the row is skipped; only a sheet whose
// required columns cannot be found fails as a whole (ColumnResolutionError).
package ingest

import (
	"github.com/rs/zerolog"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/columns"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/units"
)

// Parser carries the dependencies shared by the record parsers. It holds no
// mutable state, so one Parser may be used from several goroutines.
type Parser struct {
	units       *units.Resolver
	plants      *PlantDirectory
	log         zerolog.Logger
	defaultKind domain.DeliveryKind
}

type Option func(*Parser)

func WithUnits(r *units.Resolver) Option {
	return func(p *Parser) { p.units = r }
}

// WithPlants supplies plant master data used to resolve plant names and site codes.
func WithPlants(dir *PlantDirectory) Option {
	return func(p *Parser) { p.plants = dir }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) { p.log = l }
}

// WithDefaultDeliveryKind sets the kind used for delivery rows whose flow
// direction can be derived neither from the file name nor from a column.
func WithDefaultDeliveryKind(k domain.DeliveryKind) Option {
	return func(p *Parser) {
		if k == domain.DeliveryCustomer || k == domain.DeliverySupplier {
			p.defaultKind = k
		}
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		units:       units.NewResolver(),
		plants:      NewPlantDirectory(nil),
		log:         zerolog.Nop(),
		defaultKind: domain.DeliveryCustomer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// With returns a copy of the parser with additional options applied.
func (p *Parser) With(opts ...Option) *Parser {
	cp := *p
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Plants returns the plant directory the parser resolves against.
func (p *Parser) Plants() *PlantDirectory {
	return p.plants
}

// resolve maps the sheet header onto schema and fails the sheet when a required
// column is missing.
func resolve(s sheet.Sheet, fileName string, schema columns.Schema) (columns.Mapping, error) {
	headers := s.Header()
	if len(headers) == 0 {
		return columns.Mapping{}, ErrEmptySheet
	}
	m := columns.Resolve(headers, schema)
	if missing := m.Missing(); len(missing) > 0 {
		return m, &ColumnResolutionError{
			File:    fileName,
			Sheet:   s.Name,
			Schema:  schema.Name,
			Missing: missing,
			Headers: headers,
		}
	}
	return m, nil
}

// cell returns the cell of a mapped field, empty when the field is unresolved.
func cell(row []sheet.Cell, m columns.Mapping, field string) sheet.Cell {
	return sheet.At(row, m.Col(field))
}
