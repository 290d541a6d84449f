package ingest

import (
	"errors"
	"sort"
	"time"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/scalar"
)

var (
	ErrNoGoodsIssueDate   = errors.New("actual goods issue date is empty")
	ErrNoGoodsReceiptDate = errors.New("actual goods receipt date is empty")
	ErrNoDeliveryDate     = errors.New("no valid delivery date")
	ErrNoPlant            = errors.New("no plant code")
	ErrNoKind             = errors.New("no delivery kind")
)

// DeliveryRow is one parsed delivery line before aggregation. Nil dates were
// empty or unparseable in the sheet.
type DeliveryRow struct {
	PlantCode             string
	SiteName              string
	Kind                  domain.DeliveryKind
	Role                  FileRole
	Quantity              float64
	Date                  *time.Time
	GoodsIssueDate        *time.Time
	GoodsReceiptDate      *time.Time
	HasGoodsIssueColumn   bool
	HasGoodsReceiptColumn bool
}

// SelectDeliveryDate picks the date a row is booked under. Outbound files with
// an actual goods issue column use only that column, inbound files with an
// actual goods receipt column use only that one; an empty value there rejects
// the row rather than falling back to the generic date.
func SelectDeliveryDate(row DeliveryRow) (time.Time, error) {
	switch {
	case row.Role == RoleOutbound && row.HasGoodsIssueColumn:
		if row.GoodsIssueDate == nil {
			return time.Time{}, ErrNoGoodsIssueDate
		}
		return *row.GoodsIssueDate, nil
	case row.Role == RoleInbound && row.HasGoodsReceiptColumn:
		if row.GoodsReceiptDate == nil {
			return time.Time{}, ErrNoGoodsReceiptDate
		}
		return *row.GoodsReceiptDate, nil
	}

	if row.Date != nil {
		return *row.Date, nil
	}
	// files without a role: the movement date of the row's own direction
	switch row.Kind {
	case domain.DeliveryCustomer:
		if row.GoodsIssueDate != nil {
			return *row.GoodsIssueDate, nil
		}
	case domain.DeliverySupplier:
		if row.GoodsReceiptDate != nil {
			return *row.GoodsReceiptDate, nil
		}
	}
	return time.Time{}, ErrNoDeliveryDate
}

type deliveryKey struct {
	plant string
	month string
	kind  domain.DeliveryKind
}

// DeliveryAggregator folds delivery rows into one Delivery per
// (plant, month, kind). It is not safe for concurrent use; each parse owns one.
type DeliveryAggregator struct {
	plants  *PlantDirectory
	buckets map[deliveryKey]*domain.Delivery
}

func NewDeliveryAggregator(plants *PlantDirectory) *DeliveryAggregator {
	return &DeliveryAggregator{
		plants:  plants,
		buckets: make(map[deliveryKey]*domain.Delivery),
	}
}

// Add books a row; the returned error explains why the row was rejected.
func (a *DeliveryAggregator) Add(row DeliveryRow) error {
	if row.PlantCode == "" {
		return ErrNoPlant
	}
	if row.Kind != domain.DeliveryCustomer && row.Kind != domain.DeliverySupplier {
		return ErrNoKind
	}
	date, err := SelectDeliveryDate(row)
	if err != nil {
		return err
	}

	key := deliveryKey{plant: row.PlantCode, month: scalar.MonthKey(date), kind: row.Kind}
	d, ok := a.buckets[key]
	if !ok {
		d = &domain.Delivery{
			ID:        DeliveryID(key.plant, key.month, string(key.kind)),
			PlantCode: key.plant,
			SiteCode:  a.plants.SiteCode(key.plant),
			SiteName:  a.plants.SiteName(key.plant),
			Month:     key.month,
			Kind:      key.kind,
		}
		a.buckets[key] = d
	}
	d.Quantity += row.Quantity
	if d.SiteName == "" {
		d.SiteName = row.SiteName
	}
	return nil
}

// Len returns the number of aggregated records.
func (a *DeliveryAggregator) Len() int {
	return len(a.buckets)
}

// Deliveries returns the aggregated records sorted by plant, month and kind.
func (a *DeliveryAggregator) Deliveries() []domain.Delivery {
	out := make([]domain.Delivery, 0, len(a.buckets))
	for _, d := range a.buckets {
		out = append(out, *d)
	}
	sortDeliveries(out)
	return out
}

// MergeDeliveries folds already aggregated lists, e.g. from several files, so
// that each (plant, month, kind) appears once with the summed quantity.
func MergeDeliveries(lists ...[]domain.Delivery) []domain.Delivery {
	buckets := make(map[deliveryKey]*domain.Delivery)
	for _, list := range lists {
		for _, in := range list {
			key := deliveryKey{plant: in.PlantCode, month: in.Month, kind: in.Kind}
			d, ok := buckets[key]
			if !ok {
				cp := in
				cp.ID = DeliveryID(key.plant, key.month, string(key.kind))
				if cp.SiteCode == "" {
					cp.SiteCode = cp.PlantCode
				}
				buckets[key] = &cp
				continue
			}
			d.Quantity += in.Quantity
			if d.SiteName == "" {
				d.SiteName = in.SiteName
			}
		}
	}
	out := make([]domain.Delivery, 0, len(buckets))
	for _, d := range buckets {
		out = append(out, *d)
	}
	sortDeliveries(out)
	return out
}

func sortDeliveries(ds []domain.Delivery) {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].PlantCode != ds[j].PlantCode {
			return ds[i].PlantCode < ds[j].PlantCode
		}
		if ds[i].Month != ds[j].Month {
			return ds[i].Month < ds[j].Month
		}
		return ds[i].Kind < ds[j].Kind
	})
}
