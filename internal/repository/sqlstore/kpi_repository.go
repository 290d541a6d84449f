package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
)

type kpiRow struct {
	Month                  string   `db:"month"`
	SiteCode               string   `db:"site_code"`
	SiteName               string   `db:"site_name"`
	CustomerComplaintsQ1   float64  `db:"customer_complaints_q1"`
	SupplierComplaintsQ2   float64  `db:"supplier_complaints_q2"`
	InternalComplaintsQ3   float64  `db:"internal_complaints_q3"`
	DeviationsD            int      `db:"deviations_d"`
	PPAPInProgress         int      `db:"ppap_in_progress"`
	PPAPCompleted          int      `db:"ppap_completed"`
	CustomerDeliveries     float64  `db:"customer_deliveries"`
	SupplierDeliveries     float64  `db:"supplier_deliveries"`
	CustomerDefectiveParts float64  `db:"customer_defective_parts"`
	SupplierDefectiveParts float64  `db:"supplier_defective_parts"`
	InternalDefectiveParts float64  `db:"internal_defective_parts"`
	CustomerPpm            *float64 `db:"customer_ppm"`
	SupplierPpm            *float64 `db:"supplier_ppm"`
	Extensions             string   `db:"extensions"`
}

const kpiColumns = `month, site_code, site_name, customer_complaints_q1, supplier_complaints_q2,
	internal_complaints_q3, deviations_d, ppap_in_progress, ppap_completed, customer_deliveries,
	supplier_deliveries, customer_defective_parts, supplier_defective_parts, internal_defective_parts,
	customer_ppm, supplier_ppm, extensions`

const upsertKpi = `
	INSERT INTO monthly_site_kpis (` + kpiColumns + `, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (month, site_code)
	DO UPDATE SET
		site_name = EXCLUDED.site_name,
		customer_complaints_q1 = EXCLUDED.customer_complaints_q1,
		supplier_complaints_q2 = EXCLUDED.supplier_complaints_q2,
		internal_complaints_q3 = EXCLUDED.internal_complaints_q3,
		deviations_d = EXCLUDED.deviations_d,
		ppap_in_progress = EXCLUDED.ppap_in_progress,
		ppap_completed = EXCLUDED.ppap_completed,
		customer_deliveries = EXCLUDED.customer_deliveries,
		supplier_deliveries = EXCLUDED.supplier_deliveries,
		customer_defective_parts = EXCLUDED.customer_defective_parts,
		supplier_defective_parts = EXCLUDED.supplier_defective_parts,
		internal_defective_parts = EXCLUDED.internal_defective_parts,
		customer_ppm = EXCLUDED.customer_ppm,
		supplier_ppm = EXCLUDED.supplier_ppm,
		extensions = EXCLUDED.extensions,
		updated_at = EXCLUDED.updated_at
`

type KpiRepository struct {
	db *DB
}

func NewKpiRepository(db *DB) *KpiRepository {
	return &KpiRepository{db: db}
}

// List returns the stored KPIs matching filter ordered by month, then site.
func (r *KpiRepository) List(ctx context.Context, filter domain.KpiFilter) ([]domain.MonthlySiteKpi, error) {
	where, args, err := kpiFilterClause(filter)
	if err != nil {
		return nil, err
	}
	query := r.db.Rebind(`SELECT ` + kpiColumns + ` FROM monthly_site_kpis` + where + ` ORDER BY month, site_code`)

	var rows []kpiRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list kpis: %w", err)
	}

	out := make([]domain.MonthlySiteKpi, 0, len(rows))
	for _, row := range rows {
		k, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Upsert writes kpis, replacing stored records with the same key.
func (r *KpiRepository) Upsert(ctx context.Context, kpis []domain.MonthlySiteKpi) error {
	if len(kpis) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.upsert(ctx, tx, kpis)
	})
}

// ReplaceAll swaps the whole table content for kpis in one transaction.
func (r *KpiRepository) ReplaceAll(ctx context.Context, kpis []domain.MonthlySiteKpi) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_site_kpis`); err != nil {
			return fmt.Errorf("failed to clear kpis: %w", err)
		}
		return r.upsert(ctx, tx, kpis)
	})
}

func (r *KpiRepository) upsert(ctx context.Context, tx *sqlx.Tx, kpis []domain.MonthlySiteKpi) error {
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(upsertKpi))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, k := range kpis {
		ext, err := json.Marshal(k.Extensions)
		if err != nil {
			return fmt.Errorf("failed to encode extensions of %s/%s: %w", k.Month, k.SiteCode, err)
		}
		if k.Extensions == nil {
			ext = []byte("{}")
		}
		_, err = stmt.ExecContext(ctx,
			k.Month,
			k.SiteCode,
			k.SiteName,
			k.CustomerComplaintsQ1,
			k.SupplierComplaintsQ2,
			k.InternalComplaintsQ3,
			k.DeviationsD,
			k.PPAPP.InProgress,
			k.PPAPP.Completed,
			k.CustomerDeliveries,
			k.SupplierDeliveries,
			k.CustomerDefectiveParts,
			k.SupplierDefectiveParts,
			k.InternalDefectiveParts,
			k.CustomerPpm,
			k.SupplierPpm,
			string(ext),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert kpi %s/%s: %w", k.Month, k.SiteCode, err)
		}
	}
	return nil
}

func (row kpiRow) toDomain() (domain.MonthlySiteKpi, error) {
	k := domain.MonthlySiteKpi{
		Month:                  row.Month,
		SiteCode:               row.SiteCode,
		SiteName:               row.SiteName,
		CustomerComplaintsQ1:   row.CustomerComplaintsQ1,
		SupplierComplaintsQ2:   row.SupplierComplaintsQ2,
		InternalComplaintsQ3:   row.InternalComplaintsQ3,
		DeviationsD:            row.DeviationsD,
		PPAPP:                  domain.PPAPCounts{InProgress: row.PPAPInProgress, Completed: row.PPAPCompleted},
		CustomerDeliveries:     row.CustomerDeliveries,
		SupplierDeliveries:     row.SupplierDeliveries,
		CustomerDefectiveParts: row.CustomerDefectiveParts,
		SupplierDefectiveParts: row.SupplierDefectiveParts,
		InternalDefectiveParts: row.InternalDefectiveParts,
		CustomerPpm:            row.CustomerPpm,
		SupplierPpm:            row.SupplierPpm,
	}
	if row.Extensions != "" && row.Extensions != "{}" {
		if err := json.Unmarshal([]byte(row.Extensions), &k.Extensions); err != nil {
			return k, fmt.Errorf("failed to decode extensions of %s/%s: %w", row.Month, row.SiteCode, err)
		}
	}
	return k, nil
}

// kpiFilterClause builds the WHERE clause with ? bind vars; callers Rebind.
func kpiFilterClause(f domain.KpiFilter) (string, []interface{}, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if f.FromMonth != "" {
		clauses = append(clauses, "month >= ?")
		args = append(args, f.FromMonth)
	}
	if f.ToMonth != "" {
		clauses = append(clauses, "month <= ?")
		args = append(args, f.ToMonth)
	}
	if len(f.Sites) > 0 {
		in, inArgs, err := sqlx.In("site_code IN (?)", f.Sites)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build site filter: %w", err)
		}
		clauses = append(clauses, in)
		args = append(args, inArgs...)
	}
	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}
