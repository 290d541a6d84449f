package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
)

type PlantRepository struct {
	db *DB
}

func NewPlantRepository(db *DB) *PlantRepository {
	return &PlantRepository{db: db}
}

func (r *PlantRepository) ListPlants(ctx context.Context) ([]domain.Plant, error) {
	var plants []domain.Plant
	err := r.db.SelectContext(ctx, &plants, `SELECT code, site_code, name, city, country FROM plants ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	return plants, nil
}

func (r *PlantRepository) UpsertPlants(ctx context.Context, plants []domain.Plant) error {
	if len(plants) == 0 {
		return nil
	}
	query := `
		INSERT INTO plants (code, site_code, name, city, country)
		VALUES (:code, :site_code, :name, :city, :country)
		ON CONFLICT (code)
		DO UPDATE SET
			site_code = EXCLUDED.site_code,
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			country = EXCLUDED.country
	`
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, p := range plants {
			if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
				return fmt.Errorf("failed to upsert plant %s: %w", p.Code, err)
			}
		}
		return nil
	})
}
