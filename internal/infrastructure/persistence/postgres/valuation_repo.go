package postgres

import (
	"context"
	"fmt"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	pgutil "github.com/Nathan-Yinka/autochek-API/pkg/postgres"
)

var _ port.ValuationRepository = (*ValuationRepo)(nil)

// ValuationRepo implements port.ValuationRepository.
type ValuationRepo struct {
	db pgutil.DBTX
}

// NewValuationRepo creates a repository on a pool or transaction.
func NewValuationRepo(db pgutil.DBTX) *ValuationRepo {
	return &ValuationRepo{db: db}
}

// Save appends a valuation to the vehicle's history.
func (r *ValuationRepo) Save(ctx context.Context, v model.Valuation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO valuations (
			id, vehicle_id, vin, retail_value, loan_value, currency,
			mileage, source, provider_ref, fetched_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		v.ID, v.VehicleID, v.VIN, v.RetailValue, v.LoanValue, v.Currency,
		v.Mileage, v.Source, v.ProviderRef, v.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("save valuation: %w", err)
	}
	return nil
}

// ListByVehicle returns the vehicle's valuations newest first.
func (r *ValuationRepo) ListByVehicle(ctx context.Context, vehicleID string) ([]model.Valuation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, vehicle_id::text, vin, retail_value, loan_value, currency,
		       mileage, source, provider_ref, fetched_at
		FROM valuations
		WHERE vehicle_id = $1
		ORDER BY fetched_at DESC, id`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("query valuations: %w", err)
	}
	defer rows.Close()

	var out []model.Valuation
	for rows.Next() {
		var v model.Valuation
		if err := rows.Scan(
			&v.ID, &v.VehicleID, &v.VIN, &v.RetailValue, &v.LoanValue, &v.Currency,
			&v.Mileage, &v.Source, &v.ProviderRef, &v.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan valuation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
