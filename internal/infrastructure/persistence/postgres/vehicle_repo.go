package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	pgutil "github.com/Nathan-Yinka/autochek-API/pkg/postgres"
)

var _ port.VehicleStore = (*VehicleRepo)(nil)

const vehicleColumns = `
	id::text, vin, make, model, year, mileage, condition,
	listing_price, loan_value, retail_value, required_down_payment_pct,
	currency, is_loan_available, valuation_source, valuation_fetched_at`

// VehicleRepo implements port.VehicleStore.
type VehicleRepo struct {
	db pgutil.DBTX
}

// NewVehicleRepo creates a repository on a pool or transaction.
func NewVehicleRepo(db pgutil.DBTX) *VehicleRepo {
	return &VehicleRepo{db: db}
}

// GetValuationSnapshot loads the pricing view of a vehicle.
func (r *VehicleRepo) GetValuationSnapshot(ctx context.Context, id string) (model.VehicleSnapshot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if err != nil {
		return model.VehicleSnapshot{}, lookupError(err, "vehicle", id)
	}
	return v, nil
}

// FindByVIN loads a vehicle by its VIN.
func (r *VehicleRepo) FindByVIN(ctx context.Context, vin string) (model.VehicleSnapshot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE vin = $1`, vin)
	v, err := scanVehicle(row)
	if err != nil {
		return model.VehicleSnapshot{}, lookupError(err, "vehicle", vin)
	}
	return v, nil
}

// UpdateValuation refreshes the valuation snapshot.
func (r *VehicleRepo) UpdateValuation(ctx context.Context, vehicleID string, result model.ValuationResult, fetchedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vehicles SET
			retail_value         = $2,
			loan_value           = $3,
			valuation_source     = $4,
			valuation_fetched_at = $5,
			updated_at           = $5
		WHERE id = $1`,
		vehicleID, result.RetailValue, result.LoanValue, result.Source, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("update vehicle valuation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("vehicle", vehicleID)
	}
	return nil
}

// UpdatePricing writes the admin-editable pricing fields.
func (r *VehicleRepo) UpdatePricing(ctx context.Context, v model.VehicleSnapshot) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vehicles SET
			listing_price             = $2,
			required_down_payment_pct = $3,
			is_loan_available         = $4,
			updated_at                = NOW()
		WHERE id = $1`,
		v.ID, v.ListingPrice, v.RequiredDownPaymentPct, v.IsLoanAvailable,
	)
	if err != nil {
		return fmt.Errorf("update vehicle pricing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("vehicle", v.ID)
	}
	return nil
}

func scanVehicle(s scannable) (model.VehicleSnapshot, error) {
	var (
		v            model.VehicleSnapshot
		loan, retail decimal.NullDecimal
	)
	err := s.Scan(
		&v.ID, &v.VIN, &v.Make, &v.Model, &v.Year, &v.Mileage, &v.Condition,
		&v.ListingPrice, &loan, &retail, &v.RequiredDownPaymentPct,
		&v.Currency, &v.IsLoanAvailable, &v.ValuationSource, &v.ValuationFetchedAt,
	)
	if err != nil {
		return model.VehicleSnapshot{}, fmt.Errorf("scan vehicle: %w", err)
	}
	v.LoanValue = decimalPtr(loan)
	v.RetailValue = decimalPtr(retail)
	return v, nil
}
