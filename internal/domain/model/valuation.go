package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValuationResult is what a valuation provider returns for a vehicle,
// already converted to the listing currency.
type ValuationResult struct {
	RetailValue  decimal.Decimal `json:"retail_value"`
	LoanValue    decimal.Decimal `json:"loan_value"`
	Currency     string          `json:"currency"`
	Make         string          `json:"make,omitempty"`
	Model        string          `json:"model,omitempty"`
	Year         int             `json:"year,omitempty"`
	Trim         string          `json:"trim,omitempty"`
	Engine       string          `json:"engine,omitempty"`
	Transmission string          `json:"transmission,omitempty"`
	FuelType     string          `json:"fuel_type,omitempty"`
	Source       string          `json:"source"`
	ProviderRef  string          `json:"provider_ref"`
}

// Valuation is a persisted valuation history row.
type Valuation struct {
	ID          string
	VehicleID   string
	VIN         string
	RetailValue decimal.Decimal
	LoanValue   decimal.Decimal
	Currency    string
	Mileage     *int
	Source      string
	ProviderRef string
	FetchedAt   time.Time
}

// NewValuation records a provider result against a vehicle.
func NewValuation(vehicle VehicleSnapshot, result ValuationResult, mileage *int, now time.Time) Valuation {
	currency := result.Currency
	if currency == "" {
		currency = vehicle.Currency
	}
	return Valuation{
		ID:          uuid.New().String(),
		VehicleID:   vehicle.ID,
		VIN:         vehicle.VIN,
		RetailValue: result.RetailValue,
		LoanValue:   result.LoanValue,
		Currency:    currency,
		Mileage:     mileage,
		Source:      result.Source,
		ProviderRef: result.ProviderRef,
		FetchedAt:   now,
	}
}
