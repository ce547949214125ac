package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingLoanValue is returned when a vehicle has no usable loan value.
var ErrMissingLoanValue = errors.New("vehicle has no loan value")

// VehicleSnapshot is the engine's read-only view of a listed vehicle.
type VehicleSnapshot struct {
	ID                     string
	VIN                    string
	Make                   string
	Model                  string
	Year                   int
	Mileage                *int
	Condition              string
	ListingPrice           decimal.Decimal
	LoanValue              *decimal.Decimal
	RetailValue            *decimal.Decimal
	RequiredDownPaymentPct decimal.Decimal
	Currency               string
	IsLoanAvailable        bool
	ValuationSource        string
	ValuationFetchedAt     *time.Time
}

// EffectiveListingPrice is the price the applicant pays. An unpriced listing
// falls back to the loan value.
func (v VehicleSnapshot) EffectiveListingPrice() decimal.Decimal {
	if v.ListingPrice.IsPositive() {
		return v.ListingPrice
	}
	if v.LoanValue != nil {
		return *v.LoanValue
	}
	return decimal.Zero
}

// HasLoanValue reports whether the snapshot can be evaluated.
func (v VehicleSnapshot) HasLoanValue() bool {
	return v.LoanValue != nil && v.LoanValue.IsPositive()
}

// PricingUpdate carries the admin-editable pricing fields; nil leaves a field unchanged.
type PricingUpdate struct {
	ListingPrice           *decimal.Decimal
	RequiredDownPaymentPct *decimal.Decimal
	IsLoanAvailable        *bool
}

// IsEmpty reports whether the update changes nothing.
func (u PricingUpdate) IsEmpty() bool {
	return u.ListingPrice == nil && u.RequiredDownPaymentPct == nil && u.IsLoanAvailable == nil
}

// Apply returns v with the update applied.
func (u PricingUpdate) Apply(v VehicleSnapshot) VehicleSnapshot {
	if u.ListingPrice != nil {
		v.ListingPrice = *u.ListingPrice
	}
	if u.RequiredDownPaymentPct != nil {
		v.RequiredDownPaymentPct = *u.RequiredDownPaymentPct
	}
	if u.IsLoanAvailable != nil {
		v.IsLoanAvailable = *u.IsLoanAvailable
	}
	return v
}
