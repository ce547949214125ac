package valueobject

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PolicyConfig holds the lending policy knobs. It is built once at start-up
// and passed by value; nothing in the domain reads the environment.
type PolicyConfig struct {
	LTVCap               decimal.Decimal
	MinTermMonths        int
	MaxTermMonths        int
	ValuationTTLDays     int
	DefaultAPR           decimal.Decimal
	ExpectedMilesPerYear int
	LoanAdjPer1k         decimal.Decimal
	RetailAdjPer1k       decimal.Decimal
	MileageAdjCapPct     decimal.Decimal
}

// DefaultPolicyConfig returns the production defaults.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		LTVCap:               decimal.RequireFromString("1.10"),
		MinTermMonths:        12,
		MaxTermMonths:        72,
		ValuationTTLDays:     14,
		DefaultAPR:           decimal.RequireFromString("0.25"),
		ExpectedMilesPerYear: 12000,
		LoanAdjPer1k:         decimal.NewFromInt(12),
		RetailAdjPer1k:       decimal.NewFromInt(18),
		MileageAdjCapPct:     decimal.RequireFromString("0.20"),
	}
}

// ErrInvalidPolicy is returned by Validate.
var ErrInvalidPolicy = errors.New("invalid lending policy")

// Validate rejects configurations the engine cannot run with.
func (p PolicyConfig) Validate() error {
	switch {
	case !p.LTVCap.IsPositive():
		return fmt.Errorf("%w: ltv cap must be positive, got %s", ErrInvalidPolicy, p.LTVCap)
	case p.MinTermMonths <= 0:
		return fmt.Errorf("%w: min term must be positive, got %d", ErrInvalidPolicy, p.MinTermMonths)
	case p.MinTermMonths > p.MaxTermMonths:
		return fmt.Errorf("%w: min term %d exceeds max term %d", ErrInvalidPolicy, p.MinTermMonths, p.MaxTermMonths)
	case p.ValuationTTLDays <= 0:
		return fmt.Errorf("%w: valuation ttl must be positive, got %d", ErrInvalidPolicy, p.ValuationTTLDays)
	case p.DefaultAPR.IsNegative():
		return fmt.Errorf("%w: default apr must not be negative, got %s", ErrInvalidPolicy, p.DefaultAPR)
	case p.ExpectedMilesPerYear < 0:
		return fmt.Errorf("%w: expected miles per year must not be negative", ErrInvalidPolicy)
	case p.LoanAdjPer1k.IsNegative() || p.RetailAdjPer1k.IsNegative():
		return fmt.Errorf("%w: mileage adjustment rates must not be negative", ErrInvalidPolicy)
	case p.MileageAdjCapPct.IsNegative() || p.MileageAdjCapPct.GreaterThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: mileage cap must be within [0, 1], got %s", ErrInvalidPolicy, p.MileageAdjCapPct)
	}
	return nil
}

// IsTermValid reports whether months lies within the policy term bounds.
func (p PolicyConfig) IsTermValid(months int) bool {
	return months >= p.MinTermMonths && months <= p.MaxTermMonths
}

// IsValuationFresh reports whether a valuation fetched at fetchedAt is still
// usable at now. A zero timestamp is never fresh.
func (p PolicyConfig) IsValuationFresh(fetchedAt, now time.Time) bool {
	if fetchedAt.IsZero() {
		return false
	}
	return now.Sub(fetchedAt) <= time.Duration(p.ValuationTTLDays)*24*time.Hour
}
