package model

import (
	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// EligibilityRequest is the applicant's requested down payment and term.
// DownPaymentAmount wins over DownPaymentPct; a nil or zero pct falls back
// to the vehicle's required pct.
type EligibilityRequest struct {
	DownPaymentPct    *decimal.Decimal
	DownPaymentAmount *decimal.Decimal
	TermMonths        int
}

// EligibilityResult is the frozen outcome of an evaluation. Negative outcomes
// are verdicts, not errors.
type EligibilityResult struct {
	Status                valueobject.EligibilityStatus
	Reasons               []string
	ListingPrice          decimal.Decimal
	PlannedDownAmount     decimal.Decimal
	InitialNeeded         decimal.Decimal
	MaxFinance            decimal.Decimal
	ValidatedLoanAmount   decimal.Decimal
	RequiredExtraDown     decimal.Decimal
	ImpliedMonthlyPayment decimal.Decimal
	ImpliedTotalInterest  decimal.Decimal
}

// IsEligible reports whether the verdict is ELIGIBLE.
func (r EligibilityResult) IsEligible() bool {
	return r.Status.Equal(valueobject.EligibilityEligible)
}
