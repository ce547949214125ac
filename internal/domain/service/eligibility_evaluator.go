package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/pkg/money"
)

// ErrInvalidEligibilityRequest is returned for structurally malformed requests.
// Out-of-policy terms are verdicts, not errors.
var ErrInvalidEligibilityRequest = errors.New("invalid eligibility request")

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// EligibilityEvaluator turns a vehicle snapshot and requested terms into a
// verdict with the validated loan amount and implied payment. It has no side effects.
type EligibilityEvaluator struct {
	policy valueobject.PolicyConfig
}

// NewEligibilityEvaluator creates an EligibilityEvaluator.
func NewEligibilityEvaluator(policy valueobject.PolicyConfig) EligibilityEvaluator {
	return EligibilityEvaluator{policy: policy}
}

// Evaluate runs the policy pre-checks and the two down-payment gates in order.
// Only a missing loan value or a malformed request produce an error.
func (e EligibilityEvaluator) Evaluate(
	vehicle model.VehicleSnapshot,
	req model.EligibilityRequest,
	asOf time.Time,
) (model.EligibilityResult, error) {
	if !vehicle.HasLoanValue() {
		return model.EligibilityResult{}, model.ErrMissingLoanValue
	}
	if err := validateRequest(req); err != nil {
		return model.EligibilityResult{}, err
	}

	listing := vehicle.EffectiveListingPrice()
	requiredPct := vehicle.RequiredDownPaymentPct

	var planned decimal.Decimal
	switch {
	case req.DownPaymentAmount != nil:
		planned = *req.DownPaymentAmount
	case req.DownPaymentPct != nil && req.DownPaymentPct.IsPositive():
		planned = listing.Mul(*req.DownPaymentPct)
	default:
		planned = listing.Mul(requiredPct)
	}
	if planned.GreaterThan(listing) {
		return model.EligibilityResult{}, fmt.Errorf("%w: down payment %s exceeds listing price %s",
			ErrInvalidEligibilityRequest, planned, listing)
	}

	initialNeeded := listing.Sub(planned)
	maxFinance := vehicle.LoanValue.Mul(e.policy.LTVCap)

	result := model.EligibilityResult{
		ListingPrice:          listing,
		PlannedDownAmount:     planned,
		InitialNeeded:         initialNeeded,
		MaxFinance:            maxFinance,
		ValidatedLoanAmount:   decimal.Min(initialNeeded, maxFinance),
		RequiredExtraDown:     decimal.Max(decimal.Zero, initialNeeded.Sub(maxFinance)),
		ImpliedMonthlyPayment: decimal.Zero,
		ImpliedTotalInterest:  decimal.Zero,
	}

	currency := vehicle.Currency

	if !e.policy.IsTermValid(req.TermMonths) {
		return verdict(result, valueobject.EligibilityIneligible, fmt.Sprintf(
			"Term of %d months is outside the allowed range of %d-%d months",
			req.TermMonths, e.policy.MinTermMonths, e.policy.MaxTermMonths)), nil
	}

	// Listings priced before valuations were tracked carry no date and are
	// judged on their loan value alone.
	if fetched := vehicle.ValuationFetchedAt; fetched != nil && !e.policy.IsValuationFresh(*fetched, asOf) {
		return verdict(result, valueobject.EligibilityStaleValuation, fmt.Sprintf(
			"Vehicle valuation is older than %d days. Request a fresh valuation before applying",
			e.policy.ValuationTTLDays)), nil
	}

	// Gate 1: the vehicle's own minimum down payment.
	vehicleMinDown := listing.Mul(requiredPct)
	if planned.LessThan(vehicleMinDown) {
		return verdict(result, valueobject.EligibilityNeedMoreDown, fmt.Sprintf(
			"Vehicle requires %s%% down payment. Need additional %s",
			requiredPct.Mul(hundred).Round(0).String(),
			money.Display(vehicleMinDown.Sub(planned), currency))), nil
	}

	// Gate 2: loan-to-value cap.
	if result.RequiredExtraDown.IsPositive() {
		return verdict(result, valueobject.EligibilityNeedMoreDown, fmt.Sprintf(
			"Add %s to your down payment to qualify",
			money.Display(result.RequiredExtraDown, currency))), nil
	}

	monthly := model.MonthlyPayment(result.ValidatedLoanAmount, e.policy.DefaultAPR, req.TermMonths)
	result.ImpliedMonthlyPayment = monthly.Round(0)
	result.ImpliedTotalInterest = model.TotalInterest(monthly, req.TermMonths, result.ValidatedLoanAmount).Round(0)

	downPct := decimal.Zero
	if financedTotal := planned.Add(result.ValidatedLoanAmount); financedTotal.IsPositive() {
		downPct = planned.Div(financedTotal).Mul(hundred).Round(0)
	}

	return verdict(result, valueobject.EligibilityEligible, fmt.Sprintf(
		"Down %s%% → Finance %s → ~%s/month for %d months",
		downPct.String(),
		money.Display(result.ValidatedLoanAmount, currency),
		money.Display(result.ImpliedMonthlyPayment, currency),
		req.TermMonths)), nil
}

func verdict(r model.EligibilityResult, status valueobject.EligibilityStatus, reason string) model.EligibilityResult {
	r.Status = status
	r.Reasons = []string{reason}
	return r
}

func validateRequest(req model.EligibilityRequest) error {
	if req.TermMonths <= 0 {
		return fmt.Errorf("%w: term months must be positive", ErrInvalidEligibilityRequest)
	}
	if pct := req.DownPaymentPct; pct != nil && (pct.IsNegative() || pct.GreaterThan(one)) {
		return fmt.Errorf("%w: down payment pct must be within [0, 1], got %s", ErrInvalidEligibilityRequest, pct)
	}
	if amt := req.DownPaymentAmount; amt != nil && amt.IsNegative() {
		return fmt.Errorf("%w: down payment amount must not be negative", ErrInvalidEligibilityRequest)
	}
	return nil
}
