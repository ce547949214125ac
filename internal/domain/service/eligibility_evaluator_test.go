package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/pkg/testutil"
)

func referenceVehicle() model.VehicleSnapshot {
	fetched := asOf.Add(-48 * time.Hour)
	return model.VehicleSnapshot{
		ID:                     testutil.TestVehicleID.String(),
		VIN:                    testutil.TestVIN,
		Make:                   "Toyota",
		Model:                  "Camry",
		Year:                   2019,
		ListingPrice:           testutil.Dec("5500000"),
		LoanValue:              testutil.DecPtr("5200000"),
		RetailValue:            testutil.DecPtr("5600000"),
		RequiredDownPaymentPct: testutil.Dec("0.30"),
		Currency:               "NGN",
		IsLoanAvailable:        true,
		ValuationFetchedAt:     &fetched,
	}
}

func TestEligibilityEvaluator_BelowVehicleMinimumDown(t *testing.T) {
	evaluator := service.NewEligibilityEvaluator(valueobject.DefaultPolicyConfig())

	got, err := evaluator.Evaluate(referenceVehicle(), model.EligibilityRequest{
		DownPaymentPct: testutil.DecPtr("0.15"),
		TermMonths:     48,
	}, asOf)
	require.NoError(t, err)

	assert.Equal(t, valueobject.EligibilityNeedMoreDown, got.Status)
	testutil.AssertDecimal(t, "825000", got.PlannedDownAmount)
	testutil.AssertDecimal(t, "0", got.ImpliedMonthlyPayment)
	testutil.AssertDecimal(t, "0", got.ImpliedTotalInterest)
	assert.Equal(t, []string{"Vehicle requires 30% down payment. Need additional ₦825,000"}, got.Reasons)
}

func TestEligibilityEvaluator_EligibleAtExactMinimum(t *testing.T) {
	evaluator := service.NewEligibilityEvaluator(valueobject.DefaultPolicyConfig())

	got, err := evaluator.Evaluate(referenceVehicle(), model.EligibilityRequest{
		DownPaymentAmount: testutil.DecPtr("1650000"),
		TermMonths:        48,
	}, asOf)
	require.NoError(t, err)

	assert.True(t, got.IsEligible())
	testutil.AssertDecimal(t, "5500000", got.ListingPrice)
	testutil.AssertDecimal(t, "1650000", got.PlannedDownAmount)
	testutil.AssertDecimal(t, "3850000", got.InitialNeeded)
	testutil.AssertDecimal(t, "5720000", got.MaxFinance)
	testutil.AssertDecimal(t, "3850000", got.ValidatedLoanAmount)
	testutil.AssertDecimal(t, "0", got.RequiredExtraDown)
	testutil.AssertDecimal(t, "127655", got.ImpliedMonthlyPayment)
	testutil.AssertDecimal(t, "2277437", got.ImpliedTotalInterest)
	assert.Equal(t, []string{"Down 30% → Finance ₦3,850,000 → ~₦127,655/month for 48 months"}, got.Reasons)
}

func TestEligibilityEvaluator_LTVCapExceeded(t *testing.T) {
	evaluator := service.NewEligibilityEvaluator(valueobject.DefaultPolicyConfig())
	vehicle := referenceVehicle()
	vehicle.ListingPrice = testutil.Dec("9000000")
	vehicle.RequiredDownPaymentPct = testutil.Dec("0.10")

	got, err := evaluator.Evaluate(vehicle, model.EligibilityRequest{TermMonths: 36}, asOf)
	require.NoError(t, err)

	// planned 900,000; needed 8,100,000; max 5,720,000.
	assert.Equal(t, valueobject.EligibilityNeedMoreDown, got.Status)
	testutil.AssertDecimal(t, "900000", got.PlannedDownAmount)
	testutil.AssertDecimal(t, "5720000", got.ValidatedLoanAmount)
	testutil.AssertDecimal(t, "2380000", got.RequiredExtraDown)
	testutil.AssertDecimal(t, "0", got.ImpliedMonthlyPayment)
	assert.Equal(t, []string{"Add ₦2,380,000 to your down payment to qualify"}, got.Reasons)
}

func TestEligibilityEvaluator_DownPaymentPrecedence(t *testing.T) {
	evaluator := service.NewEligibilityEvaluator(valueobject.DefaultPolicyConfig())

	tests := []struct {
		name        string
		req         model.EligibilityRequest
		wantPlanned string
	}{
		{"amount wins over pct", model.EligibilityRequest{DownPaymentAmount: testutil.DecPtr("2000000"), DownPaymentPct: testutil.DecPtr("0.5"), TermMonths: 24}, "2000000"},
		{"pct used without amount", model.EligibilityRequest{DownPaymentPct: testutil.DecPtr("0.4"), TermMonths: 24}, "2200000"},
		{"zero pct falls back to vehicle pct", model.EligibilityRequest{DownPaymentPct: testutil.DecPtr("0"), TermMonths: 24}, "1650000"},
		{"nothing falls back to vehicle pct", model.EligibilityRequest{TermMonths: 24}, "1650000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Evaluate(referenceVehicle(), tt.req, asOf)
			require.NoError(t, err)
			testutil.AssertDecimal(t, tt.wantPlanned, got.PlannedDownAmount)
		})
	}
}

func TestEligibilityEvaluator_ListingFallsBackToLoanValue(t *testing.T) {
	evaluator := service.NewEligibilityEvaluator(valueobject.DefaultPolicyConfig())
	vehicle := referenceVehicle()
	vehicle.ListingPrice = testutil.Dec("0")

	got, err := evaluator.Evaluate(vehicle, model.EligibilityRequest{TermMonths: 24}, asOf)
	require.NoError(t, err)

	testutil.AssertDecimal(t, "5200000", got.ListingPrice)
	testutil.AssertDecimal(t, "1560000", got.PlannedDownAmount)
	assert.True(t, got.IsEligible())
}

func TestEligibilityEvaluator_PolicyPreChecks(t *testing.T) {
	evaluator := service.NewEligibilityEvaluator(valueobject.DefaultPolicyConfig())

	t.Run("term outside policy is ineligible", func(t *testing.T) {
		got, err := evaluator.Evaluate(referenceVehicle(), model.EligibilityRequest{TermMonths: 96}, asOf)
		require.NoError(t, err)
		assert.Equal(t, valueobject.EligibilityIneligible, got.Status)
		assert.Equal(t, []string{"Term of 96 months is outside the allowed range of 12-72 months"}, got.Reasons)
		testutil.AssertDecimal(t, "3850000", got.ValidatedLoanAmount)
		testutil.AssertDecimal(t, "0", got.ImpliedMonthlyPayment)
	})

	t.Run("old valuation is stale", func(t *testing.T) {
		vehicle := referenceVehicle()
		old := asOf.AddDate(0, 0, -15)
		vehicle.ValuationFetchedAt = &old

		got, err := evaluator.Evaluate(vehicle, model.EligibilityRequest{TermMonths: 48}, asOf)
		require.NoError(t, err)
		assert.Equal(t, valueobject.EligibilityStaleValuation, got.Status)
		testutil.AssertDecimal(t, "0", got.ImpliedMonthlyPayment)
	})

	t.Run("missing valuation date skips the freshness check", func(t *testing.T) {
		vehicle := referenceVehicle()
		vehicle.ValuationFetchedAt = nil

		got, err := evaluator.Evaluate(vehicle, model.EligibilityRequest{
			DownPaymentAmount: testutil.DecPtr("1650000"),
			TermMonths:        48,
		}, asOf)
		require.NoError(t, err)
		assert.Equal(t, valueobject.EligibilityEligible, got.Status)
		testutil.AssertDecimal(t, "3850000", got.ValidatedLoanAmount)
		testutil.AssertDecimal(t, "127655", got.ImpliedMonthlyPayment)
	})

	t.Run("term check runs before the down payment gate", func(t *testing.T) {
		got, err := evaluator.Evaluate(referenceVehicle(), model.EligibilityRequest{
			DownPaymentPct: testutil.DecPtr("0.05"),
			TermMonths:     6,
		}, asOf)
		require.NoError(t, err)
		assert.Equal(t, valueobject.EligibilityIneligible, got.Status)
	})
}

func TestEligibilityEvaluator_Errors(t *testing.T) {
	evaluator := service.NewEligibilityEvaluator(valueobject.DefaultPolicyConfig())

	noValue := referenceVehicle()
	noValue.LoanValue = nil
	_, err := evaluator.Evaluate(noValue, model.EligibilityRequest{TermMonths: 48}, asOf)
	assert.True(t, errors.Is(err, model.ErrMissingLoanValue))

	zeroValue := referenceVehicle()
	zeroValue.LoanValue = testutil.DecPtr("0")
	_, err = evaluator.Evaluate(zeroValue, model.EligibilityRequest{TermMonths: 48}, asOf)
	assert.True(t, errors.Is(err, model.ErrMissingLoanValue))

	malformed := []model.EligibilityRequest{
		{TermMonths: 0},
		{TermMonths: 48, DownPaymentPct: testutil.DecPtr("1.5")},
		{TermMonths: 48, DownPaymentPct: testutil.DecPtr("-0.1")},
		{TermMonths: 48, DownPaymentAmount: testutil.DecPtr("-1")},
		{TermMonths: 48, DownPaymentAmount: testutil.DecPtr("6000000")},
	}
	for _, req := range malformed {
		_, err := evaluator.Evaluate(referenceVehicle(), req, asOf)
		assert.True(t, errors.Is(err, service.ErrInvalidEligibilityRequest), "request %+v: %v", req, err)
	}
}

func TestEligibilityEvaluator_UsesConfiguredPolicy(t *testing.T) {
	policy := valueobject.DefaultPolicyConfig()
	policy.LTVCap = testutil.Dec("0.5")
	policy.DefaultAPR = testutil.Dec("0")
	evaluator := service.NewEligibilityEvaluator(policy)

	got, err := evaluator.Evaluate(referenceVehicle(), model.EligibilityRequest{
		DownPaymentAmount: testutil.DecPtr("2900000"),
		TermMonths:        26,
	}, asOf)
	require.NoError(t, err)

	// max finance 2,600,000 equals the 2,600,000 needed.
	assert.True(t, got.IsEligible())
	testutil.AssertDecimal(t, "100000", got.ImpliedMonthlyPayment)
	testutil.AssertDecimal(t, "0", got.ImpliedTotalInterest)
}
