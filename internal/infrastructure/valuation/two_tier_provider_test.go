package valuation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/valuation"
	"github.com/Nathan-Yinka/autochek-API/pkg/testutil"
)

type stubProvider struct {
	result model.ValuationResult
	err    error
	calls  int
}

func (s *stubProvider) FetchValuation(context.Context, model.VehicleSnapshot) (model.ValuationResult, error) {
	s.calls++
	return s.result, s.err
}

func camry() model.VehicleSnapshot {
	mileage := 60000
	return model.VehicleSnapshot{
		ID:        testutil.TestVehicleID.String(),
		VIN:       testutil.TestVIN,
		Make:      "Toyota",
		Model:     "Camry",
		Year:      2020,
		Mileage:   &mileage,
		Condition: "good",
		Currency:  "NGN",
	}
}

func fixedClock() time.Time { return testutil.FixedNow }

func TestTwoTierProvider_PrefersPrimary(t *testing.T) {
	primary := &stubProvider{result: model.ValuationResult{
		RetailValue: testutil.Dec("6000000"),
		LoanValue:   testutil.Dec("5000000"),
		Source:      valuation.VINLookupSource,
	}}

	got, err := valuation.NewTwoTierProvider(primary, fixedClock, nil).FetchValuation(context.Background(), camry())
	require.NoError(t, err)
	assert.Equal(t, valuation.VINLookupSource, got.Source)
	testutil.AssertDecimal(t, "5000000", got.LoanValue)
}

func TestTwoTierProvider_FallsBack(t *testing.T) {
	errs := []error{
		apperr.New(apperr.ErrUpstreamUnavailable, "vin lookup disabled"),
		apperr.NotFound("vin", testutil.TestVIN),
		errors.New("socket closed"),
	}
	want := service.NewDepreciationCalculator().Calculate(camry(), testutil.FixedNow)

	for _, primaryErr := range errs {
		t.Run(primaryErr.Error(), func(t *testing.T) {
			primary := &stubProvider{err: primaryErr}
			got, err := valuation.NewTwoTierProvider(primary, fixedClock, nil).FetchValuation(context.Background(), camry())

			require.NoError(t, err)
			assert.Equal(t, 1, primary.calls)
			assert.Equal(t, service.DepreciationSource, got.Source)
			assert.True(t, want.RetailValue.Equal(got.RetailValue))
			assert.True(t, want.LoanValue.Equal(got.LoanValue))
		})
	}
}

func TestTwoTierProvider_NoPrimary(t *testing.T) {
	got, err := valuation.NewTwoTierProvider(nil, fixedClock, nil).FetchValuation(context.Background(), camry())
	require.NoError(t, err)
	assert.Equal(t, service.DepreciationSource, got.Source)
}
