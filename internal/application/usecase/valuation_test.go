package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/application/usecase"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/pkg/testutil"
)

type providerFunc func(ctx context.Context, v model.VehicleSnapshot) (model.ValuationResult, error)

func (f providerFunc) FetchValuation(ctx context.Context, v model.VehicleSnapshot) (model.ValuationResult, error) {
	return f(ctx, v)
}

func fixedProvider(res model.ValuationResult) providerFunc {
	return func(context.Context, model.VehicleSnapshot) (model.ValuationResult, error) { return res, nil }
}

func failingProvider(err error) providerFunc {
	return func(context.Context, model.VehicleSnapshot) (model.ValuationResult, error) {
		return model.ValuationResult{}, err
	}
}

func lookupResult() model.ValuationResult {
	return model.ValuationResult{
		RetailValue:  testutil.Dec("6000000"),
		LoanValue:    testutil.Dec("5000000"),
		Currency:     "NGN",
		Make:         "Toyota",
		Model:        "Camry",
		Year:         2020,
		Transmission: "Automatic",
		Source:       "rapidapi:vin-lookup-jack-roe",
		ProviderRef:  "vin-lookup-" + testutil.TestVIN,
	}
}

func intPtr(i int) *int { return &i }

func TestRequestValuation_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("records history and refreshes the snapshot", func(t *testing.T) {
		h := newHarness()
		v := h.referenceVehicle()
		uc := usecase.NewRequestValuationUseCase(h.uow, fixedProvider(lookupResult()), h.dispatcher, h.clock, nil)

		resp, err := uc.Execute(ctx, dto.RequestValuationRequest{VIN: testutil.TestVIN})
		require.NoError(t, err)

		assert.Equal(t, v.ID, resp.VehicleID)
		testutil.AssertDecimal(t, "5000000", resp.LoanValue)
		assert.Equal(t, h.now, resp.FetchedAt)
		require.Len(t, h.store.valuations, 1)

		stored := h.store.vehicles[v.ID]
		testutil.AssertDecimal(t, "5000000", *stored.LoanValue)
		testutil.AssertDecimal(t, "6000000", *stored.RetailValue)
		assert.Equal(t, h.now, *stored.ValuationFetchedAt)
		assert.Equal(t, 1, h.metrics.sources["rapidapi:vin-lookup-jack-roe"])
	})

	t.Run("provider failure changes nothing", func(t *testing.T) {
		h := newHarness()
		v := h.referenceVehicle()
		uc := usecase.NewRequestValuationUseCase(h.uow, failingProvider(errors.New("boom")), h.dispatcher, h.clock, nil)

		_, err := uc.Execute(ctx, dto.RequestValuationRequest{VIN: testutil.TestVIN})
		require.Error(t, err)
		assert.Empty(t, h.store.valuations)
		assert.Equal(t, v, h.store.vehicles[v.ID])
	})

	t.Run("unknown vin", func(t *testing.T) {
		h := newHarness()
		uc := usecase.NewRequestValuationUseCase(h.uow, fixedProvider(lookupResult()), h.dispatcher, h.clock, nil)

		_, err := uc.Execute(ctx, dto.RequestValuationRequest{VIN: "UNKNOWN"})
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("history lists newest first", func(t *testing.T) {
		h := newHarness()
		h.referenceVehicle()
		first := lookupResult()
		second := lookupResult()
		second.LoanValue = testutil.Dec("4800000")
		results := []model.ValuationResult{first, second}
		provider := providerFunc(func(context.Context, model.VehicleSnapshot) (model.ValuationResult, error) {
			r := results[0]
			results = results[1:]
			return r, nil
		})
		uc := usecase.NewRequestValuationUseCase(h.uow, provider, h.dispatcher, h.clock, nil)
		for range 2 {
			_, err := uc.Execute(ctx, dto.RequestValuationRequest{VIN: testutil.TestVIN})
			require.NoError(t, err)
		}

		history, err := usecase.NewValuationHistoryUseCase(h.uow).Execute(ctx, dto.ValuationHistoryRequest{VIN: testutil.TestVIN})
		require.NoError(t, err)
		require.Len(t, history, 2)
		testutil.AssertDecimal(t, "4800000", history[0].LoanValue)
		testutil.AssertDecimal(t, "5000000", history[1].LoanValue)
	})
}

func TestEvaluateVehicle_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("adjusts for high mileage and saves for listed vehicles", func(t *testing.T) {
		h := newHarness()
		h.referenceVehicle()
		uc := usecase.NewEvaluateVehicleUseCase(h.uow, fixedProvider(lookupResult()), h.policy(), h.clock)

		resp, err := uc.Execute(ctx, dto.EvaluateVehicleRequest{VIN: testutil.TestVIN, Mileage: intPtr(80000)})
		require.NoError(t, err)

		testutil.AssertDecimal(t, "5000000", resp.BaselineLoanValue)
		testutil.AssertDecimal(t, "4999760", resp.SuggestedLoanValue)
		testutil.AssertDecimal(t, "5999640", resp.SuggestedRetailValue)
		testutil.AssertDecimal(t, "5999640", resp.SuggestedListingPrice)
		assert.Equal(t, 20000, resp.MileageAdjustment.DeltaMiles)
		testutil.AssertDecimal(t, "0.40", resp.SuggestedDownPaymentPct)
		testutil.AssertDecimal(t, "500000", resp.SuggestedMinLoanValue)
		assert.Equal(t, h.policy().MaxTermMonths, resp.SuggestedMaxLoanPeriod)
		assert.True(t, resp.Saved)

		require.Len(t, h.store.valuations, 1)
		testutil.AssertDecimal(t, "4999760", h.store.valuations[0].LoanValue)
		assert.Equal(t, 80000, *h.store.valuations[0].Mileage)
		testutil.AssertDecimal(t, "5200000", *h.store.vehicles[testutil.TestVehicleID.String()].LoanValue)
	})

	t.Run("unlisted vin is evaluated but not saved", func(t *testing.T) {
		h := newHarness()
		uc := usecase.NewEvaluateVehicleUseCase(h.uow, fixedProvider(lookupResult()), h.policy(), h.clock)

		resp, err := uc.Execute(ctx, dto.EvaluateVehicleRequest{VIN: testutil.TestVIN})
		require.NoError(t, err)
		assert.False(t, resp.Saved)
		testutil.AssertDecimal(t, "5000000", resp.SuggestedLoanValue)
		assert.Empty(t, h.store.valuations)
	})

	t.Run("upstream failure asks for manual entry", func(t *testing.T) {
		h := newHarness()
		uc := usecase.NewEvaluateVehicleUseCase(h.uow,
			failingProvider(fmt.Errorf("vin lookup: %w", apperr.ErrUpstreamUnavailable)), h.policy(), h.clock)

		_, err := uc.Execute(ctx, dto.EvaluateVehicleRequest{VIN: testutil.TestVIN})
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
		assert.Contains(t, err.Error(), "please try manual entry")
	})

	t.Run("negative mileage", func(t *testing.T) {
		h := newHarness()
		uc := usecase.NewEvaluateVehicleUseCase(h.uow, fixedProvider(lookupResult()), h.policy(), h.clock)

		_, err := uc.Execute(ctx, dto.EvaluateVehicleRequest{VIN: testutil.TestVIN, Mileage: intPtr(-1)})
		assert.True(t, errors.Is(err, apperr.ErrInvalidRequest))
	})
}
