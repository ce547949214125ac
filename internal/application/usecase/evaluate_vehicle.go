package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// Listing suggestions returned alongside an evaluation.
var (
	suggestedDownPaymentPct = decimal.RequireFromString("0.40")
	suggestedMinLoanValue   = decimal.NewFromInt(500000)
)

// EvaluateVehicleUseCase prices a VIN with the external lookup only, applies
// the mileage adjustment and returns listing suggestions. When the vehicle is
// already listed the adjusted valuation is added to its history; its snapshot
// is left untouched.
type EvaluateVehicleUseCase struct {
	uow      port.UnitOfWork
	lookup   port.ValuationProvider
	adjuster service.MileageAdjuster
	policy   valueobject.PolicyConfig
	clock    Clock
}

// NewEvaluateVehicleUseCase wires dependencies.
func NewEvaluateVehicleUseCase(
	uow port.UnitOfWork,
	lookup port.ValuationProvider,
	policy valueobject.PolicyConfig,
	clock Clock,
) *EvaluateVehicleUseCase {
	return &EvaluateVehicleUseCase{
		uow:      uow,
		lookup:   lookup,
		adjuster: service.NewMileageAdjuster(policy),
		policy:   policy,
		clock:    clock,
	}
}

// Execute evaluates the VIN.
func (uc *EvaluateVehicleUseCase) Execute(ctx context.Context, req dto.EvaluateVehicleRequest) (dto.VehicleEvaluationResponse, error) {
	if req.VIN == "" {
		return dto.VehicleEvaluationResponse{}, apperr.New(apperr.ErrInvalidRequest, "vin is required")
	}
	if req.Mileage != nil && *req.Mileage < 0 {
		return dto.VehicleEvaluationResponse{}, apperr.New(apperr.ErrInvalidRequest, "mileage must not be negative")
	}
	now := uc.clock()

	// 1. External lookup, no fallback.
	result, err := uc.lookup.FetchValuation(ctx, model.VehicleSnapshot{VIN: req.VIN})
	if err != nil {
		if errors.Is(err, apperr.ErrUpstreamUnavailable) || errors.Is(err, apperr.ErrNotFound) {
			return dto.VehicleEvaluationResponse{}, apperr.New(apperr.ErrNotFound,
				"could not fetch valuation data for VIN %s from external API, please try manual entry", req.VIN)
		}
		return dto.VehicleEvaluationResponse{}, fmt.Errorf("fetch valuation: %w", err)
	}

	// 2. Adjust for mileage.
	year := result.Year
	if year == 0 {
		year = now.Year()
	}
	adj := uc.adjuster.Adjust(result.LoanValue, result.RetailValue, req.Mileage, year, now)

	// 3. Record history for listed vehicles only.
	saved := false
	err = uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		vehicle, err := repos.Vehicles.FindByVIN(ctx, req.VIN)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find vehicle: %w", err)
		}
		adjusted := result
		adjusted.LoanValue = adj.AdjustedLoanValue
		adjusted.RetailValue = adj.AdjustedRetailValue
		if err := repos.Valuations.Save(ctx, model.NewValuation(vehicle, adjusted, req.Mileage, now)); err != nil {
			return fmt.Errorf("save valuation: %w", err)
		}
		saved = true
		return nil
	})
	if err != nil {
		return dto.VehicleEvaluationResponse{}, err
	}

	return dto.VehicleEvaluationResponse{
		VIN:                   req.VIN,
		Make:                  result.Make,
		Model:                 result.Model,
		Year:                  result.Year,
		Trim:                  result.Trim,
		Engine:                result.Engine,
		Transmission:          result.Transmission,
		FuelType:              result.FuelType,
		BaselineRetailValue:   result.RetailValue,
		BaselineLoanValue:     result.LoanValue,
		SuggestedRetailValue:  adj.AdjustedRetailValue,
		SuggestedLoanValue:    adj.AdjustedLoanValue,
		SuggestedListingPrice: adj.AdjustedRetailValue,
		MileageAdjustment: dto.MileageAdjustmentResponse{
			DeltaMiles:  adj.DeltaMiles,
			AdjLoan:     adj.AdjLoan,
			AdjRetail:   adj.AdjRetail,
			Explanation: uc.adjuster.Explain(adj, result.Currency),
		},
		SuggestedDownPaymentPct: suggestedDownPaymentPct,
		SuggestedMinLoanValue:   suggestedMinLoanValue,
		SuggestedMaxLoanPeriod:  uc.policy.MaxTermMonths,
		Source:                  result.Source,
		Saved:                   saved,
	}, nil
}
