package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

// RequestValuationUseCase prices a listed vehicle, records the valuation in
// its history and refreshes the vehicle's valuation snapshot.
type RequestValuationUseCase struct {
	uow        port.UnitOfWork
	provider   port.ValuationProvider
	dispatcher *Dispatcher
	clock      Clock
	logger     *slog.Logger
}

// NewRequestValuationUseCase wires dependencies. The provider is expected to
// fall back internally when the external source is unavailable.
func NewRequestValuationUseCase(
	uow port.UnitOfWork,
	provider port.ValuationProvider,
	dispatcher *Dispatcher,
	clock Clock,
	logger *slog.Logger,
) *RequestValuationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestValuationUseCase{uow: uow, provider: provider, dispatcher: dispatcher, clock: clock, logger: logger}
}

// Execute values the vehicle with the given VIN.
func (uc *RequestValuationUseCase) Execute(ctx context.Context, req dto.RequestValuationRequest) (dto.ValuationResponse, error) {
	if req.VIN == "" {
		return dto.ValuationResponse{}, apperr.New(apperr.ErrInvalidRequest, "vin is required")
	}

	// 1. Resolve the vehicle.
	var vehicle model.VehicleSnapshot
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		vehicle, err = repos.Vehicles.FindByVIN(ctx, req.VIN)
		return err
	})
	if err != nil {
		return dto.ValuationResponse{}, fmt.Errorf("find vehicle: %w", err)
	}

	// 2. Price it outside the transaction; the provider may call out.
	result, err := uc.provider.FetchValuation(ctx, vehicle)
	if err != nil {
		return dto.ValuationResponse{}, fmt.Errorf("fetch valuation: %w", err)
	}
	uc.dispatcher.valuationSource(result.Source)
	now := uc.clock()

	// 3. Record history and refresh the snapshot together.
	valuation := model.NewValuation(vehicle, result, vehicle.Mileage, now)
	err = uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		if err := repos.Valuations.Save(ctx, valuation); err != nil {
			return fmt.Errorf("save valuation: %w", err)
		}
		if err := repos.Vehicles.UpdateValuation(ctx, vehicle.ID, result, now); err != nil {
			return fmt.Errorf("update vehicle valuation: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.ValuationResponse{}, err
	}

	uc.logger.InfoContext(ctx, "vehicle valued", "vin", req.VIN, "source", result.Source, "loan_value", result.LoanValue.String())
	return toValuationResponse(valuation), nil
}

// ValuationHistoryUseCase lists a vehicle's valuations, newest first.
type ValuationHistoryUseCase struct {
	uow port.UnitOfWork
}

// NewValuationHistoryUseCase wires dependencies.
func NewValuationHistoryUseCase(uow port.UnitOfWork) *ValuationHistoryUseCase {
	return &ValuationHistoryUseCase{uow: uow}
}

// Execute lists the history for a VIN.
func (uc *ValuationHistoryUseCase) Execute(ctx context.Context, req dto.ValuationHistoryRequest) ([]dto.ValuationResponse, error) {
	var history []model.Valuation
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		vehicle, err := repos.Vehicles.FindByVIN(ctx, req.VIN)
		if err != nil {
			return fmt.Errorf("find vehicle: %w", err)
		}
		history, err = repos.Valuations.ListByVehicle(ctx, vehicle.ID)
		if err != nil {
			return fmt.Errorf("list valuations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.ValuationResponse, len(history))
	for i, v := range history {
		out[i] = toValuationResponse(v)
	}
	return out, nil
}
