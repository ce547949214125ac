package usecase

import (
	"context"
	"fmt"

	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// CheckEligibilityUseCase previews the eligibility verdict for a vehicle and
// requested terms. Nothing is persisted.
type CheckEligibilityUseCase struct {
	uow       port.UnitOfWork
	evaluator service.EligibilityEvaluator
	clock     Clock
}

// NewCheckEligibilityUseCase wires dependencies.
func NewCheckEligibilityUseCase(uow port.UnitOfWork, policy valueobject.PolicyConfig, clock Clock) *CheckEligibilityUseCase {
	return &CheckEligibilityUseCase{uow: uow, evaluator: service.NewEligibilityEvaluator(policy), clock: clock}
}

// Execute evaluates the request against the vehicle's current snapshot.
func (uc *CheckEligibilityUseCase) Execute(ctx context.Context, req dto.CheckEligibilityRequest) (dto.EligibilityResponse, error) {
	var vehicle model.VehicleSnapshot
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		vehicle, err = repos.Vehicles.GetValuationSnapshot(ctx, req.VehicleID)
		return err
	})
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("load vehicle: %w", err)
	}

	result, err := uc.evaluator.Evaluate(vehicle, model.EligibilityRequest{
		DownPaymentPct:    req.RequestedDownPaymentPct,
		DownPaymentAmount: req.RequestedDownPaymentAmount,
		TermMonths:        req.RequestedTermMonths,
	}, uc.clock())
	if err != nil {
		return dto.EligibilityResponse{}, fmt.Errorf("evaluate eligibility: %w", classify(err))
	}
	return toEligibilityResponse(vehicle, result), nil
}
