package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
)

// UpdateVehiclePricingUseCase edits a vehicle's pricing unless open
// applications or offers depend on it.
type UpdateVehiclePricingUseCase struct {
	uow port.UnitOfWork
}

// NewUpdateVehiclePricingUseCase wires dependencies.
func NewUpdateVehiclePricingUseCase(uow port.UnitOfWork) *UpdateVehiclePricingUseCase {
	return &UpdateVehiclePricingUseCase{uow: uow}
}

// Execute applies the pricing update.
func (uc *UpdateVehiclePricingUseCase) Execute(ctx context.Context, req dto.UpdateVehiclePricingRequest) (dto.VehicleResponse, error) {
	if err := requireAdmin(req.Caller); err != nil {
		return dto.VehicleResponse{}, err
	}
	update := model.PricingUpdate{
		ListingPrice:           req.ListingPrice,
		RequiredDownPaymentPct: req.RequiredDownPaymentPct,
		IsLoanAvailable:        req.IsLoanAvailable,
	}
	if err := validatePricing(update); err != nil {
		return dto.VehicleResponse{}, err
	}

	var updated model.VehicleSnapshot
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		vehicle, err := repos.Vehicles.GetValuationSnapshot(ctx, req.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle: %w", err)
		}

		loanStatuses, err := repos.Applications.StatusesByVehicle(ctx, vehicle.ID)
		if err != nil {
			return fmt.Errorf("load application statuses: %w", err)
		}
		if service.HasBlockingLoans(loanStatuses) {
			return apperr.New(apperr.ErrConflict, "Cannot modify vehicle with active loan applications")
		}
		offerStatuses, err := repos.Offers.StatusesByVehicle(ctx, vehicle.ID)
		if err != nil {
			return fmt.Errorf("load offer statuses: %w", err)
		}
		if service.HasBlockingOffers(offerStatuses) {
			return apperr.New(apperr.ErrConflict, "Cannot modify vehicle with active offers")
		}

		updated = update.Apply(vehicle)
		if err := repos.Vehicles.UpdatePricing(ctx, updated); err != nil {
			return fmt.Errorf("update pricing: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.VehicleResponse{}, err
	}
	return toVehicleResponse(updated), nil
}

func validatePricing(u model.PricingUpdate) error {
	switch {
	case u.IsEmpty():
		return apperr.New(apperr.ErrInvalidRequest, "no pricing fields to update")
	case u.ListingPrice != nil && u.ListingPrice.IsNegative():
		return apperr.New(apperr.ErrInvalidRequest, "listing price must not be negative")
	case u.RequiredDownPaymentPct != nil &&
		(u.RequiredDownPaymentPct.IsNegative() || u.RequiredDownPaymentPct.GreaterThan(decimal.NewFromInt(1))):
		return apperr.New(apperr.ErrInvalidRequest, "required down payment pct must be between 0 and 1")
	}
	return nil
}
