package usecase

import (
	"context"
	"fmt"

	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

// ClaimApplicationUseCase links a guest application to the signed-in user
// whose email matches the applicant email.
type ClaimApplicationUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewClaimApplicationUseCase wires dependencies.
func NewClaimApplicationUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *ClaimApplicationUseCase {
	return &ClaimApplicationUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute claims the application for the caller.
func (uc *ClaimApplicationUseCase) Execute(ctx context.Context, req dto.ApplicationRef) (dto.LoanApplicationResponse, error) {
	if err := requireUser(req.Caller); err != nil {
		return dto.LoanApplicationResponse{}, err
	}
	now := uc.clock()

	var claimed model.LoanApplication
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		app, err := repos.Applications.FindByIDForUpdate(ctx, req.ApplicationID)
		if err != nil {
			return fmt.Errorf("find application: %w", err)
		}
		claimed, err = app.Claim(req.Caller.UserID, req.Caller.Email, now)
		if err != nil {
			return fmt.Errorf("claim application: %w", classify(err))
		}
		if err := repos.Applications.Save(ctx, claimed); err != nil {
			return fmt.Errorf("save application: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}

	uc.dispatcher.Publish(ctx, claimed.DomainEvents()...)
	return toApplicationResponse(claimed), nil
}
