package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

const defaultRejectionReason = "No reason provided"

// UpdateApplicationStatusUseCase applies an admin status change within the
// application transition table and tells the applicant.
type UpdateApplicationStatusUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewUpdateApplicationStatusUseCase wires dependencies.
func NewUpdateApplicationStatusUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *UpdateApplicationStatusUseCase {
	return &UpdateApplicationStatusUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute moves the application to the requested status.
func (uc *UpdateApplicationStatusUseCase) Execute(
	ctx context.Context,
	req dto.UpdateApplicationStatusRequest,
) (dto.LoanApplicationResponse, error) {
	if err := requireAdmin(req.Caller); err != nil {
		return dto.LoanApplicationResponse{}, err
	}
	target, err := valueobject.NewLoanApplicationStatus(req.Status)
	if err != nil {
		return dto.LoanApplicationResponse{}, apperr.Wrap(apperr.ErrInvalidRequest, err)
	}
	now := uc.clock()

	var updated model.LoanApplication
	err = uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		app, err := repos.Applications.FindByIDForUpdate(ctx, req.ApplicationID)
		if err != nil {
			return fmt.Errorf("find application: %w", err)
		}
		updated, err = app.TransitionTo(target, req.RejectionReason, now)
		if err != nil {
			return fmt.Errorf("transition application: %w", classify(err))
		}
		if err := repos.Applications.Save(ctx, updated); err != nil {
			return fmt.Errorf("save application: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}

	uc.dispatcher.NotifyUser(ctx, updated.UserID(), statusNotification(updated, req.RejectionReason, now))
	uc.dispatcher.Publish(ctx, updated.DomainEvents()...)
	return toApplicationResponse(updated), nil
}

func statusNotification(app model.LoanApplication, reason string, now time.Time) model.Notification {
	switch app.Status() {
	case valueobject.LoanApplicationStatusRejected:
		if reason == "" {
			reason = defaultRejectionReason
		}
		return model.LoanRejected(app, reason, now)
	case valueobject.LoanApplicationStatusApproved:
		return model.LoanApproved(app, app.ValidatedLoanAmount(), now)
	default:
		return model.LoanStatusUpdated(app, now)
	}
}
