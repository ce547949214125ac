package usecase

import (
	"context"
	"fmt"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/event"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/pkg/events"
)

// DeleteApplicationUseCase removes an application that has no open offers.
type DeleteApplicationUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewDeleteApplicationUseCase wires dependencies.
func NewDeleteApplicationUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *DeleteApplicationUseCase {
	return &DeleteApplicationUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute deletes the application when the caller is its owner, an admin, or
// the matching-email user of an unclaimed guest application. Overdue offers
// are flipped to EXPIRED before the open-offer check.
func (uc *DeleteApplicationUseCase) Execute(ctx context.Context, req dto.ApplicationRef) (dto.DeleteResponse, error) {
	if err := requireUser(req.Caller); err != nil {
		return dto.DeleteResponse{}, err
	}
	now := uc.clock()

	var (
		ownerID string
		flipped []model.Offer
		pending events.Batch
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		app, err := repos.Applications.FindByIDForUpdate(ctx, req.ApplicationID)
		if err != nil {
			return fmt.Errorf("find application: %w", err)
		}
		if !app.CanBeDeletedBy(actorOf(req.Caller)) {
			return apperr.New(apperr.ErrForbidden, "You are not authorized to delete this application")
		}
		ownerID = app.UserID()

		offers, err := repos.Offers.ListByApplication(ctx, app.ID())
		if err != nil {
			return fmt.Errorf("list offers: %w", err)
		}
		offers, flipped, err = expireAll(ctx, repos, offers, now, &pending)
		if err != nil {
			return err
		}
		statuses := make([]valueobject.OfferStatus, len(offers))
		for i, o := range offers {
			statuses[i] = o.Status()
		}
		if service.HasBlockingOffers(statuses) {
			return apperr.New(apperr.ErrConflict, "Cannot delete application with active offers")
		}

		if err := repos.Applications.Delete(ctx, app.ID()); err != nil {
			return fmt.Errorf("delete application: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.DeleteResponse{}, err
	}

	uc.dispatcher.announceExpiry(ctx, ownerID, flipped, now)
	uc.dispatcher.Publish(ctx, pending.Drain()...)
	uc.dispatcher.Publish(ctx, event.NewLoanApplicationDeleted(req.ApplicationID, req.Caller.UserID, now))
	return dto.DeleteResponse{Message: "Loan application deleted successfully"}, nil
}
