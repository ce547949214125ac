package usecase

import (
	"context"
	"fmt"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/pkg/events"
)

// UpdateOfferStatusUseCase is the admin override for an issued offer's status.
type UpdateOfferStatusUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewUpdateOfferStatusUseCase wires dependencies.
func NewUpdateOfferStatusUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *UpdateOfferStatusUseCase {
	return &UpdateOfferStatusUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute sets the offer status after the lazy expiry check.
func (uc *UpdateOfferStatusUseCase) Execute(ctx context.Context, req dto.UpdateOfferStatusRequest) (dto.OfferResponse, error) {
	if err := requireAdmin(req.Caller); err != nil {
		return dto.OfferResponse{}, err
	}
	target, err := valueobject.NewOfferStatus(req.Status)
	if err != nil {
		return dto.OfferResponse{}, apperr.Wrap(apperr.ErrInvalidRequest, err)
	}
	now := uc.clock()

	var (
		offer   model.Offer
		app     model.LoanApplication
		expired bool
		pending events.Batch
	)
	err = uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		offer, app, err = loadOffer(ctx, repos, req.OfferID, req.Caller, offerAccess{forUpdate: true, allowAdmin: true})
		if err != nil {
			return err
		}

		offer, expired, err = expireIfDue(ctx, repos, offer, now, &pending)
		if err != nil || expired {
			return err
		}

		offer, err = offer.SetStatus(target, now)
		if err != nil {
			return fmt.Errorf("update offer status: %w", classify(err))
		}
		if err := repos.Offers.Save(ctx, offer); err != nil {
			return fmt.Errorf("save offer: %w", err)
		}
		pending.Add(offer.DomainEvents()...)
		return nil
	})
	if err != nil {
		return dto.OfferResponse{}, err
	}
	defer uc.dispatcher.Publish(ctx, pending.Drain()...)

	if expired {
		uc.dispatcher.announceExpiry(ctx, app.UserID(), []model.Offer{offer}, now)
		return dto.OfferResponse{}, errOfferExpired(req.OfferID)
	}

	uc.dispatcher.offerTransition(offer.Status())
	return toOfferResponse(offer), nil
}
