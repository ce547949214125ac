package usecase

import (
	"context"
	"fmt"

	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/pkg/events"
)

// AcceptOfferUseCase accepts an issued offer and approves its application
// atomically. Concurrent accepts are serialized by the offer row lock; the
// loser sees a non-ISSUED offer.
type AcceptOfferUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewAcceptOfferUseCase wires dependencies.
func NewAcceptOfferUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *AcceptOfferUseCase {
	return &AcceptOfferUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute accepts the offer on behalf of the application owner.
func (uc *AcceptOfferUseCase) Execute(ctx context.Context, req dto.OfferRef) (dto.OfferResponse, error) {
	if err := requireUser(req.Caller); err != nil {
		return dto.OfferResponse{}, err
	}
	now := uc.clock()

	var (
		offer   model.Offer
		app     model.LoanApplication
		expired bool
		pending events.Batch
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		offer, app, err = loadOffer(ctx, repos, req.OfferID, req.Caller, offerAccess{forUpdate: true})
		if err != nil {
			return err
		}

		// The expiry flip commits even though the call fails.
		offer, expired, err = expireIfDue(ctx, repos, offer, now, &pending)
		if err != nil || expired {
			return err
		}

		offer, err = offer.Accept(req.Caller.UserID, now)
		if err != nil {
			return fmt.Errorf("accept offer: %w", classify(err))
		}
		app, err = app.Approve(now)
		if err != nil {
			return fmt.Errorf("approve application: %w", classify(err))
		}

		if err := repos.Offers.Save(ctx, offer); err != nil {
			return fmt.Errorf("save offer: %w", err)
		}
		if err := repos.Applications.Save(ctx, app); err != nil {
			return fmt.Errorf("save application: %w", err)
		}
		pending.Add(offer.DomainEvents()...)
		pending.Add(app.DomainEvents()...)
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
	uc.dispatcher.NotifyAdmins(ctx, model.OfferAccepted(offer, app.Currency(), req.Caller.UserID, now))
	uc.dispatcher.NotifyUser(ctx, app.UserID(), model.LoanApproved(app, offer.OfferedLoanAmount(), now))
	return toOfferResponse(offer), nil
}

// DeclineOfferUseCase declines an issued offer, keeping the decline note.
type DeclineOfferUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewDeclineOfferUseCase wires dependencies.
func NewDeclineOfferUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *DeclineOfferUseCase {
	return &DeclineOfferUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute declines the offer on behalf of the application owner.
func (uc *DeclineOfferUseCase) Execute(ctx context.Context, req dto.DeclineOfferRequest) (dto.OfferResponse, error) {
	if err := requireUser(req.Caller); err != nil {
		return dto.OfferResponse{}, err
	}
	now := uc.clock()

	var (
		offer   model.Offer
		app     model.LoanApplication
		expired bool
		pending events.Batch
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		offer, app, err = loadOffer(ctx, repos, req.OfferID, req.Caller, offerAccess{forUpdate: true})
		if err != nil {
			return err
		}

		offer, expired, err = expireIfDue(ctx, repos, offer, now, &pending)
		if err != nil || expired {
			return err
		}

		offer, err = offer.Decline(req.Caller.UserID, req.DeclineNote, now)
		if err != nil {
			return fmt.Errorf("decline offer: %w", classify(err))
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
	uc.dispatcher.NotifyUser(ctx, app.UserID(), model.OfferDeclined(offer, now))
	return toOfferResponse(offer), nil
}
