package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/pkg/events"
)

// GetOfferUseCase returns one offer to the application owner or an admin.
// An overdue offer is flipped to EXPIRED and the read fails.
type GetOfferUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewGetOfferUseCase wires dependencies.
func NewGetOfferUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *GetOfferUseCase {
	return &GetOfferUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute retrieves the offer.
func (uc *GetOfferUseCase) Execute(ctx context.Context, req dto.OfferRef) (dto.OfferResponse, error) {
	offer, err := uc.load(ctx, req)
	if err != nil {
		return dto.OfferResponse{}, err
	}
	return toOfferResponse(offer), nil
}

// Schedule retrieves the offer with its amortization schedule.
func (uc *GetOfferUseCase) Schedule(ctx context.Context, req dto.OfferRef) (dto.OfferScheduleResponse, error) {
	offer, err := uc.load(ctx, req)
	if err != nil {
		return dto.OfferScheduleResponse{}, err
	}
	return toScheduleResponse(offer), nil
}

func (uc *GetOfferUseCase) load(ctx context.Context, req dto.OfferRef) (model.Offer, error) {
	now := uc.clock()

	var (
		offer   model.Offer
		app     model.LoanApplication
		expired bool
		pending events.Batch
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		offer, app, err = loadOffer(ctx, repos, req.OfferID, req.Caller, offerAccess{allowAdmin: true})
		if err != nil {
			return err
		}
		offer, expired, err = expireIfDue(ctx, repos, offer, now, &pending)
		return err
	})
	if err != nil {
		return model.Offer{}, err
	}

	if expired {
		uc.dispatcher.announceExpiry(ctx, app.UserID(), []model.Offer{offer}, now)
		uc.dispatcher.Publish(ctx, pending.Drain()...)
		return model.Offer{}, errOfferExpired(req.OfferID)
	}
	return offer, nil
}

// ListUserOffersUseCase lists the offers on the caller's applications,
// newest first, flipping overdue ones to EXPIRED.
type ListUserOffersUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewListUserOffersUseCase wires dependencies.
func NewListUserOffersUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *ListUserOffersUseCase {
	return &ListUserOffersUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute lists the caller's offers.
func (uc *ListUserOffersUseCase) Execute(ctx context.Context, caller dto.Caller) ([]dto.OfferResponse, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	now := uc.clock()

	var (
		offers  []model.Offer
		flipped []model.Offer
		pending events.Batch
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		offers, err = repos.Offers.ListByUser(ctx, caller.UserID)
		if err != nil {
			return fmt.Errorf("list offers: %w", err)
		}
		offers, flipped, err = expireAll(ctx, repos, offers, now, &pending)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.dispatcher.announceExpiry(ctx, caller.UserID, flipped, now)
	uc.dispatcher.Publish(ctx, pending.Drain()...)
	return toOfferResponses(offers), nil
}

// ListApplicationOffersUseCase lists the offers on one application for its
// owner or an admin, flipping overdue ones to EXPIRED.
type ListApplicationOffersUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewListApplicationOffersUseCase wires dependencies.
func NewListApplicationOffersUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *ListApplicationOffersUseCase {
	return &ListApplicationOffersUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute lists the application's offers.
func (uc *ListApplicationOffersUseCase) Execute(ctx context.Context, req dto.ApplicationRef) ([]dto.OfferResponse, error) {
	now := uc.clock()

	var (
		app     model.LoanApplication
		offers  []model.Offer
		flipped []model.Offer
		pending events.Batch
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		app, err = repos.Applications.FindByID(ctx, req.ApplicationID)
		if err != nil {
			return fmt.Errorf("find application: %w", err)
		}
		if !app.CanBeViewedBy(actorOf(req.Caller)) {
			return apperr.NotFound("loan application", req.ApplicationID)
		}
		offers, err = repos.Offers.ListByApplication(ctx, app.ID())
		if err != nil {
			return fmt.Errorf("list offers: %w", err)
		}
		offers, flipped, err = expireAll(ctx, repos, offers, now, &pending)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.dispatcher.announceExpiry(ctx, app.UserID(), flipped, now)
	uc.dispatcher.Publish(ctx, pending.Drain()...)
	return toOfferResponses(offers), nil
}

// expireAll flips every overdue offer and returns the updated list plus the
// offers that were flipped.
func expireAll(
	ctx context.Context,
	repos port.Repositories,
	offers []model.Offer,
	now time.Time,
	pending *events.Batch,
) ([]model.Offer, []model.Offer, error) {
	var flipped []model.Offer
	out := make([]model.Offer, len(offers))
	for i, o := range offers {
		next, expired, err := expireIfDue(ctx, repos, o, now, pending)
		if err != nil {
			return nil, nil, err
		}
		if expired {
			flipped = append(flipped, next)
		}
		out[i] = next
	}
	return out, flipped, nil
}
