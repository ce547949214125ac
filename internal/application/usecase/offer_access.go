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

// offerAccess controls how an offer and its parent application are loaded.
type offerAccess struct {
	forUpdate  bool
	allowAdmin bool
}

// loadOffer loads an offer and its application. Callers that do not own the
// application (and are not admitted as admins) get not found.
func loadOffer(
	ctx context.Context,
	repos port.Repositories,
	offerID string,
	caller dto.Caller,
	access offerAccess,
) (model.Offer, model.LoanApplication, error) {
	findOffer, findApp := repos.Offers.FindByID, repos.Applications.FindByID
	if access.forUpdate {
		findOffer, findApp = repos.Offers.FindByIDForUpdate, repos.Applications.FindByIDForUpdate
	}

	offer, err := findOffer(ctx, offerID)
	if err != nil {
		return model.Offer{}, model.LoanApplication{}, fmt.Errorf("find offer: %w", err)
	}
	app, err := findApp(ctx, offer.LoanApplicationID())
	if err != nil {
		return model.Offer{}, model.LoanApplication{}, fmt.Errorf("find application: %w", err)
	}
	if !app.IsOwnedBy(caller.UserID) && !(access.allowAdmin && caller.IsAdmin) {
		return model.Offer{}, model.LoanApplication{}, apperr.NotFound("offer", offerID)
	}
	return offer, app, nil
}

// expireIfDue persists the EXPIRED flip of an overdue offer and records its
// events. It reports whether the flip happened.
func expireIfDue(
	ctx context.Context,
	repos port.Repositories,
	offer model.Offer,
	now time.Time,
	pending *events.Batch,
) (model.Offer, bool, error) {
	expired, flipped := offer.ExpireIfDue(now)
	if !flipped {
		return offer, false, nil
	}
	if err := repos.Offers.Save(ctx, expired); err != nil {
		return offer, false, fmt.Errorf("save expired offer: %w", err)
	}
	pending.Add(expired.DomainEvents()...)
	return expired, true, nil
}

// announceExpiry delivers the side effects of committed expiry flips.
func (d *Dispatcher) announceExpiry(ctx context.Context, userID string, expired []model.Offer, now time.Time) {
	for _, o := range expired {
		d.offerTransition(o.Status())
		d.NotifyUser(ctx, userID, model.OfferExpired(o, now))
	}
}

func errOfferExpired(offerID string) error {
	return apperr.Wrap(apperr.ErrExpired, fmt.Errorf("offer %q: %w", offerID, model.ErrOfferExpired))
}
