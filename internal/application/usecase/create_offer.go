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

// CreateOfferUseCase issues an admin offer against an application and moves
// the application to PENDING_OFFER in the same transaction.
type CreateOfferUseCase struct {
	uow        port.UnitOfWork
	dispatcher *Dispatcher
	clock      Clock
}

// NewCreateOfferUseCase wires dependencies.
func NewCreateOfferUseCase(uow port.UnitOfWork, dispatcher *Dispatcher, clock Clock) *CreateOfferUseCase {
	return &CreateOfferUseCase{uow: uow, dispatcher: dispatcher, clock: clock}
}

// Execute creates the offer.
func (uc *CreateOfferUseCase) Execute(ctx context.Context, req dto.CreateOfferRequest) (dto.OfferResponse, error) {
	if err := requireAdmin(req.Caller); err != nil {
		return dto.OfferResponse{}, err
	}
	now := uc.clock()

	var (
		offer   model.Offer
		app     model.LoanApplication
		pending events.Batch
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		// 1. Lock the application.
		var err error
		app, err = repos.Applications.FindByIDForUpdate(ctx, req.LoanApplicationID)
		if err != nil {
			return fmt.Errorf("find application: %w", err)
		}
		if st := app.Status(); st.Equal(valueobject.LoanApplicationStatusRejected) || st.Equal(valueobject.LoanApplicationStatusCancelled) {
			return apperr.New(apperr.ErrInvalidRequest, "Cannot create offer for loan with status: %s", st)
		}

		// 2. Issue the offer against the frozen snapshot.
		offer, err = model.NewOffer(model.NewOfferParams{
			LoanApplicationID: app.ID(),
			AdminID:           req.Caller.UserID,
			LenderCode:        req.LenderCode,
			OfferedLoanAmount: req.OfferedLoanAmount,
			APR:               req.APR,
			TermMonths:        req.TermMonths,
			ExpiresAt:         req.ExpiresAt,
			Notes:             req.Notes,
		}, app.SnapshotLoanValue(), now)
		if err != nil {
			return fmt.Errorf("create offer: %w", classify(err))
		}

		// 3. Flip the application.
		app, err = app.MarkPendingOffer(now)
		if err != nil {
			return fmt.Errorf("mark pending offer: %w", classify(err))
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

	uc.dispatcher.offerTransition(offer.Status())
	uc.dispatcher.NotifyUser(ctx, app.UserID(), model.OfferCreated(offer, app.Currency(), now))
	uc.dispatcher.NotifyUser(ctx, app.UserID(), model.LoanApproved(app, offer.OfferedLoanAmount(), now))
	uc.dispatcher.Publish(ctx, pending.Drain()...)

	return toOfferResponse(offer), nil
}
