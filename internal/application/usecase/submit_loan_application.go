package usecase

import (
	"context"
	"fmt"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// SubmitLoanApplicationUseCase evaluates requested terms against a vehicle
// snapshot and persists the application with its frozen verdict. Applications
// that are not ELIGIBLE are still stored, as REJECTED.
type SubmitLoanApplicationUseCase struct {
	uow        port.UnitOfWork
	evaluator  service.EligibilityEvaluator
	policy     valueobject.PolicyConfig
	dispatcher *Dispatcher
	clock      Clock
}

// NewSubmitLoanApplicationUseCase wires dependencies.
func NewSubmitLoanApplicationUseCase(
	uow port.UnitOfWork,
	policy valueobject.PolicyConfig,
	dispatcher *Dispatcher,
	clock Clock,
) *SubmitLoanApplicationUseCase {
	return &SubmitLoanApplicationUseCase{
		uow:        uow,
		evaluator:  service.NewEligibilityEvaluator(policy),
		policy:     policy,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// Execute submits a loan application. An empty caller submits as a guest.
func (uc *SubmitLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.SubmitApplicationRequest,
) (dto.LoanApplicationResponse, error) {
	now := uc.clock()

	var app model.LoanApplication
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		// 1. Load the vehicle snapshot.
		vehicle, err := repos.Vehicles.GetValuationSnapshot(ctx, req.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle: %w", err)
		}
		if !vehicle.IsLoanAvailable {
			return apperr.New(apperr.ErrInvalidRequest, "This vehicle is not available for financing.")
		}
		if !vehicle.HasLoanValue() {
			return apperr.Wrap(apperr.ErrInvalidRequest,
				fmt.Errorf("%w: financing is not available until the vehicle is valued", model.ErrMissingLoanValue))
		}

		// 2. Evaluate eligibility.
		terms := model.RequestedTerms{
			DownPaymentPct:        req.RequestedDownPaymentPct,
			DownPaymentAmount:     req.RequestedDownPaymentAmount,
			TermMonths:            req.RequestedTermMonths,
			DesiredMonthlyPayment: req.DesiredMonthlyPayment,
			DesiredInterestRate:   req.DesiredInterestRate,
		}
		result, err := uc.evaluator.Evaluate(vehicle, model.EligibilityRequest{
			DownPaymentPct:    terms.DownPaymentPct,
			DownPaymentAmount: terms.DownPaymentAmount,
			TermMonths:        terms.TermMonths,
		}, now)
		if err != nil {
			return fmt.Errorf("evaluate eligibility: %w", classify(err))
		}

		// 3. Freeze the verdict into a new application.
		app, err = model.NewLoanApplication(vehicle, model.Applicant{
			Name:               req.ApplicantName,
			Email:              req.ApplicantEmail,
			Phone:              req.ApplicantPhone,
			BVN:                req.BVN,
			NIN:                req.NIN,
			DateOfBirth:        req.DateOfBirth,
			ResidentialAddress: req.ResidentialAddress,
		}, req.Caller.UserID, terms, uc.policy.LTVCap, result, now)
		if err != nil {
			return fmt.Errorf("create application: %w", classify(err))
		}

		// 4. Persist.
		if err := repos.Applications.Save(ctx, app); err != nil {
			return fmt.Errorf("save application: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}

	// 5. After commit: metrics, notifications, events.
	uc.dispatcher.verdict(app.EligibilityStatus())
	uc.dispatcher.NotifyUser(ctx, app.UserID(), model.LoanSubmittedForApplicant(app, now))
	uc.dispatcher.NotifyAdmins(ctx, model.LoanSubmittedForAdmins(app, now))
	uc.dispatcher.Publish(ctx, app.DomainEvents()...)

	return toApplicationResponse(app), nil
}
