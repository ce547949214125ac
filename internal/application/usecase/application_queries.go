package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// GetApplicationUseCase returns one application to its owner or an admin.
type GetApplicationUseCase struct {
	uow port.UnitOfWork
}

// NewGetApplicationUseCase wires dependencies.
func NewGetApplicationUseCase(uow port.UnitOfWork) *GetApplicationUseCase {
	return &GetApplicationUseCase{uow: uow}
}

// Execute retrieves an application. Applications the caller may not view are
// reported as not found.
func (uc *GetApplicationUseCase) Execute(ctx context.Context, req dto.ApplicationRef) (dto.LoanApplicationResponse, error) {
	var app model.LoanApplication
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		app, err = repos.Applications.FindByID(ctx, req.ApplicationID)
		return err
	})
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("find application: %w", err)
	}
	if !app.CanBeViewedBy(actorOf(req.Caller)) {
		return dto.LoanApplicationResponse{}, apperr.NotFound("loan application", req.ApplicationID)
	}
	return toApplicationResponse(app), nil
}

// ListApplicationsUseCase lists every application for admins and the
// caller's own applications otherwise, newest first.
type ListApplicationsUseCase struct {
	uow port.UnitOfWork
}

// NewListApplicationsUseCase wires dependencies.
func NewListApplicationsUseCase(uow port.UnitOfWork) *ListApplicationsUseCase {
	return &ListApplicationsUseCase{uow: uow}
}

// Execute lists applications visible to the caller.
func (uc *ListApplicationsUseCase) Execute(ctx context.Context, req dto.ListApplicationsRequest) ([]dto.LoanApplicationResponse, error) {
	if err := requireUser(req.Caller); err != nil {
		return nil, err
	}

	filter := port.ApplicationFilter{Limit: req.Limit, Offset: req.Offset}
	if !req.Caller.IsAdmin {
		filter.UserID = req.Caller.UserID
	}
	if req.Status != "" {
		status, err := valueobject.NewLoanApplicationStatus(req.Status)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrInvalidRequest, err)
		}
		filter.Status = status
	}

	var apps []model.LoanApplication
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		apps, err = repos.Applications.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return toApplicationResponses(apps), nil
}

// ListUnclaimedApplicationsUseCase finds guest applications submitted with
// the caller's email that nobody has claimed yet.
type ListUnclaimedApplicationsUseCase struct {
	uow port.UnitOfWork
}

// NewListUnclaimedApplicationsUseCase wires dependencies.
func NewListUnclaimedApplicationsUseCase(uow port.UnitOfWork) *ListUnclaimedApplicationsUseCase {
	return &ListUnclaimedApplicationsUseCase{uow: uow}
}

// Execute lists claimable applications for the caller.
func (uc *ListUnclaimedApplicationsUseCase) Execute(ctx context.Context, caller dto.Caller) ([]dto.LoanApplicationResponse, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(caller.Email)
	if email == "" {
		return nil, apperr.New(apperr.ErrInvalidRequest, "caller has no email address")
	}

	var apps []model.LoanApplication
	err := uc.uow.Do(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		apps, err = repos.Applications.ListUnclaimedByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list unclaimed applications: %w", err)
	}
	return toApplicationResponses(apps), nil
}
