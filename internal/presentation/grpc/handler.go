package grpc

import (
	"context"
	"log/slog"

	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/application/usecase"
	"github.com/Nathan-Yinka/autochek-API/pkg/auth"
)

// UseCases groups the application operations the handler exposes.
type UseCases struct {
	CheckEligibility        *usecase.CheckEligibilityUseCase
	SubmitApplication       *usecase.SubmitLoanApplicationUseCase
	GetApplication          *usecase.GetApplicationUseCase
	ListApplications        *usecase.ListApplicationsUseCase
	ListUnclaimed           *usecase.ListUnclaimedApplicationsUseCase
	ClaimApplication        *usecase.ClaimApplicationUseCase
	UpdateApplicationStatus *usecase.UpdateApplicationStatusUseCase
	DeleteApplication       *usecase.DeleteApplicationUseCase
	CreateOffer             *usecase.CreateOfferUseCase
	GetOffer                *usecase.GetOfferUseCase
	ListUserOffers          *usecase.ListUserOffersUseCase
	ListApplicationOffers   *usecase.ListApplicationOffersUseCase
	AcceptOffer             *usecase.AcceptOfferUseCase
	DeclineOffer            *usecase.DeclineOfferUseCase
	UpdateOfferStatus       *usecase.UpdateOfferStatusUseCase
	RequestValuation        *usecase.RequestValuationUseCase
	ValuationHistory        *usecase.ValuationHistoryUseCase
	EvaluateVehicle         *usecase.EvaluateVehicleUseCase
	UpdateVehiclePricing    *usecase.UpdateVehiclePricingUseCase
	ListNotifications       *usecase.ListNotificationsUseCase
	MarkNotificationsRead   *usecase.MarkNotificationsReadUseCase
}

var _ FinancingServiceServer = (*FinancingHandler)(nil)

// FinancingHandler adapts gRPC calls to use cases. The caller identity always
// comes from the verified token, never from the payload.
type FinancingHandler struct {
	uc     UseCases
	logger *slog.Logger
}

// NewFinancingHandler creates a handler.
func NewFinancingHandler(uc UseCases, logger *slog.Logger) *FinancingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FinancingHandler{uc: uc, logger: logger}
}

// callerFrom reads the verified claims. Anonymous calls yield the zero Caller.
func callerFrom(ctx context.Context) dto.Caller {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return dto.Caller{}
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return dto.Caller{UserID: userID, Email: claims.Email, IsAdmin: claims.IsAdmin()}
}

// reply converts a use-case result into a gRPC response.
func reply[T any](ctx context.Context, h *FinancingHandler, v T, err error) (*T, error) {
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &v, nil
}

func (h *FinancingHandler) CheckEligibility(ctx context.Context, req *dto.CheckEligibilityRequest) (*dto.EligibilityResponse, error) {
	resp, err := h.uc.CheckEligibility.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest) (*dto.LoanApplicationResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.SubmitApplication.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) GetApplication(ctx context.Context, req *dto.ApplicationRef) (*dto.LoanApplicationResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.GetApplication.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) (*ApplicationList, error) {
	req.Caller = callerFrom(ctx)
	apps, err := h.uc.ListApplications.Execute(ctx, *req)
	return reply(ctx, h, ApplicationList{Applications: apps}, err)
}

func (h *FinancingHandler) ListUnclaimedApplications(ctx context.Context, _ *Empty) (*ApplicationList, error) {
	apps, err := h.uc.ListUnclaimed.Execute(ctx, callerFrom(ctx))
	return reply(ctx, h, ApplicationList{Applications: apps}, err)
}

func (h *FinancingHandler) ClaimApplication(ctx context.Context, req *dto.ApplicationRef) (*dto.LoanApplicationResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.ClaimApplication.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) UpdateApplicationStatus(ctx context.Context, req *dto.UpdateApplicationStatusRequest) (*dto.LoanApplicationResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.UpdateApplicationStatus.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) DeleteApplication(ctx context.Context, req *dto.ApplicationRef) (*dto.DeleteResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.DeleteApplication.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) CreateOffer(ctx context.Context, req *dto.CreateOfferRequest) (*dto.OfferResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.CreateOffer.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) GetOffer(ctx context.Context, req *dto.OfferRef) (*dto.OfferResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.GetOffer.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) GetOfferSchedule(ctx context.Context, req *dto.OfferRef) (*dto.OfferScheduleResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.GetOffer.Schedule(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) ListMyOffers(ctx context.Context, _ *Empty) (*OfferList, error) {
	offers, err := h.uc.ListUserOffers.Execute(ctx, callerFrom(ctx))
	return reply(ctx, h, OfferList{Offers: offers}, err)
}

func (h *FinancingHandler) ListApplicationOffers(ctx context.Context, req *dto.ApplicationRef) (*OfferList, error) {
	req.Caller = callerFrom(ctx)
	offers, err := h.uc.ListApplicationOffers.Execute(ctx, *req)
	return reply(ctx, h, OfferList{Offers: offers}, err)
}

func (h *FinancingHandler) AcceptOffer(ctx context.Context, req *dto.OfferRef) (*dto.OfferResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.AcceptOffer.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) DeclineOffer(ctx context.Context, req *dto.DeclineOfferRequest) (*dto.OfferResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.DeclineOffer.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) UpdateOfferStatus(ctx context.Context, req *dto.UpdateOfferStatusRequest) (*dto.OfferResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.UpdateOfferStatus.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) RequestValuation(ctx context.Context, req *dto.RequestValuationRequest) (*dto.ValuationResponse, error) {
	resp, err := h.uc.RequestValuation.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) ListValuationHistory(ctx context.Context, req *dto.ValuationHistoryRequest) (*ValuationList, error) {
	rows, err := h.uc.ValuationHistory.Execute(ctx, *req)
	return reply(ctx, h, ValuationList{Valuations: rows}, err)
}

func (h *FinancingHandler) EvaluateVehicle(ctx context.Context, req *dto.EvaluateVehicleRequest) (*dto.VehicleEvaluationResponse, error) {
	resp, err := h.uc.EvaluateVehicle.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) UpdateVehiclePricing(ctx context.Context, req *dto.UpdateVehiclePricingRequest) (*dto.VehicleResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.UpdateVehiclePricing.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) ListNotifications(ctx context.Context, _ *Empty) (*NotificationList, error) {
	items, err := h.uc.ListNotifications.Execute(ctx, callerFrom(ctx))
	return reply(ctx, h, NotificationList{Notifications: items}, err)
}

func (h *FinancingHandler) MarkNotificationRead(ctx context.Context, req *dto.NotificationRef) (*dto.NotificationResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.MarkNotificationsRead.One(ctx, *req)
	return reply(ctx, h, resp, err)
}

func (h *FinancingHandler) MarkNotificationsRead(ctx context.Context, req *dto.MarkNotificationsReadRequest) (*dto.MarkNotificationsReadResponse, error) {
	req.Caller = callerFrom(ctx)
	resp, err := h.uc.MarkNotificationsRead.Execute(ctx, *req)
	return reply(ctx, h, resp, err)
}
