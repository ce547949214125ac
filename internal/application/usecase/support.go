package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/event"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// Clock returns the current time. Use cases take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }

// ---------------------------------------------------------------------------
// After-commit side effects
// ---------------------------------------------------------------------------

// Dispatcher delivers the side effects of a committed unit of work: domain
// events and notifications. Failures are logged and never returned.
type Dispatcher struct {
	publisher port.EventPublisher
	sink      port.NotificationSink
	metrics   port.MetricsRecorder
	logger    *slog.Logger
}

// NewDispatcher wires dependencies. Publisher, sink and metrics may be nil.
func NewDispatcher(
	publisher port.EventPublisher,
	sink port.NotificationSink,
	metrics port.MetricsRecorder,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{publisher: publisher, sink: sink, metrics: metrics, logger: logger}
}

// Publish sends events to the event bus.
func (d *Dispatcher) Publish(ctx context.Context, events ...event.DomainEvent) {
	if d.publisher == nil || len(events) == 0 {
		return
	}
	if err := d.publisher.Publish(ctx, events...); err != nil {
		d.logger.WarnContext(ctx, "publish domain events failed", "count", len(events), "error", err)
	}
}

// NotifyUser delivers n to one user. Guests (empty userID) are skipped.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID string, n model.Notification) {
	if d.sink == nil || userID == "" {
		return
	}
	if err := d.sink.NotifyUser(ctx, userID, n); err != nil {
		d.notificationFailed(ctx, n, err, "user_id", userID)
	}
}

// NotifyAdmins delivers n to every admin.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, n model.Notification) {
	if d.sink == nil {
		return
	}
	if err := d.sink.NotifyAdmins(ctx, n); err != nil {
		d.notificationFailed(ctx, n, err, "audience", "admins")
	}
}

func (d *Dispatcher) notificationFailed(ctx context.Context, n model.Notification, err error, attrs ...any) {
	if d.metrics != nil {
		d.metrics.NotificationFailed(string(n.Type))
	}
	d.logger.WarnContext(ctx, "notification delivery failed",
		append(attrs, "type", string(n.Type), "error", err)...)
}

func (d *Dispatcher) verdict(status valueobject.EligibilityStatus) {
	if d.metrics != nil {
		d.metrics.EligibilityVerdict(status.String())
	}
}

func (d *Dispatcher) offerTransition(status valueobject.OfferStatus) {
	if d.metrics != nil {
		d.metrics.OfferTransition(status.String())
	}
}

func (d *Dispatcher) valuationSource(tier string) {
	if d.metrics != nil {
		d.metrics.ValuationSource(tier)
	}
}

// ---------------------------------------------------------------------------
// Error classification
// ---------------------------------------------------------------------------

// classify tags domain sentinels with their application error kind. Errors
// that already carry a kind pass through.
func classify(err error) error {
	if err == nil || apperr.KindOf(err) != nil {
		return err
	}
	switch {
	case errors.Is(err, model.ErrOfferExpired):
		return apperr.Wrap(apperr.ErrExpired, err)
	case errors.Is(err, model.ErrAlreadyClaimed),
		errors.Is(err, model.ErrApplicationClosed),
		errors.Is(err, model.ErrOfferNotIssued),
		errors.Is(err, valueobject.ErrInvalidStatusTransition):
		return apperr.Wrap(apperr.ErrConflict, err)
	case errors.Is(err, model.ErrInvalidApplication),
		errors.Is(err, model.ErrInvalidOffer),
		errors.Is(err, model.ErrNotGuestApplication),
		errors.Is(err, model.ErrEmailMismatch),
		errors.Is(err, model.ErrMissingLoanValue),
		errors.Is(err, service.ErrInvalidEligibilityRequest):
		return apperr.Wrap(apperr.ErrInvalidRequest, err)
	}
	return err
}

func actorOf(c dto.Caller) model.Actor {
	return model.Actor{UserID: c.UserID, Email: c.Email, IsAdmin: c.IsAdmin}
}

func requireAdmin(c dto.Caller) error {
	if !c.IsAdmin {
		return apperr.New(apperr.ErrForbidden, "admin role required")
	}
	return nil
}

func requireUser(c dto.Caller) error {
	if c.UserID == "" {
		return apperr.New(apperr.ErrForbidden, "authentication required")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func toEligibilityResponse(v model.VehicleSnapshot, r model.EligibilityResult) dto.EligibilityResponse {
	return dto.EligibilityResponse{
		VehicleID:             v.ID,
		Status:                r.Status.String(),
		Reasons:               r.Reasons,
		ListingPrice:          r.ListingPrice,
		PlannedDownAmount:     r.PlannedDownAmount,
		InitialNeeded:         r.InitialNeeded,
		MaxFinance:            r.MaxFinance,
		ValidatedLoanAmount:   r.ValidatedLoanAmount,
		RequiredExtraDown:     r.RequiredExtraDown,
		ImpliedMonthlyPayment: r.ImpliedMonthlyPayment,
		ImpliedTotalInterest:  r.ImpliedTotalInterest,
		Currency:              v.Currency,
	}
}

func toApplicationResponse(app model.LoanApplication) dto.LoanApplicationResponse {
	rec := app.Record()
	var userID *string
	if rec.UserID != "" {
		id := rec.UserID
		userID = &id
	}
	reasons := rec.EligibilityReasons
	if reasons == nil {
		reasons = []string{}
	}
	return dto.LoanApplicationResponse{
		ID:                         rec.ID,
		VehicleID:                  rec.VehicleID,
		UserID:                     userID,
		IsGuest:                    rec.IsGuest,
		ClaimedAt:                  rec.ClaimedAt,
		ApplicantName:              rec.Applicant.Name,
		ApplicantEmail:             rec.Applicant.Email,
		ApplicantPhone:             rec.Applicant.Phone,
		BVN:                        rec.Applicant.BVN,
		NIN:                        rec.Applicant.NIN,
		DateOfBirth:                rec.Applicant.DateOfBirth,
		ResidentialAddress:         rec.Applicant.ResidentialAddress,
		RequestedDownPaymentPct:    rec.Terms.DownPaymentPct,
		RequestedDownPaymentAmount: rec.Terms.DownPaymentAmount,
		RequestedTermMonths:        rec.Terms.TermMonths,
		DesiredMonthlyPayment:      rec.Terms.DesiredMonthlyPayment,
		DesiredInterestRate:        rec.Terms.DesiredInterestRate,
		ListingPrice:               rec.ListingPrice,
		SnapshotRetailValue:        rec.SnapshotRetailValue,
		SnapshotLoanValue:          rec.SnapshotLoanValue,
		ValuationFetchedAt:         rec.ValuationFetchedAt,
		Currency:                   rec.Currency,
		LTVCap:                     rec.LTVCap,
		PlannedDownAmount:          rec.PlannedDownAmount,
		InitialNeeded:              rec.InitialNeeded,
		MaxFinance:                 rec.MaxFinance,
		ValidatedLoanAmount:        rec.ValidatedLoanAmount,
		RequiredExtraDown:          rec.RequiredExtraDown,
		ImpliedMonthlyPayment:      rec.ImpliedMonthlyPayment,
		ImpliedTotalInterest:       rec.ImpliedTotalInterest,
		EligibilityStatus:          rec.EligibilityStatus.String(),
		EligibilityReasons:         reasons,
		Status:                     rec.Status.String(),
		Version:                    rec.Version,
		CreatedAt:                  rec.CreatedAt,
		UpdatedAt:                  rec.UpdatedAt,
	}
}

func toApplicationResponses(apps []model.LoanApplication) []dto.LoanApplicationResponse {
	out := make([]dto.LoanApplicationResponse, len(apps))
	for i, app := range apps {
		out[i] = toApplicationResponse(app)
	}
	return out
}

func toOfferResponse(o model.Offer) dto.OfferResponse {
	rec := o.Record()
	return dto.OfferResponse{
		ID:                rec.ID,
		LoanApplicationID: rec.LoanApplicationID,
		AdminID:           rec.AdminID,
		LenderCode:        rec.LenderCode,
		OfferedLoanAmount: rec.OfferedLoanAmount,
		APR:               rec.APR,
		TermMonths:        rec.TermMonths,
		MonthlyPayment:    rec.MonthlyPayment,
		TotalInterest:     rec.TotalInterest,
		LTVAtOffer:        rec.LTVAtOffer,
		Status:            rec.Status.String(),
		ExpiresAt:         rec.ExpiresAt,
		Notes:             rec.Notes,
		Version:           rec.Version,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func toOfferResponses(offers []model.Offer) []dto.OfferResponse {
	out := make([]dto.OfferResponse, len(offers))
	for i, o := range offers {
		out[i] = toOfferResponse(o)
	}
	return out
}

func toScheduleResponse(o model.Offer) dto.OfferScheduleResponse {
	sched := o.Schedule()
	entries := make([]dto.AmortizationEntryResponse, len(sched))
	for i, e := range sched {
		entries[i] = dto.AmortizationEntryResponse{
			Period:           e.Period,
			DueDate:          e.DueDate,
			Payment:          e.Payment,
			Principal:        e.Principal,
			Interest:         e.Interest,
			RemainingBalance: e.RemainingBalance,
		}
	}
	return dto.OfferScheduleResponse{Offer: toOfferResponse(o), Schedule: entries}
}

func toValuationResponse(v model.Valuation) dto.ValuationResponse {
	return dto.ValuationResponse{
		ID:          v.ID,
		VehicleID:   v.VehicleID,
		VIN:         v.VIN,
		RetailValue: v.RetailValue,
		LoanValue:   v.LoanValue,
		Currency:    v.Currency,
		Mileage:     v.Mileage,
		Source:      v.Source,
		ProviderRef: v.ProviderRef,
		FetchedAt:   v.FetchedAt,
	}
}

func toVehicleResponse(v model.VehicleSnapshot) dto.VehicleResponse {
	return dto.VehicleResponse{
		ID:                     v.ID,
		VIN:                    v.VIN,
		Make:                   v.Make,
		Model:                  v.Model,
		Year:                   v.Year,
		Mileage:                v.Mileage,
		ListingPrice:           v.ListingPrice,
		LoanValue:              v.LoanValue,
		RetailValue:            v.RetailValue,
		RequiredDownPaymentPct: v.RequiredDownPaymentPct,
		Currency:               v.Currency,
		IsLoanAvailable:        v.IsLoanAvailable,
		ValuationSource:        v.ValuationSource,
		ValuationFetchedAt:     v.ValuationFetchedAt,
	}
}
