package port

import (
	"context"
	"errors"
	"time"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/event"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// ErrStaleVersion reports a save that lost an optimistic-lock race against a
// concurrent writer.
var ErrStaleVersion = errors.New("stale aggregate version")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// VehicleStore reads and updates the listed vehicles the engine prices against.
// Missing rows are reported as apperr.ErrNotFound.
type VehicleStore interface {
	GetValuationSnapshot(ctx context.Context, id string) (model.VehicleSnapshot, error)
	FindByVIN(ctx context.Context, vin string) (model.VehicleSnapshot, error)
	UpdateValuation(ctx context.Context, vehicleID string, result model.ValuationResult, fetchedAt time.Time) error
	UpdatePricing(ctx context.Context, vehicle model.VehicleSnapshot) error
}

// ApplicationFilter narrows List. An empty UserID lists every application.
type ApplicationFilter struct {
	UserID string
	Status valueobject.LoanApplicationStatus
	Limit  int
	Offset int
}

// LoanApplicationRepository persists and retrieves loan applications.
// Save is an upsert guarded by the record version.
type LoanApplicationRepository interface {
	Save(ctx context.Context, app model.LoanApplication) error
	FindByID(ctx context.Context, id string) (model.LoanApplication, error)
	FindByIDForUpdate(ctx context.Context, id string) (model.LoanApplication, error)
	List(ctx context.Context, filter ApplicationFilter) ([]model.LoanApplication, error)
	ListUnclaimedByEmail(ctx context.Context, email string) ([]model.LoanApplication, error)
	StatusesByVehicle(ctx context.Context, vehicleID string) ([]valueobject.LoanApplicationStatus, error)
	Delete(ctx context.Context, id string) error
}

// OfferRepository persists and retrieves offers.
type OfferRepository interface {
	Save(ctx context.Context, offer model.Offer) error
	FindByID(ctx context.Context, id string) (model.Offer, error)
	FindByIDForUpdate(ctx context.Context, id string) (model.Offer, error)
	ListByApplication(ctx context.Context, applicationID string) ([]model.Offer, error)
	ListByUser(ctx context.Context, userID string) ([]model.Offer, error)
	StatusesByVehicle(ctx context.Context, vehicleID string) ([]valueobject.OfferStatus, error)
}

// ValuationRepository appends valuation history rows.
type ValuationRepository interface {
	Save(ctx context.Context, v model.Valuation) error
	ListByVehicle(ctx context.Context, vehicleID string) ([]model.Valuation, error)
}

// Repositories is the set of repositories bound to one transaction.
type Repositories struct {
	Vehicles     VehicleStore
	Applications LoanApplicationRepository
	Offers       OfferRepository
	Valuations   ValuationRepository
}

// UnitOfWork runs fn inside a single transaction. Any error returned by fn
// rolls every write back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// ValuationProvider prices a vehicle. Providers that cannot answer return
// apperr.ErrUpstreamUnavailable (or apperr.ErrNotFound when they have no data).
type ValuationProvider interface {
	FetchValuation(ctx context.Context, vehicle model.VehicleSnapshot) (model.ValuationResult, error)
}

// NotificationSink delivers in-app notifications. Delivery is best effort.
type NotificationSink interface {
	NotifyUser(ctx context.Context, userID string, n model.Notification) error
	NotifyAdmins(ctx context.Context, n model.Notification) error
}

// NotificationInbox reads a user's delivered notifications and records which
// of them were read. Entries that fell off the capped inbox are gone.
type NotificationInbox interface {
	// Inbox returns the user's notifications, newest first.
	Inbox(ctx context.Context, userID string) ([]model.InboxEntry, error)
	// MarkRead marks the listed notifications read as of at and returns how
	// many of them are in the user's inbox. Unknown ids are ignored.
	MarkRead(ctx context.Context, userID string, ids []string, at time.Time) (int, error)
}

// MetricsRecorder counts business outcomes.
type MetricsRecorder interface {
	EligibilityVerdict(status string)
	OfferTransition(status string)
	ValuationSource(tier string)
	NotificationFailed(kind string)
}
