package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	aggregateLoanApplication = "LoanApplication"
	aggregateOffer           = "Offer"
)

// Event type names, also used as Kafka message types.
const (
	TypeLoanApplicationSubmitted     = "financing.loan_application.submitted"
	TypeLoanApplicationClaimed       = "financing.loan_application.claimed"
	TypeLoanApplicationStatusChanged = "financing.loan_application.status_changed"
	TypeLoanApplicationDeleted       = "financing.loan_application.deleted"
	TypeOfferIssued                  = "financing.offer.issued"
	TypeOfferAccepted                = "financing.offer.accepted"
	TypeOfferDeclined                = "financing.offer.declined"
	TypeOfferExpired                 = "financing.offer.expired"
	TypeOfferStatusChanged           = "financing.offer.status_changed"
)

// ---------------------------------------------------------------------------
// Loan Application Events
// ---------------------------------------------------------------------------

// LoanApplicationSubmitted is raised when an application is persisted,
// whatever its verdict.
type LoanApplicationSubmitted struct {
	events.BaseEvent
	VehicleID           string          `json:"vehicle_id"`
	UserID              string          `json:"user_id,omitempty"`
	IsGuest             bool            `json:"is_guest"`
	EligibilityStatus   string          `json:"eligibility_status"`
	Status              string          `json:"status"`
	ValidatedLoanAmount decimal.Decimal `json:"validated_loan_amount"`
	Currency            string          `json:"currency"`
	TermMonths          int             `json:"term_months"`
}

func NewLoanApplicationSubmitted(
	applicationID, vehicleID, userID string, isGuest bool,
	eligibility, status string,
	validated decimal.Decimal, currency string, termMonths int,
	at time.Time,
) LoanApplicationSubmitted {
	return LoanApplicationSubmitted{
		BaseEvent:           events.NewBaseEvent(TypeLoanApplicationSubmitted, applicationID, aggregateLoanApplication, at),
		VehicleID:           vehicleID,
		UserID:              userID,
		IsGuest:             isGuest,
		EligibilityStatus:   eligibility,
		Status:              status,
		ValidatedLoanAmount: validated,
		Currency:            currency,
		TermMonths:          termMonths,
	}
}

// LoanApplicationClaimed is raised when a guest application is linked to a user.
type LoanApplicationClaimed struct {
	events.BaseEvent
	UserID string `json:"user_id"`
}

func NewLoanApplicationClaimed(applicationID, userID string, at time.Time) LoanApplicationClaimed {
	return LoanApplicationClaimed{
		BaseEvent: events.NewBaseEvent(TypeLoanApplicationClaimed, applicationID, aggregateLoanApplication, at),
		UserID:    userID,
	}
}

// LoanApplicationStatusChanged is raised on every lifecycle transition after creation.
type LoanApplicationStatusChanged struct {
	events.BaseEvent
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

func NewLoanApplicationStatusChanged(applicationID, from, to, reason string, at time.Time) LoanApplicationStatusChanged {
	return LoanApplicationStatusChanged{
		BaseEvent: events.NewBaseEvent(TypeLoanApplicationStatusChanged, applicationID, aggregateLoanApplication, at),
		From:      from,
		To:        to,
		Reason:    reason,
	}
}

// LoanApplicationDeleted is raised after an application row is removed.
type LoanApplicationDeleted struct {
	events.BaseEvent
	DeletedBy string `json:"deleted_by"`
}

func NewLoanApplicationDeleted(applicationID, deletedBy string, at time.Time) LoanApplicationDeleted {
	return LoanApplicationDeleted{
		BaseEvent: events.NewBaseEvent(TypeLoanApplicationDeleted, applicationID, aggregateLoanApplication, at),
		DeletedBy: deletedBy,
	}
}

// ---------------------------------------------------------------------------
// Offer Events
// ---------------------------------------------------------------------------

// OfferIssued is raised when an admin creates an offer.
type OfferIssued struct {
	events.BaseEvent
	LoanApplicationID string          `json:"loan_application_id"`
	AdminID           string          `json:"admin_id"`
	OfferedLoanAmount decimal.Decimal `json:"offered_loan_amount"`
	APR               decimal.Decimal `json:"apr"`
	TermMonths        int             `json:"term_months"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	ExpiresAt         time.Time       `json:"expires_at"`
}

func NewOfferIssued(
	offerID, applicationID, adminID string,
	amount, apr decimal.Decimal, termMonths int, monthly decimal.Decimal,
	expiresAt, at time.Time,
) OfferIssued {
	return OfferIssued{
		BaseEvent:         events.NewBaseEvent(TypeOfferIssued, offerID, aggregateOffer, at),
		LoanApplicationID: applicationID,
		AdminID:           adminID,
		OfferedLoanAmount: amount,
		APR:               apr,
		TermMonths:        termMonths,
		MonthlyPayment:    monthly,
		ExpiresAt:         expiresAt,
	}
}

// OfferTransitioned carries the offer and application IDs for the terminal
// offer transitions (accepted, declined, expired).
type OfferTransitioned struct {
	events.BaseEvent
	LoanApplicationID string `json:"loan_application_id"`
	UserID            string `json:"user_id,omitempty"`
	Note              string `json:"note,omitempty"`
}

func NewOfferAccepted(offerID, applicationID, userID string, at time.Time) OfferTransitioned {
	return OfferTransitioned{
		BaseEvent:         events.NewBaseEvent(TypeOfferAccepted, offerID, aggregateOffer, at),
		LoanApplicationID: applicationID,
		UserID:            userID,
	}
}

func NewOfferDeclined(offerID, applicationID, userID, note string, at time.Time) OfferTransitioned {
	return OfferTransitioned{
		BaseEvent:         events.NewBaseEvent(TypeOfferDeclined, offerID, aggregateOffer, at),
		LoanApplicationID: applicationID,
		UserID:            userID,
		Note:              note,
	}
}

func NewOfferExpired(offerID, applicationID string, at time.Time) OfferTransitioned {
	return OfferTransitioned{
		BaseEvent:         events.NewBaseEvent(TypeOfferExpired, offerID, aggregateOffer, at),
		LoanApplicationID: applicationID,
	}
}

// OfferStatusChanged is raised by administrative overrides.
type OfferStatusChanged struct {
	events.BaseEvent
	LoanApplicationID string `json:"loan_application_id"`
	From              string `json:"from"`
	To                string `json:"to"`
}

func NewOfferStatusChanged(offerID, applicationID, from, to string, at time.Time) OfferStatusChanged {
	return OfferStatusChanged{
		BaseEvent:         events.NewBaseEvent(TypeOfferStatusChanged, offerID, aggregateOffer, at),
		LoanApplicationID: applicationID,
		From:              from,
		To:                to,
	}
}
