package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/event"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// DefaultLenderCode is stamped on offers issued without an explicit lender.
const DefaultLenderCode = "BACKOFFICE"

// DefaultOfferValidity is how long an offer stays open without an explicit expiry.
const DefaultOfferValidity = 30 * 24 * time.Hour

// Offer sentinel errors.
var (
	ErrInvalidOffer   = errors.New("invalid offer")
	ErrOfferNotIssued = errors.New("offer is not in ISSUED status")
	ErrOfferExpired   = errors.New("offer has expired")
)

// NewOfferParams are the admin-supplied terms of an offer.
type NewOfferParams struct {
	LoanApplicationID string
	AdminID           string
	LenderCode        string
	OfferedLoanAmount decimal.Decimal
	APR               decimal.Decimal
	TermMonths        int
	ExpiresAt         *time.Time
	Notes             string
}

// OfferRecord is the flat persisted form of an Offer.
type OfferRecord struct {
	ID                string
	LoanApplicationID string
	AdminID           string
	LenderCode        string
	OfferedLoanAmount decimal.Decimal
	APR               decimal.Decimal
	TermMonths        int
	MonthlyPayment    decimal.Decimal
	TotalInterest     decimal.Decimal
	LTVAtOffer        *decimal.Decimal
	Status            valueobject.OfferStatus
	ExpiresAt         time.Time
	Notes             string
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ---------------------------------------------------------------------------
// Offer aggregate root
// ---------------------------------------------------------------------------

// Offer is an immutable aggregate. Payment and interest are derived once at
// issue and never edited.
type Offer struct {
	rec          OfferRecord
	domainEvents []event.DomainEvent
}

// NewOffer issues an offer against an application whose snapshot loan value
// (possibly nil) is used for the loan-to-value ratio.
func NewOffer(p NewOfferParams, snapshotLoanValue *decimal.Decimal, now time.Time) (Offer, error) {
	switch {
	case p.LoanApplicationID == "":
		return Offer{}, fmt.Errorf("%w: loan application ID is required", ErrInvalidOffer)
	case p.AdminID == "":
		return Offer{}, fmt.Errorf("%w: admin ID is required", ErrInvalidOffer)
	case !p.OfferedLoanAmount.IsPositive():
		return Offer{}, fmt.Errorf("%w: offered loan amount must be positive", ErrInvalidOffer)
	case p.APR.IsNegative():
		return Offer{}, fmt.Errorf("%w: apr must not be negative", ErrInvalidOffer)
	case p.TermMonths <= 0:
		return Offer{}, fmt.Errorf("%w: term months must be positive", ErrInvalidOffer)
	}

	monthly := MonthlyPayment(p.OfferedLoanAmount, p.APR, p.TermMonths).Round(2)
	total := TotalInterest(monthly, p.TermMonths, p.OfferedLoanAmount)

	var ltv *decimal.Decimal
	if snapshotLoanValue != nil && snapshotLoanValue.IsPositive() {
		v := p.OfferedLoanAmount.Div(*snapshotLoanValue).Round(4)
		ltv = &v
	}

	expiresAt := now.Add(DefaultOfferValidity)
	if p.ExpiresAt != nil {
		expiresAt = p.ExpiresAt.UTC()
	}

	lender := p.LenderCode
	if lender == "" {
		lender = DefaultLenderCode
	}

	rec := OfferRecord{
		ID:                uuid.New().String(),
		LoanApplicationID: p.LoanApplicationID,
		AdminID:           p.AdminID,
		LenderCode:        lender,
		OfferedLoanAmount: p.OfferedLoanAmount,
		APR:               p.APR,
		TermMonths:        p.TermMonths,
		MonthlyPayment:    monthly,
		TotalInterest:     total,
		LTVAtOffer:        ltv,
		Status:            valueobject.OfferStatusIssued,
		ExpiresAt:         expiresAt,
		Notes:             p.Notes,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	o := Offer{rec: rec}
	o.domainEvents = append(o.domainEvents, event.NewOfferIssued(
		rec.ID, rec.LoanApplicationID, rec.AdminID,
		rec.OfferedLoanAmount, rec.APR, rec.TermMonths, rec.MonthlyPayment,
		rec.ExpiresAt, now,
	))
	return o, nil
}

// ReconstructOffer rebuilds an aggregate from persistence without side-effects.
func ReconstructOffer(rec OfferRecord) Offer {
	return Offer{rec: rec}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// IsExpired reports whether an issued offer is past its expiry at now.
func (o Offer) IsExpired(now time.Time) bool {
	return o.rec.Status.Equal(valueobject.OfferStatusIssued) && now.After(o.rec.ExpiresAt)
}

// ExpireIfDue flips an overdue ISSUED offer to EXPIRED. The bool reports
// whether a flip happened and the offer must be persisted.
func (o Offer) ExpireIfDue(now time.Time) (Offer, bool) {
	if !o.IsExpired(now) {
		return o, false
	}
	next := o.moveTo(valueobject.OfferStatusExpired, now)
	next.domainEvents = append(next.domainEvents, event.NewOfferExpired(o.rec.ID, o.rec.LoanApplicationID, now))
	return next, true
}

// Accept transitions ISSUED -> ACCEPTED.
func (o Offer) Accept(userID string, now time.Time) (Offer, error) {
	if err := o.requireOpen(now); err != nil {
		return o, err
	}
	next := o.moveTo(valueobject.OfferStatusAccepted, now)
	next.domainEvents = append(next.domainEvents, event.NewOfferAccepted(o.rec.ID, o.rec.LoanApplicationID, userID, now))
	return next, nil
}

// Decline transitions ISSUED -> DECLINED, appending the note to the existing notes.
func (o Offer) Decline(userID, note string, now time.Time) (Offer, error) {
	if err := o.requireOpen(now); err != nil {
		return o, err
	}
	next := o.moveTo(valueobject.OfferStatusDeclined, now)
	if note != "" {
		if next.rec.Notes != "" {
			next.rec.Notes = next.rec.Notes + "\n\n[User declined]: " + note
		} else {
			next.rec.Notes = "[User declined]: " + note
		}
	}
	next.domainEvents = append(next.domainEvents, event.NewOfferDeclined(o.rec.ID, o.rec.LoanApplicationID, userID, note, now))
	return next, nil
}

// SetStatus is the administrative override: any valid status from ISSUED.
func (o Offer) SetStatus(target valueobject.OfferStatus, now time.Time) (Offer, error) {
	if target.IsZero() {
		return o, fmt.Errorf("%w: target status is required", ErrInvalidOffer)
	}
	if err := o.requireOpen(now); err != nil {
		return o, err
	}
	next := o.moveTo(target, now)
	next.domainEvents = append(next.domainEvents, event.NewOfferStatusChanged(
		o.rec.ID, o.rec.LoanApplicationID, o.rec.Status.String(), target.String(), now,
	))
	return next, nil
}

func (o Offer) requireOpen(now time.Time) error {
	if !o.rec.Status.Equal(valueobject.OfferStatusIssued) {
		return fmt.Errorf("%w: status is %s", ErrOfferNotIssued, o.rec.Status)
	}
	if o.IsExpired(now) {
		return ErrOfferExpired
	}
	return nil
}

func (o Offer) moveTo(target valueobject.OfferStatus, now time.Time) Offer {
	next := o
	next.rec.Status = target
	next.rec.UpdatedAt = now
	next.domainEvents = copyEvents(o.domainEvents)
	return next
}

// Schedule returns the amortization schedule for the stamped terms, with the
// first payment due one month after issue.
func (o Offer) Schedule() []AmortizationEntry {
	return GenerateAmortizationSchedule(o.rec.OfferedLoanAmount, o.rec.APR, o.rec.TermMonths, o.rec.CreatedAt)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (o Offer) ID() string { return o.rec.ID }
func (o Offer) LoanApplicationID() string { return o.rec.LoanApplicationID }
func (o Offer) AdminID() string { return o.rec.AdminID }
func (o Offer) OfferedLoanAmount() decimal.Decimal { return o.rec.OfferedLoanAmount }
func (o Offer) APR() decimal.Decimal { return o.rec.APR }
func (o Offer) TermMonths() int { return o.rec.TermMonths }
func (o Offer) MonthlyPayment() decimal.Decimal { return o.rec.MonthlyPayment }
func (o Offer) TotalInterest() decimal.Decimal { return o.rec.TotalInterest }
func (o Offer) LTVAtOffer() *decimal.Decimal { return o.rec.LTVAtOffer }
func (o Offer) Status() valueobject.OfferStatus { return o.rec.Status }
func (o Offer) ExpiresAt() time.Time { return o.rec.ExpiresAt }
func (o Offer) Notes() string { return o.rec.Notes }
func (o Offer) Version() int { return o.rec.Version }
func (o Offer) DomainEvents() []event.DomainEvent { return o.domainEvents }

// Record returns the flat persisted form.
func (o Offer) Record() OfferRecord { return o.rec }

// ClearEvents returns a copy with an empty event list (call after publishing).
func (o Offer) ClearEvents() Offer {
	next := o
	next.domainEvents = nil
	return next
}
