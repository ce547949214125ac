package model

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/event"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// Loan application sentinel errors.
var (
	ErrInvalidApplication  = errors.New("invalid loan application")
	ErrNotGuestApplication = errors.New("application was not submitted as a guest")
	ErrAlreadyClaimed      = errors.New("application has already been claimed")
	ErrEmailMismatch       = errors.New("applicant email does not match the claiming user")
	ErrApplicationClosed   = errors.New("application no longer accepts offers")
)

// Applicant is the identity captured on submission.
type Applicant struct {
	Name               string
	Email              string
	Phone              string
	BVN                string
	NIN                string
	DateOfBirth        *time.Time
	ResidentialAddress string
}

// RequestedTerms are the applicant's preferences. Desired rate and payment are
// informational only.
type RequestedTerms struct {
	DownPaymentPct        *decimal.Decimal
	DownPaymentAmount     *decimal.Decimal
	TermMonths            int
	DesiredMonthlyPayment decimal.Decimal
	DesiredInterestRate   decimal.Decimal
}

// Actor is whoever is acting on an application.
type Actor struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// LoanApplicationRecord is the flat persisted form of a LoanApplication.
type LoanApplicationRecord struct {
	ID                    string
	VehicleID             string
	UserID                string
	IsGuest               bool
	ClaimedAt             *time.Time
	Applicant             Applicant
	Terms                 RequestedTerms
	ListingPrice          decimal.Decimal
	SnapshotRetailValue   *decimal.Decimal
	SnapshotLoanValue     *decimal.Decimal
	ValuationFetchedAt    *time.Time
	Currency              string
	LTVCap                decimal.Decimal
	PlannedDownAmount     decimal.Decimal
	InitialNeeded         decimal.Decimal
	MaxFinance            decimal.Decimal
	ValidatedLoanAmount   decimal.Decimal
	RequiredExtraDown     decimal.Decimal
	ImpliedMonthlyPayment decimal.Decimal
	ImpliedTotalInterest  decimal.Decimal
	EligibilityStatus     valueobject.EligibilityStatus
	EligibilityReasons    []string
	Status                valueobject.LoanApplicationStatus
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ---------------------------------------------------------------------------
// LoanApplication aggregate root
// ---------------------------------------------------------------------------

// LoanApplication is an immutable aggregate. Every mutation returns a new copy.
// The pricing snapshot and computed fields are frozen at submission.
type LoanApplication struct {
	rec          LoanApplicationRecord
	domainEvents []event.DomainEvent
}

// NewLoanApplication freezes an evaluation into a new application. ELIGIBLE
// verdicts start SUBMITTED; every other verdict is persisted as REJECTED.
func NewLoanApplication(
	vehicle VehicleSnapshot,
	applicant Applicant,
	userID string,
	terms RequestedTerms,
	ltvCap decimal.Decimal,
	result EligibilityResult,
	now time.Time,
) (LoanApplication, error) {
	if vehicle.ID == "" {
		return LoanApplication{}, fmt.Errorf("%w: vehicle ID is required", ErrInvalidApplication)
	}
	if err := applicant.validate(); err != nil {
		return LoanApplication{}, err
	}
	if terms.TermMonths <= 0 {
		return LoanApplication{}, fmt.Errorf("%w: term months must be positive", ErrInvalidApplication)
	}
	if result.Status.IsZero() {
		return LoanApplication{}, fmt.Errorf("%w: eligibility verdict is required", ErrInvalidApplication)
	}

	status := valueobject.LoanApplicationStatusRejected
	if result.IsEligible() {
		status = valueobject.LoanApplicationStatusSubmitted
	}

	applicant.Email = strings.TrimSpace(applicant.Email)
	rec := LoanApplicationRecord{
		ID:                    uuid.New().String(),
		VehicleID:             vehicle.ID,
		UserID:                userID,
		IsGuest:               userID == "",
		Applicant:             applicant,
		Terms:                 terms,
		ListingPrice:          result.ListingPrice,
		SnapshotRetailValue:   vehicle.RetailValue,
		SnapshotLoanValue:     vehicle.LoanValue,
		ValuationFetchedAt:    vehicle.ValuationFetchedAt,
		Currency:              vehicle.Currency,
		LTVCap:                ltvCap,
		PlannedDownAmount:     result.PlannedDownAmount,
		InitialNeeded:         result.InitialNeeded,
		MaxFinance:            result.MaxFinance,
		ValidatedLoanAmount:   result.ValidatedLoanAmount,
		RequiredExtraDown:     result.RequiredExtraDown,
		ImpliedMonthlyPayment: result.ImpliedMonthlyPayment,
		ImpliedTotalInterest:  result.ImpliedTotalInterest,
		EligibilityStatus:     result.Status,
		EligibilityReasons:    slices.Clone(result.Reasons),
		Status:                status,
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	app := LoanApplication{rec: rec}
	app.domainEvents = append(app.domainEvents, event.NewLoanApplicationSubmitted(
		rec.ID, rec.VehicleID, rec.UserID, rec.IsGuest,
		rec.EligibilityStatus.String(), rec.Status.String(),
		rec.ValidatedLoanAmount, rec.Currency, terms.TermMonths, now,
	))
	return app, nil
}

func (a Applicant) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: applicant name is required", ErrInvalidApplication)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(a.Email)); err != nil {
		return fmt.Errorf("%w: applicant email %q is not valid", ErrInvalidApplication, a.Email)
	}
	if strings.TrimSpace(a.BVN) == "" {
		return fmt.Errorf("%w: BVN is required", ErrInvalidApplication)
	}
	return nil
}

// ReconstructLoanApplication rebuilds an aggregate from persistence without side-effects.
func ReconstructLoanApplication(rec LoanApplicationRecord) LoanApplication {
	rec.EligibilityReasons = slices.Clone(rec.EligibilityReasons)
	return LoanApplication{rec: rec}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// Claim links a guest application to the authenticated user whose email
// matches the applicant email. It succeeds at most once.
func (a LoanApplication) Claim(userID, email string, now time.Time) (LoanApplication, error) {
	if userID == "" {
		return a, fmt.Errorf("%w: claiming user is required", ErrInvalidApplication)
	}
	if a.rec.ClaimedAt != nil {
		return a, ErrAlreadyClaimed
	}
	if !a.rec.IsGuest {
		return a, ErrNotGuestApplication
	}
	if !strings.EqualFold(strings.TrimSpace(email), a.rec.Applicant.Email) {
		return a, ErrEmailMismatch
	}

	next := a.copy()
	next.rec.UserID = userID
	next.rec.IsGuest = false
	claimedAt := now
	next.rec.ClaimedAt = &claimedAt
	next.rec.UpdatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewLoanApplicationClaimed(a.rec.ID, userID, now))
	return next, nil
}

// TransitionTo applies an administrative status change. A rejection reason
// replaces the eligibility reasons.
func (a LoanApplication) TransitionTo(target valueobject.LoanApplicationStatus, reason string, now time.Time) (LoanApplication, error) {
	if !a.rec.Status.CanTransitionTo(target) {
		return a, fmt.Errorf("%w: %s -> %s", valueobject.ErrInvalidStatusTransition, a.rec.Status, target)
	}
	next := a.moveTo(target, reason, now)
	if target.Equal(valueobject.LoanApplicationStatusRejected) && reason != "" {
		next.rec.EligibilityReasons = []string{reason}
	}
	return next, nil
}

// MarkPendingOffer records that an offer was issued. Applications already
// pending stay as they are; approved ones go back to PENDING_OFFER. Only
// rejected and cancelled applications refuse offers.
func (a LoanApplication) MarkPendingOffer(now time.Time) (LoanApplication, error) {
	switch {
	case a.rec.Status.Equal(valueobject.LoanApplicationStatusPendingOffer):
		return a, nil
	case a.rec.Status.Equal(valueobject.LoanApplicationStatusApproved):
		// A fresh offer reopens an approved loan for a decision.
	case a.rec.Status.IsTerminal():
		return a, fmt.Errorf("%w: status is %s", ErrApplicationClosed, a.rec.Status)
	}
	return a.moveTo(valueobject.LoanApplicationStatusPendingOffer, "", now), nil
}

// Approve is driven by offer acceptance and is allowed from any non-terminal state.
func (a LoanApplication) Approve(now time.Time) (LoanApplication, error) {
	if a.rec.Status.IsTerminal() {
		return a, fmt.Errorf("%w: %s -> %s", valueobject.ErrInvalidStatusTransition, a.rec.Status, valueobject.LoanApplicationStatusApproved)
	}
	return a.moveTo(valueobject.LoanApplicationStatusApproved, "", now), nil
}

func (a LoanApplication) moveTo(target valueobject.LoanApplicationStatus, reason string, now time.Time) LoanApplication {
	next := a.copy()
	next.rec.Status = target
	next.rec.UpdatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewLoanApplicationStatusChanged(
		a.rec.ID, a.rec.Status.String(), target.String(), reason, now,
	))
	return next
}

func (a LoanApplication) copy() LoanApplication {
	next := a
	next.rec.EligibilityReasons = slices.Clone(a.rec.EligibilityReasons)
	next.domainEvents = copyEvents(a.domainEvents)
	return next
}

// ---------------------------------------------------------------------------
// Access rules
// ---------------------------------------------------------------------------

// IsOwnedBy reports whether userID is the linked owner.
func (a LoanApplication) IsOwnedBy(userID string) bool {
	return userID != "" && a.rec.UserID == userID
}

// CanBeViewedBy reports whether the actor may read the application.
func (a LoanApplication) CanBeViewedBy(actor Actor) bool {
	return actor.IsAdmin || a.IsOwnedBy(actor.UserID)
}

// CanBeDeletedBy reports whether the actor may delete the application: the
// owner, an admin, or the matching-email user of an unclaimed guest application.
func (a LoanApplication) CanBeDeletedBy(actor Actor) bool {
	if actor.IsAdmin || a.IsOwnedBy(actor.UserID) {
		return true
	}
	return a.rec.IsGuest && a.rec.ClaimedAt == nil && actor.Email != "" &&
		strings.EqualFold(strings.TrimSpace(actor.Email), a.rec.Applicant.Email)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a LoanApplication) ID() string { return a.rec.ID }
func (a LoanApplication) VehicleID() string { return a.rec.VehicleID }
func (a LoanApplication) UserID() string { return a.rec.UserID }
func (a LoanApplication) IsGuest() bool { return a.rec.IsGuest }
func (a LoanApplication) ClaimedAt() *time.Time { return a.rec.ClaimedAt }
func (a LoanApplication) Applicant() Applicant { return a.rec.Applicant }
func (a LoanApplication) Terms() RequestedTerms { return a.rec.Terms }
func (a LoanApplication) ListingPrice() decimal.Decimal { return a.rec.ListingPrice }
func (a LoanApplication) SnapshotLoanValue() *decimal.Decimal { return a.rec.SnapshotLoanValue }
func (a LoanApplication) Currency() string { return a.rec.Currency }
func (a LoanApplication) ValidatedLoanAmount() decimal.Decimal { return a.rec.ValidatedLoanAmount }
func (a LoanApplication) EligibilityStatus() valueobject.EligibilityStatus { return a.rec.EligibilityStatus }
func (a LoanApplication) EligibilityReasons() []string { return slices.Clone(a.rec.EligibilityReasons) }
func (a LoanApplication) Status() valueobject.LoanApplicationStatus { return a.rec.Status }
func (a LoanApplication) Version() int { return a.rec.Version }
func (a LoanApplication) CreatedAt() time.Time { return a.rec.CreatedAt }
func (a LoanApplication) UpdatedAt() time.Time { return a.rec.UpdatedAt }
func (a LoanApplication) DomainEvents() []event.DomainEvent { return a.domainEvents }

// Record returns the flat persisted form.
func (a LoanApplication) Record() LoanApplicationRecord {
	rec := a.rec
	rec.EligibilityReasons = slices.Clone(a.rec.EligibilityReasons)
	return rec
}

// ClearEvents returns a copy with an empty event list (call after publishing).
func (a LoanApplication) ClearEvents() LoanApplication {
	next := a
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
