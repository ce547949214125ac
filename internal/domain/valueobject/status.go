package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanApplicationStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanApplicationStatus represents the lifecycle stage of a loan application.
type LoanApplicationStatus struct {
	value string
}

const (
	loanAppStatusSubmitted    = "SUBMITTED"
	loanAppStatusUnderReview  = "UNDER_REVIEW"
	loanAppStatusPendingOffer = "PENDING_OFFER"
	loanAppStatusApproved     = "APPROVED"
	loanAppStatusRejected     = "REJECTED"
	loanAppStatusCancelled    = "CANCELLED"
)

var (
	LoanApplicationStatusSubmitted    = LoanApplicationStatus{value: loanAppStatusSubmitted}
	LoanApplicationStatusUnderReview  = LoanApplicationStatus{value: loanAppStatusUnderReview}
	LoanApplicationStatusPendingOffer = LoanApplicationStatus{value: loanAppStatusPendingOffer}
	LoanApplicationStatusApproved     = LoanApplicationStatus{value: loanAppStatusApproved}
	LoanApplicationStatusRejected     = LoanApplicationStatus{value: loanAppStatusRejected}
	LoanApplicationStatusCancelled    = LoanApplicationStatus{value: loanAppStatusCancelled}
)

var validLoanApplicationStatuses = map[string]LoanApplicationStatus{
	loanAppStatusSubmitted:    LoanApplicationStatusSubmitted,
	loanAppStatusUnderReview:  LoanApplicationStatusUnderReview,
	loanAppStatusPendingOffer: LoanApplicationStatusPendingOffer,
	loanAppStatusApproved:     LoanApplicationStatusApproved,
	loanAppStatusRejected:     LoanApplicationStatusRejected,
	loanAppStatusCancelled:    LoanApplicationStatusCancelled,
}

// loanAppTransitions lists the admin-reachable targets of each non-terminal state.
var loanAppTransitions = map[string][]string{
	loanAppStatusSubmitted:    {loanAppStatusUnderReview, loanAppStatusPendingOffer, loanAppStatusRejected, loanAppStatusCancelled},
	loanAppStatusUnderReview:  {loanAppStatusPendingOffer, loanAppStatusRejected, loanAppStatusCancelled},
	loanAppStatusPendingOffer: {loanAppStatusApproved, loanAppStatusRejected, loanAppStatusCancelled},
}

// NewLoanApplicationStatus creates a LoanApplicationStatus from a raw string.
func NewLoanApplicationStatus(s string) (LoanApplicationStatus, error) {
	v, ok := validLoanApplicationStatuses[s]
	if !ok {
		return LoanApplicationStatus{}, fmt.Errorf("invalid loan application status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanApplicationStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanApplicationStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanApplicationStatus) Equal(other LoanApplicationStatus) bool {
	return s.value == other.value
}

// IsTerminal reports whether no further transition is possible.
func (s LoanApplicationStatus) IsTerminal() bool {
	_, ok := loanAppTransitions[s.value]
	return !ok
}

// CanTransitionTo reports whether target is reachable in one step.
func (s LoanApplicationStatus) CanTransitionTo(target LoanApplicationStatus) bool {
	for _, t := range loanAppTransitions[s.value] {
		if t == target.value {
			return true
		}
	}
	return false
}

// IsBlocking reports whether an application in this state still holds its
// vehicle's pricing in place.
func (s LoanApplicationStatus) IsBlocking() bool {
	switch s.value {
	case loanAppStatusSubmitted, loanAppStatusUnderReview, loanAppStatusPendingOffer:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// OfferStatus – immutable value object
// ---------------------------------------------------------------------------

// OfferStatus represents the lifecycle stage of a financing offer.
type OfferStatus struct {
	value string
}

const (
	offerStatusDraft    = "DRAFT"
	offerStatusIssued   = "ISSUED"
	offerStatusAccepted = "ACCEPTED"
	offerStatusDeclined = "DECLINED"
	offerStatusExpired  = "EXPIRED"
)

var (
	OfferStatusDraft    = OfferStatus{value: offerStatusDraft}
	OfferStatusIssued   = OfferStatus{value: offerStatusIssued}
	OfferStatusAccepted = OfferStatus{value: offerStatusAccepted}
	OfferStatusDeclined = OfferStatus{value: offerStatusDeclined}
	OfferStatusExpired  = OfferStatus{value: offerStatusExpired}
)

var validOfferStatuses = map[string]OfferStatus{
	offerStatusDraft:    OfferStatusDraft,
	offerStatusIssued:   OfferStatusIssued,
	offerStatusAccepted: OfferStatusAccepted,
	offerStatusDeclined: OfferStatusDeclined,
	offerStatusExpired:  OfferStatusExpired,
}

// NewOfferStatus creates an OfferStatus from a raw string.
func NewOfferStatus(s string) (OfferStatus, error) {
	v, ok := validOfferStatuses[s]
	if !ok {
		return OfferStatus{}, fmt.Errorf("invalid offer status: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (s OfferStatus) String() string { return s.value }

// IsZero returns true when not initialised.
func (s OfferStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses match.
func (s OfferStatus) Equal(other OfferStatus) bool { return s.value == other.value }

// IsBlocking reports whether the offer still commits the lender, which keeps
// its application from being deleted and its vehicle from being repriced.
func (s OfferStatus) IsBlocking() bool {
	return s.value == offerStatusIssued || s.value == offerStatusAccepted
}

// ---------------------------------------------------------------------------
// EligibilityStatus – immutable value object
// ---------------------------------------------------------------------------

// EligibilityStatus is the verdict of an eligibility evaluation.
type EligibilityStatus struct {
	value string
}

const (
	eligibilityEligible       = "ELIGIBLE"
	eligibilityNeedMoreDown   = "NEED_MORE_DOWN"
	eligibilityIneligible     = "INELIGIBLE"
	eligibilityStaleValuation = "STALE_VALUATION"
)

var (
	EligibilityEligible       = EligibilityStatus{value: eligibilityEligible}
	EligibilityNeedMoreDown   = EligibilityStatus{value: eligibilityNeedMoreDown}
	EligibilityIneligible     = EligibilityStatus{value: eligibilityIneligible}
	EligibilityStaleValuation = EligibilityStatus{value: eligibilityStaleValuation}
)

var validEligibilityStatuses = map[string]EligibilityStatus{
	eligibilityEligible:       EligibilityEligible,
	eligibilityNeedMoreDown:   EligibilityNeedMoreDown,
	eligibilityIneligible:     EligibilityIneligible,
	eligibilityStaleValuation: EligibilityStaleValuation,
}

// NewEligibilityStatus creates an EligibilityStatus from a raw string.
func NewEligibilityStatus(s string) (EligibilityStatus, error) {
	v, ok := validEligibilityStatuses[s]
	if !ok {
		return EligibilityStatus{}, fmt.Errorf("invalid eligibility status: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (s EligibilityStatus) String() string { return s.value }

// IsZero returns true when not initialised.
func (s EligibilityStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both verdicts match.
func (s EligibilityStatus) Equal(other EligibilityStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
