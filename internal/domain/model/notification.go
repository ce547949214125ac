package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/pkg/money"
)

// NotificationType classifies an in-app notification.
type NotificationType string

const (
	NotificationLoanSubmitted     NotificationType = "loan_submitted"
	NotificationLoanStatusUpdated NotificationType = "loan_status_updated"
	NotificationLoanApproved      NotificationType = "loan_approved"
	NotificationLoanRejected      NotificationType = "loan_rejected"
	NotificationOfferCreated      NotificationType = "offer_created"
	NotificationOfferAccepted     NotificationType = "offer_accepted"
	NotificationOfferDeclined     NotificationType = "offer_declined"
	NotificationOfferExpired      NotificationType = "offer_expired"
)

// Notification is a message for a user or for all admins.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func newNotification(t NotificationType, title, message string, data map[string]any, now time.Time) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Type:      t,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: now,
	}
}

// LoanSubmittedForApplicant tells an authenticated applicant their application was received.
func LoanSubmittedForApplicant(app LoanApplication, now time.Time) Notification {
	return newNotification(NotificationLoanSubmitted,
		"Loan Application Submitted",
		fmt.Sprintf("Your loan application for %s has been submitted and is under review.",
			money.Display(app.ValidatedLoanAmount(), app.Currency())),
		map[string]any{"loanId": app.ID(), "amount": app.ValidatedLoanAmount()},
		now,
	)
}

// LoanSubmittedForAdmins asks admins to review a new application.
func LoanSubmittedForAdmins(app LoanApplication, now time.Time) Notification {
	name := app.Applicant().Name
	return newNotification(NotificationLoanSubmitted,
		"New Loan Application",
		fmt.Sprintf("%s applied for a loan of %s. Review required.",
			name, money.Display(app.ValidatedLoanAmount(), app.Currency())),
		map[string]any{"loanId": app.ID(), "amount": app.ValidatedLoanAmount(), "userName": name},
		now,
	)
}

// LoanApproved tells the applicant their application was approved.
func LoanApproved(app LoanApplication, amount decimal.Decimal, now time.Time) Notification {
	return newNotification(NotificationLoanApproved,
		"Loan Approved!",
		fmt.Sprintf("Great news! Your loan application for %s has been approved. Check your offers.",
			money.Display(amount, app.Currency())),
		map[string]any{"loanId": app.ID(), "amount": amount},
		now,
	)
}

// LoanRejected tells the applicant why their application was not approved.
func LoanRejected(app LoanApplication, reason string, now time.Time) Notification {
	return newNotification(NotificationLoanRejected,
		"Loan Application Update",
		"Your loan application was not approved. Reason: "+reason,
		map[string]any{"loanId": app.ID(), "reason": reason},
		now,
	)
}

// LoanStatusUpdated reports any other administrative status change.
func LoanStatusUpdated(app LoanApplication, now time.Time) Notification {
	return newNotification(NotificationLoanStatusUpdated,
		"Loan Application Update",
		fmt.Sprintf("Your loan application status is now %s.", app.Status()),
		map[string]any{"loanId": app.ID(), "status": app.Status().String()},
		now,
	)
}

// OfferCreated tells the applicant a new offer is waiting.
func OfferCreated(o Offer, currency string, now time.Time) Notification {
	return newNotification(NotificationOfferCreated,
		"New Financing Offer Available",
		fmt.Sprintf("You have a new financing offer with monthly payments of %s. Review and accept to proceed.",
			money.Display(o.MonthlyPayment(), currency)),
		map[string]any{"offerId": o.ID(), "monthlyPayment": o.MonthlyPayment()},
		now,
	)
}

// OfferAccepted asks admins to proceed with disbursement.
func OfferAccepted(o Offer, currency, userID string, now time.Time) Notification {
	return newNotification(NotificationOfferAccepted,
		"Offer Accepted",
		fmt.Sprintf("A user has accepted an offer for %s. Proceed with disbursement.",
			money.Display(o.OfferedLoanAmount(), currency)),
		map[string]any{"offerId": o.ID(), "amount": o.OfferedLoanAmount(), "userId": userID},
		now,
	)
}

// OfferDeclined confirms a decline to the applicant.
func OfferDeclined(o Offer, now time.Time) Notification {
	return newNotification(NotificationOfferDeclined,
		"Offer Declined",
		"You declined a financing offer. You can still review other offers on your application.",
		map[string]any{"offerId": o.ID()},
		now,
	)
}

// OfferExpired tells the applicant an offer lapsed.
func OfferExpired(o Offer, now time.Time) Notification {
	return newNotification(NotificationOfferExpired,
		"Offer Expired",
		fmt.Sprintf("A financing offer expired on %s.", o.ExpiresAt().Format("2 Jan 2006")),
		map[string]any{"offerId": o.ID()},
		now,
	)
}

// InboxEntry is a delivered notification with the recipient's read state.
type InboxEntry struct {
	Notification
	ReadAt *time.Time
}

// Read reports whether the recipient has marked the entry read.
func (e InboxEntry) Read() bool { return e.ReadAt != nil }
