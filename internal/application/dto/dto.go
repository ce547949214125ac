package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// Caller identifies who is making a request. An empty UserID is an anonymous guest.
type Caller struct {
	UserID  string `json:"-"`
	Email   string `json:"-"`
	IsAdmin bool   `json:"-"`
}

// CheckEligibilityRequest previews the verdict for a vehicle without persisting anything.
type CheckEligibilityRequest struct {
	VehicleID                  string           `json:"vehicle_id"`
	RequestedDownPaymentPct    *decimal.Decimal `json:"requested_down_payment_pct,omitempty"`
	RequestedDownPaymentAmount *decimal.Decimal `json:"requested_down_payment_amount,omitempty"`
	RequestedTermMonths        int              `json:"requested_term_months"`
}

// SubmitApplicationRequest carries a new loan application.
type SubmitApplicationRequest struct {
	Caller                     Caller           `json:"-"`
	VehicleID                  string           `json:"vehicle_id"`
	ApplicantName              string           `json:"applicant_name"`
	ApplicantEmail             string           `json:"applicant_email"`
	ApplicantPhone             string           `json:"applicant_phone,omitempty"`
	BVN                        string           `json:"bvn"`
	NIN                        string           `json:"nin,omitempty"`
	DateOfBirth                *time.Time       `json:"date_of_birth,omitempty"`
	ResidentialAddress         string           `json:"residential_address,omitempty"`
	RequestedDownPaymentPct    *decimal.Decimal `json:"requested_down_payment_pct,omitempty"`
	RequestedDownPaymentAmount *decimal.Decimal `json:"requested_down_payment_amount,omitempty"`
	RequestedTermMonths        int              `json:"requested_term_months"`
	DesiredMonthlyPayment      decimal.Decimal  `json:"desired_monthly_payment"`
	DesiredInterestRate        decimal.Decimal  `json:"desired_interest_rate"`
}

// ApplicationRef identifies an application on behalf of a caller.
type ApplicationRef struct {
	Caller        Caller `json:"-"`
	ApplicationID string `json:"application_id"`
}

// ListApplicationsRequest lists applications visible to the caller.
type ListApplicationsRequest struct {
	Caller Caller `json:"-"`
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// UpdateApplicationStatusRequest is an admin status change.
type UpdateApplicationStatusRequest struct {
	Caller          Caller `json:"-"`
	ApplicationID   string `json:"application_id"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// CreateOfferRequest carries an admin-issued offer.
type CreateOfferRequest struct {
	Caller            Caller          `json:"-"`
	LoanApplicationID string          `json:"loan_application_id"`
	LenderCode        string          `json:"lender_code,omitempty"`
	OfferedLoanAmount decimal.Decimal `json:"offered_loan_amount"`
	APR               decimal.Decimal `json:"apr"`
	TermMonths        int             `json:"term_months"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// OfferRef identifies an offer on behalf of a caller.
type OfferRef struct {
	Caller  Caller `json:"-"`
	OfferID string `json:"offer_id"`
}

// DeclineOfferRequest declines an offer with an optional note.
type DeclineOfferRequest struct {
	Caller      Caller `json:"-"`
	OfferID     string `json:"offer_id"`
	DeclineNote string `json:"decline_note,omitempty"`
}

// UpdateOfferStatusRequest is an admin status override.
type UpdateOfferStatusRequest struct {
	Caller  Caller `json:"-"`
	OfferID string `json:"offer_id"`
	Status  string `json:"status"`
}

// RequestValuationRequest prices a listed vehicle by VIN.
type RequestValuationRequest struct {
	VIN string `json:"vin"`
}

// ValuationHistoryRequest lists the valuation history of a vehicle by VIN.
type ValuationHistoryRequest struct {
	VIN string `json:"vin"`
}

// EvaluateVehicleRequest prices a VIN with an optional odometer reading.
type EvaluateVehicleRequest struct {
	VIN     string `json:"vin"`
	Mileage *int   `json:"mileage,omitempty"`
}

// UpdateVehiclePricingRequest edits a vehicle's pricing; nil fields are left unchanged.
type UpdateVehiclePricingRequest struct {
	Caller                 Caller           `json:"-"`
	VehicleID              string           `json:"vehicle_id"`
	ListingPrice           *decimal.Decimal `json:"listing_price,omitempty"`
	RequiredDownPaymentPct *decimal.Decimal `json:"required_down_payment_pct,omitempty"`
	IsLoanAvailable        *bool            `json:"is_loan_available,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// EligibilityResponse is the verdict and its computed amounts.
type EligibilityResponse struct {
	VehicleID             string          `json:"vehicle_id"`
	Status                string          `json:"status"`
	Reasons               []string        `json:"reasons"`
	ListingPrice          decimal.Decimal `json:"listing_price"`
	PlannedDownAmount     decimal.Decimal `json:"planned_down_amount"`
	InitialNeeded         decimal.Decimal `json:"initial_needed"`
	MaxFinance            decimal.Decimal `json:"max_finance"`
	ValidatedLoanAmount   decimal.Decimal `json:"validated_loan_amount"`
	RequiredExtraDown     decimal.Decimal `json:"required_extra_down"`
	ImpliedMonthlyPayment decimal.Decimal `json:"implied_monthly_payment"`
	ImpliedTotalInterest  decimal.Decimal `json:"implied_total_interest"`
	Currency              string          `json:"currency"`
}

// LoanApplicationResponse is the external representation of a loan application.
// Nullable fields stay nil when absent.
type LoanApplicationResponse struct {
	ID                         string           `json:"id"`
	VehicleID                  string           `json:"vehicle_id"`
	UserID                     *string          `json:"user_id"`
	IsGuest                    bool             `json:"is_guest"`
	ClaimedAt                  *time.Time       `json:"claimed_at"`
	ApplicantName              string           `json:"applicant_name"`
	ApplicantEmail             string           `json:"applicant_email"`
	ApplicantPhone             string           `json:"applicant_phone,omitempty"`
	BVN                        string           `json:"bvn"`
	NIN                        string           `json:"nin,omitempty"`
	DateOfBirth                *time.Time       `json:"date_of_birth"`
	ResidentialAddress         string           `json:"residential_address,omitempty"`
	RequestedDownPaymentPct    *decimal.Decimal `json:"requested_down_payment_pct"`
	RequestedDownPaymentAmount *decimal.Decimal `json:"requested_down_payment_amount"`
	RequestedTermMonths        int              `json:"requested_term_months"`
	DesiredMonthlyPayment      decimal.Decimal  `json:"desired_monthly_payment"`
	DesiredInterestRate        decimal.Decimal  `json:"desired_interest_rate"`
	ListingPrice               decimal.Decimal  `json:"listing_price"`
	SnapshotRetailValue        *decimal.Decimal `json:"snapshot_retail_value"`
	SnapshotLoanValue          *decimal.Decimal `json:"snapshot_loan_value"`
	ValuationFetchedAt         *time.Time       `json:"valuation_fetched_at"`
	Currency                   string           `json:"currency"`
	LTVCap                     decimal.Decimal  `json:"ltv_cap"`
	PlannedDownAmount          decimal.Decimal  `json:"planned_down_amount"`
	InitialNeeded              decimal.Decimal  `json:"initial_needed"`
	MaxFinance                 decimal.Decimal  `json:"max_finance"`
	ValidatedLoanAmount        decimal.Decimal  `json:"validated_loan_amount"`
	RequiredExtraDown          decimal.Decimal  `json:"required_extra_down"`
	ImpliedMonthlyPayment      decimal.Decimal  `json:"implied_monthly_payment"`
	ImpliedTotalInterest       decimal.Decimal  `json:"implied_total_interest"`
	EligibilityStatus          string           `json:"eligibility_status"`
	EligibilityReasons         []string         `json:"eligibility_reasons"`
	Status                     string           `json:"status"`
	Version                    int              `json:"version"`
	CreatedAt                  time.Time        `json:"created_at"`
	UpdatedAt                  time.Time        `json:"updated_at"`
}

// OfferResponse is the external representation of an offer.
type OfferResponse struct {
	ID                string           `json:"id"`
	LoanApplicationID string           `json:"loan_application_id"`
	AdminID           string           `json:"admin_id"`
	LenderCode        string           `json:"lender_code"`
	OfferedLoanAmount decimal.Decimal  `json:"offered_loan_amount"`
	APR               decimal.Decimal  `json:"apr"`
	TermMonths        int              `json:"term_months"`
	MonthlyPayment    decimal.Decimal  `json:"monthly_payment"`
	TotalInterest     decimal.Decimal  `json:"total_interest"`
	LTVAtOffer        *decimal.Decimal `json:"ltv_at_offer"`
	Status            string           `json:"status"`
	ExpiresAt         time.Time        `json:"expires_at"`
	Notes             string           `json:"notes,omitempty"`
	Version           int              `json:"version"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// OfferScheduleResponse is an offer with its repayment schedule.
type OfferScheduleResponse struct {
	Offer    OfferResponse               `json:"offer"`
	Schedule []AmortizationEntryResponse `json:"schedule"`
}

// ValuationResponse is a persisted valuation history row.
type ValuationResponse struct {
	ID          string          `json:"id"`
	VehicleID   string          `json:"vehicle_id"`
	VIN         string          `json:"vin"`
	RetailValue decimal.Decimal `json:"retail_value"`
	LoanValue   decimal.Decimal `json:"loan_value"`
	Currency    string          `json:"currency"`
	Mileage     *int            `json:"mileage"`
	Source      string          `json:"source"`
	ProviderRef string          `json:"provider_ref"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// MileageAdjustmentResponse explains how an odometer reading moved the values.
type MileageAdjustmentResponse struct {
	DeltaMiles  int             `json:"delta_miles"`
	AdjLoan     decimal.Decimal `json:"adj_loan"`
	AdjRetail   decimal.Decimal `json:"adj_retail"`
	Explanation string          `json:"explanation"`
}

// VehicleEvaluationResponse compares provider baseline values with mileage-adjusted suggestions.
type VehicleEvaluationResponse struct {
	VIN                     string                    `json:"vin"`
	Make                    string                    `json:"make,omitempty"`
	Model                   string                    `json:"model,omitempty"`
	Year                    int                       `json:"year,omitempty"`
	Trim                    string                    `json:"trim,omitempty"`
	Engine                  string                    `json:"engine,omitempty"`
	Transmission            string                    `json:"transmission,omitempty"`
	FuelType                string                    `json:"fuel_type,omitempty"`
	BaselineRetailValue     decimal.Decimal           `json:"baseline_retail_value"`
	BaselineLoanValue       decimal.Decimal           `json:"baseline_loan_value"`
	SuggestedRetailValue    decimal.Decimal           `json:"suggested_retail_value"`
	SuggestedLoanValue      decimal.Decimal           `json:"suggested_loan_value"`
	SuggestedListingPrice   decimal.Decimal           `json:"suggested_listing_price"`
	MileageAdjustment       MileageAdjustmentResponse `json:"mileage_adjustment"`
	SuggestedDownPaymentPct decimal.Decimal           `json:"suggested_down_payment_pct"`
	SuggestedMinLoanValue   decimal.Decimal           `json:"suggested_min_loan_value"`
	SuggestedMaxLoanPeriod  int                       `json:"suggested_max_loan_period"`
	Source                  string                    `json:"source"`
	Saved                   bool                      `json:"saved"`
}

// VehicleResponse is the pricing view of a vehicle.
type VehicleResponse struct {
	ID                     string           `json:"id"`
	VIN                    string           `json:"vin"`
	Make                   string           `json:"make"`
	Model                  string           `json:"model"`
	Year                   int              `json:"year"`
	Mileage                *int             `json:"mileage"`
	ListingPrice           decimal.Decimal  `json:"listing_price"`
	LoanValue              *decimal.Decimal `json:"loan_value"`
	RetailValue            *decimal.Decimal `json:"retail_value"`
	RequiredDownPaymentPct decimal.Decimal  `json:"required_down_payment_pct"`
	Currency               string           `json:"currency"`
	IsLoanAvailable        bool             `json:"is_loan_available"`
	ValuationSource        string           `json:"valuation_source,omitempty"`
	ValuationFetchedAt     *time.Time       `json:"valuation_fetched_at"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Message string `json:"message"`
}

// NotificationRef identifies one notification in the caller's inbox.
type NotificationRef struct {
	Caller         Caller `json:"-"`
	NotificationID string `json:"notification_id"`
}

// MarkNotificationsReadRequest marks several inbox entries read.
type MarkNotificationsReadRequest struct {
	Caller          Caller   `json:"-"`
	NotificationIDs []string `json:"notification_ids"`
}

// MarkNotificationsReadResponse reports how many entries were marked.
type MarkNotificationsReadResponse struct {
	Updated int `json:"updated"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
