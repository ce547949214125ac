package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	pgutil "github.com/Nathan-Yinka/autochek-API/pkg/postgres"
)

var _ port.LoanApplicationRepository = (*LoanApplicationRepo)(nil)

const applicationColumns = `
	id::text, vehicle_id::text, user_id::text, is_guest, claimed_at,
	applicant_name, applicant_email, applicant_phone, bvn, nin, date_of_birth, residential_address,
	requested_down_payment_pct, requested_down_payment_amount, requested_term_months,
	desired_monthly_payment, desired_interest_rate,
	listing_price, snapshot_retail_value, snapshot_loan_value, valuation_fetched_at, currency,
	ltv_cap, planned_down_amount, initial_needed, max_finance, validated_loan_amount,
	required_extra_down, implied_monthly_payment, implied_total_interest,
	eligibility_status, eligibility_reasons, status, version, created_at, updated_at`

// LoanApplicationRepo implements port.LoanApplicationRepository.
type LoanApplicationRepo struct {
	db pgutil.DBTX
}

// NewLoanApplicationRepo creates a repository on a pool or transaction.
func NewLoanApplicationRepo(db pgutil.DBTX) *LoanApplicationRepo {
	return &LoanApplicationRepo{db: db}
}

// Save persists a loan application (upsert by ID with optimistic locking).
// Only the fields that change after submission are updated.
func (r *LoanApplicationRepo) Save(ctx context.Context, app model.LoanApplication) error {
	rec := app.Record()
	query := `
		INSERT INTO loan_applications (
			id, vehicle_id, user_id, is_guest, claimed_at,
			applicant_name, applicant_email, applicant_phone, bvn, nin, date_of_birth, residential_address,
			requested_down_payment_pct, requested_down_payment_amount, requested_term_months,
			desired_monthly_payment, desired_interest_rate,
			listing_price, snapshot_retail_value, snapshot_loan_value, valuation_fetched_at, currency,
			ltv_cap, planned_down_amount, initial_needed, max_finance, validated_loan_amount,
			required_extra_down, implied_monthly_payment, implied_total_interest,
			eligibility_status, eligibility_reasons, status, version, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
			$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36
		)
		ON CONFLICT (id) DO UPDATE SET
			user_id             = EXCLUDED.user_id,
			is_guest            = EXCLUDED.is_guest,
			claimed_at          = EXCLUDED.claimed_at,
			eligibility_reasons = EXCLUDED.eligibility_reasons,
			status              = EXCLUDED.status,
			version             = loan_applications.version + 1,
			updated_at          = EXCLUDED.updated_at
		WHERE loan_applications.version = $34
	`
	reasons := rec.EligibilityReasons
	if reasons == nil {
		reasons = []string{}
	}
	tag, err := r.db.Exec(ctx, query,
		rec.ID, rec.VehicleID, nullableString(rec.UserID), rec.IsGuest, rec.ClaimedAt,
		rec.Applicant.Name, rec.Applicant.Email, rec.Applicant.Phone, rec.Applicant.BVN,
		rec.Applicant.NIN, rec.Applicant.DateOfBirth, rec.Applicant.ResidentialAddress,
		rec.Terms.DownPaymentPct, rec.Terms.DownPaymentAmount, rec.Terms.TermMonths,
		rec.Terms.DesiredMonthlyPayment, rec.Terms.DesiredInterestRate,
		rec.ListingPrice, rec.SnapshotRetailValue, rec.SnapshotLoanValue, rec.ValuationFetchedAt, rec.Currency,
		rec.LTVCap, rec.PlannedDownAmount, rec.InitialNeeded, rec.MaxFinance, rec.ValidatedLoanAmount,
		rec.RequiredExtraDown, rec.ImpliedMonthlyPayment, rec.ImpliedTotalInterest,
		rec.EligibilityStatus.String(), reasons, rec.Status.String(), rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save loan application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staleVersion("loan application", rec.ID)
	}
	return nil
}

// FindByID retrieves a single loan application.
func (r *LoanApplicationRepo) FindByID(ctx context.Context, id string) (model.LoanApplication, error) {
	return r.findOne(ctx, `SELECT `+applicationColumns+` FROM loan_applications WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves and row-locks a loan application until the
// surrounding transaction ends.
func (r *LoanApplicationRepo) FindByIDForUpdate(ctx context.Context, id string) (model.LoanApplication, error) {
	return r.findOne(ctx, `SELECT `+applicationColumns+` FROM loan_applications WHERE id = $1 FOR UPDATE`, id)
}

// List returns applications newest first.
func (r *LoanApplicationRepo) List(ctx context.Context, f port.ApplicationFilter) ([]model.LoanApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE ($1::text = '' OR user_id::text = $1)
		  AND ($2::text = '' OR status = $2)
		ORDER BY created_at DESC, id
		LIMIT NULLIF($3::int, 0) OFFSET $4
	`
	return r.findMany(ctx, query, f.UserID, f.Status.String(), f.Limit, f.Offset)
}

// ListUnclaimedByEmail returns unclaimed guest applications whose applicant
// email matches, ignoring case.
func (r *LoanApplicationRepo) ListUnclaimedByEmail(ctx context.Context, email string) ([]model.LoanApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE is_guest AND user_id IS NULL AND LOWER(applicant_email) = LOWER($1)
		ORDER BY created_at DESC, id
	`
	return r.findMany(ctx, query, email)
}

// StatusesByVehicle returns the status of every application on the vehicle.
func (r *LoanApplicationRepo) StatusesByVehicle(ctx context.Context, vehicleID string) ([]valueobject.LoanApplicationStatus, error) {
	rows, err := r.db.Query(ctx, `SELECT status FROM loan_applications WHERE vehicle_id = $1`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("query application statuses: %w", err)
	}
	defer rows.Close()

	var out []valueobject.LoanApplicationStatus
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan application status: %w", err)
		}
		st, err := valueobject.NewLoanApplicationStatus(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Delete removes an application; its offers go with it.
func (r *LoanApplicationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM loan_applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete loan application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("loan application", id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// scan helpers
// ---------------------------------------------------------------------------

func (r *LoanApplicationRepo) findOne(ctx context.Context, query, id string) (model.LoanApplication, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return model.LoanApplication{}, lookupError(err, "loan application", id)
	}
	return app, nil
}

func (r *LoanApplicationRepo) findMany(ctx context.Context, query string, args ...any) ([]model.LoanApplication, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loan applications: %w", err)
	}
	defer rows.Close()

	var result []model.LoanApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

func scanApplication(s scannable) (model.LoanApplication, error) {
	var (
		rec                          model.LoanApplicationRecord
		userID                       *string
		downPct, downAmount          decimal.NullDecimal
		snapshotRetail, snapshotLoan decimal.NullDecimal
		eligibility, status          string
	)
	err := s.Scan(
		&rec.ID, &rec.VehicleID, &userID, &rec.IsGuest, &rec.ClaimedAt,
		&rec.Applicant.Name, &rec.Applicant.Email, &rec.Applicant.Phone, &rec.Applicant.BVN,
		&rec.Applicant.NIN, &rec.Applicant.DateOfBirth, &rec.Applicant.ResidentialAddress,
		&downPct, &downAmount, &rec.Terms.TermMonths,
		&rec.Terms.DesiredMonthlyPayment, &rec.Terms.DesiredInterestRate,
		&rec.ListingPrice, &snapshotRetail, &snapshotLoan, &rec.ValuationFetchedAt, &rec.Currency,
		&rec.LTVCap, &rec.PlannedDownAmount, &rec.InitialNeeded, &rec.MaxFinance, &rec.ValidatedLoanAmount,
		&rec.RequiredExtraDown, &rec.ImpliedMonthlyPayment, &rec.ImpliedTotalInterest,
		&eligibility, &rec.EligibilityReasons, &status, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return model.LoanApplication{}, fmt.Errorf("scan loan application: %w", err)
	}

	rec.UserID = stringOrEmpty(userID)
	rec.Terms.DownPaymentPct = decimalPtr(downPct)
	rec.Terms.DownPaymentAmount = decimalPtr(downAmount)
	rec.SnapshotRetailValue = decimalPtr(snapshotRetail)
	rec.SnapshotLoanValue = decimalPtr(snapshotLoan)

	if rec.EligibilityStatus, err = valueobject.NewEligibilityStatus(eligibility); err != nil {
		return model.LoanApplication{}, fmt.Errorf("parse eligibility status: %w", err)
	}
	if rec.Status, err = valueobject.NewLoanApplicationStatus(status); err != nil {
		return model.LoanApplication{}, fmt.Errorf("parse status: %w", err)
	}
	return model.ReconstructLoanApplication(rec), nil
}
