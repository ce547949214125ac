package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	pgutil "github.com/Nathan-Yinka/autochek-API/pkg/postgres"
)

var _ port.OfferRepository = (*OfferRepo)(nil)

const offerColumns = `
	id::text, loan_application_id::text, admin_id::text, lender_code,
	offered_loan_amount, apr, term_months, monthly_payment, total_interest, ltv_at_offer,
	status, expires_at, notes, version, created_at, updated_at`

// OfferRepo implements port.OfferRepository.
type OfferRepo struct {
	db pgutil.DBTX
}

// NewOfferRepo creates a repository on a pool or transaction.
func NewOfferRepo(db pgutil.DBTX) *OfferRepo {
	return &OfferRepo{db: db}
}

// Save persists an offer (upsert by ID with optimistic locking). Terms are
// immutable; only status and notes change.
func (r *OfferRepo) Save(ctx context.Context, o model.Offer) error {
	rec := o.Record()
	query := `
		INSERT INTO offers (
			id, loan_application_id, admin_id, lender_code,
			offered_loan_amount, apr, term_months, monthly_payment, total_interest, ltv_at_offer,
			status, expires_at, notes, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET
			status     = EXCLUDED.status,
			notes      = EXCLUDED.notes,
			version    = offers.version + 1,
			updated_at = EXCLUDED.updated_at
		WHERE offers.version = $14
	`
	tag, err := r.db.Exec(ctx, query,
		rec.ID, rec.LoanApplicationID, rec.AdminID, rec.LenderCode,
		rec.OfferedLoanAmount, rec.APR, rec.TermMonths, rec.MonthlyPayment, rec.TotalInterest, rec.LTVAtOffer,
		rec.Status.String(), rec.ExpiresAt, rec.Notes, rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staleVersion("offer", rec.ID)
	}
	return nil
}

// FindByID retrieves a single offer.
func (r *OfferRepo) FindByID(ctx context.Context, id string) (model.Offer, error) {
	return r.findOne(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves and row-locks an offer. Concurrent accepts of
// the same offer queue here.
func (r *OfferRepo) FindByIDForUpdate(ctx context.Context, id string) (model.Offer, error) {
	return r.findOne(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1 FOR UPDATE`, id)
}

// ListByApplication returns an application's offers newest first.
func (r *OfferRepo) ListByApplication(ctx context.Context, applicationID string) ([]model.Offer, error) {
	return r.findMany(ctx, `
		SELECT `+offerColumns+`
		FROM offers
		WHERE loan_application_id = $1
		ORDER BY created_at DESC, id`, applicationID)
}

// ListByUser returns the offers on every application the user owns, newest first.
func (r *OfferRepo) ListByUser(ctx context.Context, userID string) ([]model.Offer, error) {
	return r.findMany(ctx, `
		SELECT `+offerColumns+`
		FROM offers
		WHERE loan_application_id IN (SELECT id FROM loan_applications WHERE user_id = $1)
		ORDER BY created_at DESC, id`, userID)
}

// StatusesByVehicle returns the status of each offer on any application for the vehicle.
func (r *OfferRepo) StatusesByVehicle(ctx context.Context, vehicleID string) ([]valueobject.OfferStatus, error) {
	return r.statuses(ctx, `
		SELECT status FROM offers
		WHERE loan_application_id IN (SELECT id FROM loan_applications WHERE vehicle_id = $1)`, vehicleID)
}

func (r *OfferRepo) statuses(ctx context.Context, query, arg string) ([]valueobject.OfferStatus, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query offer statuses: %w", err)
	}
	defer rows.Close()

	var out []valueobject.OfferStatus
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan offer status: %w", err)
		}
		st, err := valueobject.NewOfferStatus(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *OfferRepo) findOne(ctx context.Context, query, id string) (model.Offer, error) {
	o, err := scanOffer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return model.Offer{}, lookupError(err, "offer", id)
	}
	return o, nil
}

func (r *OfferRepo) findMany(ctx context.Context, query string, args ...any) ([]model.Offer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var result []model.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func scanOffer(s scannable) (model.Offer, error) {
	var (
		rec    model.OfferRecord
		ltv    decimal.NullDecimal
		status string
	)
	err := s.Scan(
		&rec.ID, &rec.LoanApplicationID, &rec.AdminID, &rec.LenderCode,
		&rec.OfferedLoanAmount, &rec.APR, &rec.TermMonths, &rec.MonthlyPayment, &rec.TotalInterest, &ltv,
		&status, &rec.ExpiresAt, &rec.Notes, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return model.Offer{}, fmt.Errorf("scan offer: %w", err)
	}
	rec.LTVAtOffer = decimalPtr(ltv)
	if rec.Status, err = valueobject.NewOfferStatus(status); err != nil {
		return model.Offer{}, fmt.Errorf("parse offer status: %w", err)
	}
	return model.ReconstructOffer(rec), nil
}
