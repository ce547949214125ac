package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/event"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/pkg/testutil"
)

func testVehicle() model.VehicleSnapshot {
	fetched := testutil.FixedNow.Add(-time.Hour)
	return model.VehicleSnapshot{
		ID:                     testutil.TestVehicleID.String(),
		VIN:                    testutil.TestVIN,
		ListingPrice:           testutil.Dec("5500000"),
		LoanValue:              testutil.DecPtr("5200000"),
		RetailValue:            testutil.DecPtr("5600000"),
		RequiredDownPaymentPct: testutil.Dec("0.30"),
		Currency:               "NGN",
		IsLoanAvailable:        true,
		ValuationFetchedAt:     &fetched,
	}
}

func testApplicant() model.Applicant {
	return model.Applicant{Name: "Ada Obi", Email: "a@b.com", BVN: "22212345678"}
}

func eligibleResult() model.EligibilityResult {
	return model.EligibilityResult{
		Status:                valueobject.EligibilityEligible,
		Reasons:               []string{"Down 30% → Finance ₦3,850,000 → ~₦127,655/month for 48 months"},
		ListingPrice:          testutil.Dec("5500000"),
		PlannedDownAmount:     testutil.Dec("1650000"),
		InitialNeeded:         testutil.Dec("3850000"),
		MaxFinance:            testutil.Dec("5720000"),
		ValidatedLoanAmount:   testutil.Dec("3850000"),
		RequiredExtraDown:     testutil.Dec("0"),
		ImpliedMonthlyPayment: testutil.Dec("127655"),
		ImpliedTotalInterest:  testutil.Dec("2277437"),
	}
}

func newApp(t *testing.T, userID string, result model.EligibilityResult) model.LoanApplication {
	t.Helper()
	app, err := model.NewLoanApplication(testVehicle(), testApplicant(), userID,
		model.RequestedTerms{TermMonths: 48}, testutil.Dec("1.10"), result, testutil.FixedNow)
	require.NoError(t, err)
	return app
}

func TestNewLoanApplication_StatusFromVerdict(t *testing.T) {
	app := newApp(t, testutil.TestUserID, eligibleResult())

	assert.Equal(t, valueobject.LoanApplicationStatusSubmitted, app.Status())
	assert.False(t, app.IsGuest())
	assert.Equal(t, 1, app.Version())
	rec := app.Record()
	testutil.AssertDecimal(t, "5200000", *rec.SnapshotLoanValue)
	testutil.AssertDecimal(t, "1.10", rec.LTVCap)
	testutil.AssertDecimal(t, "127655", rec.ImpliedMonthlyPayment)

	require.Len(t, app.DomainEvents(), 1)
	assert.Equal(t, event.TypeLoanApplicationSubmitted, app.DomainEvents()[0].EventType())

	rejected := eligibleResult()
	rejected.Status = valueobject.EligibilityNeedMoreDown
	guest := newApp(t, "", rejected)
	assert.Equal(t, valueobject.LoanApplicationStatusRejected, guest.Status())
	assert.True(t, guest.IsGuest())
}

func TestNewLoanApplication_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.VehicleSnapshot, *model.Applicant, *model.RequestedTerms)
	}{
		{"missing vehicle", func(v *model.VehicleSnapshot, _ *model.Applicant, _ *model.RequestedTerms) { v.ID = "" }},
		{"missing name", func(_ *model.VehicleSnapshot, a *model.Applicant, _ *model.RequestedTerms) { a.Name = " " }},
		{"bad email", func(_ *model.VehicleSnapshot, a *model.Applicant, _ *model.RequestedTerms) { a.Email = "not-an-email" }},
		{"missing bvn", func(_ *model.VehicleSnapshot, a *model.Applicant, _ *model.RequestedTerms) { a.BVN = "" }},
		{"zero term", func(_ *model.VehicleSnapshot, _ *model.Applicant, r *model.RequestedTerms) { r.TermMonths = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, a, r := testVehicle(), testApplicant(), model.RequestedTerms{TermMonths: 48}
			tt.mutate(&v, &a, &r)
			_, err := model.NewLoanApplication(v, a, "", r, testutil.Dec("1.1"), eligibleResult(), testutil.FixedNow)
			assert.True(t, errors.Is(err, model.ErrInvalidApplication), "got %v", err)
		})
	}
}

func TestLoanApplication_Claim(t *testing.T) {
	guest := newApp(t, "", eligibleResult())
	later := testutil.FixedNow.Add(time.Hour)

	t.Run("matching email claims once", func(t *testing.T) {
		claimed, err := guest.Claim(testutil.TestUserID, "A@B.com", later)
		require.NoError(t, err)

		assert.Equal(t, testutil.TestUserID, claimed.UserID())
		assert.False(t, claimed.IsGuest())
		require.NotNil(t, claimed.ClaimedAt())
		assert.Equal(t, later, *claimed.ClaimedAt())
		assert.True(t, guest.IsGuest(), "original must be untouched")

		_, err = claimed.Claim(testutil.TestOtherUserID, "a@b.com", later)
		assert.True(t, errors.Is(err, model.ErrAlreadyClaimed))
	})

	t.Run("email mismatch", func(t *testing.T) {
		_, err := guest.Claim(testutil.TestUserID, "x@y.com", later)
		assert.True(t, errors.Is(err, model.ErrEmailMismatch))
	})

	t.Run("not a guest application", func(t *testing.T) {
		owned := newApp(t, testutil.TestUserID, eligibleResult())
		_, err := owned.Claim(testutil.TestOtherUserID, "a@b.com", later)
		assert.True(t, errors.Is(err, model.ErrNotGuestApplication))
	})
}

func TestLoanApplication_TransitionTo(t *testing.T) {
	app := newApp(t, testutil.TestUserID, eligibleResult())

	review, err := app.TransitionTo(valueobject.LoanApplicationStatusUnderReview, "", testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanApplicationStatusUnderReview, review.Status())

	rejected, err := review.TransitionTo(valueobject.LoanApplicationStatusRejected, "Income could not be verified", testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Income could not be verified"}, rejected.EligibilityReasons())

	_, err = rejected.TransitionTo(valueobject.LoanApplicationStatusSubmitted, "", testutil.FixedNow)
	assert.True(t, errors.Is(err, valueobject.ErrInvalidStatusTransition))

	_, err = app.TransitionTo(valueobject.LoanApplicationStatusApproved, "", testutil.FixedNow)
	assert.True(t, errors.Is(err, valueobject.ErrInvalidStatusTransition), "approval comes from offer acceptance")
}

func TestLoanApplication_OfferDrivenTransitions(t *testing.T) {
	app := newApp(t, testutil.TestUserID, eligibleResult())

	pending, err := app.MarkPendingOffer(testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanApplicationStatusPendingOffer, pending.Status())

	again, err := pending.MarkPendingOffer(testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, len(pending.DomainEvents()), len(again.DomainEvents()), "no second status event")

	approved, err := pending.Approve(testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanApplicationStatusApproved, approved.Status())

	_, err = approved.Approve(testutil.FixedNow)
	assert.True(t, errors.Is(err, valueobject.ErrInvalidStatusTransition))

	reopened, err := approved.MarkPendingOffer(testutil.FixedNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanApplicationStatusPendingOffer, reopened.Status())

	rejected, err := pending.TransitionTo(valueobject.LoanApplicationStatusRejected, "", testutil.FixedNow)
	require.NoError(t, err)
	_, err = rejected.MarkPendingOffer(testutil.FixedNow)
	assert.True(t, errors.Is(err, model.ErrApplicationClosed))
}

func TestLoanApplication_AccessRules(t *testing.T) {
	owned := newApp(t, testutil.TestUserID, eligibleResult())
	guest := newApp(t, "", eligibleResult())

	owner := model.Actor{UserID: testutil.TestUserID, Email: "owner@example.com"}
	stranger := model.Actor{UserID: testutil.TestOtherUserID, Email: "x@y.com"}
	matching := model.Actor{UserID: testutil.TestOtherUserID, Email: "A@b.com"}
	admin := model.Actor{UserID: testutil.TestAdminID, IsAdmin: true}

	assert.True(t, owned.CanBeViewedBy(owner))
	assert.True(t, owned.CanBeViewedBy(admin))
	assert.False(t, owned.CanBeViewedBy(stranger))

	assert.True(t, owned.CanBeDeletedBy(owner))
	assert.True(t, owned.CanBeDeletedBy(admin))
	assert.False(t, owned.CanBeDeletedBy(matching), "email match only applies to unclaimed guests")

	assert.True(t, guest.CanBeDeletedBy(matching))
	assert.False(t, guest.CanBeDeletedBy(stranger))

	claimed, err := guest.Claim(testutil.TestUserID, "a@b.com", testutil.FixedNow)
	require.NoError(t, err)
	assert.False(t, claimed.CanBeDeletedBy(matching))
}
