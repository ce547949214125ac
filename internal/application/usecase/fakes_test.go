package usecase_test

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/usecase"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/event"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/pkg/testutil"
)

// ---------------------------------------------------------------------------
// In-memory unit of work
// ---------------------------------------------------------------------------

// memStore holds committed state. Versions are bumped on update the way the
// postgres upsert does.
type memStore struct {
	vehicles   map[string]model.VehicleSnapshot
	apps       map[string]model.LoanApplicationRecord
	offers     map[string]model.OfferRecord
	valuations []model.Valuation

	saveAppErr   error
	saveOfferErr error
	// beforeOfferSave runs ahead of the version check, standing in for a
	// writer that committed after the offer was read.
	beforeOfferSave func(id string)
}

func newMemStore() *memStore {
	return &memStore{
		vehicles: map[string]model.VehicleSnapshot{},
		apps:     map[string]model.LoanApplicationRecord{},
		offers:   map[string]model.OfferRecord{},
	}
}

func (s *memStore) clone() memStore {
	return memStore{
		vehicles:   maps.Clone(s.vehicles),
		apps:       maps.Clone(s.apps),
		offers:     maps.Clone(s.offers),
		valuations: slices.Clone(s.valuations),
	}
}

func (s *memStore) restore(b memStore) {
	s.vehicles, s.apps, s.offers, s.valuations = b.vehicles, b.apps, b.offers, b.valuations
}

func (s *memStore) app(id string) model.LoanApplicationRecord { return s.apps[id] }
func (s *memStore) offer(id string) model.OfferRecord         { return s.offers[id] }

// memUoW rolls every write back when fn fails.
type memUoW struct {
	mu    sync.Mutex
	store *memStore
	calls int
}

func (u *memUoW) Do(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++

	backup := u.store.clone()
	err := fn(ctx, port.Repositories{
		Vehicles:     memVehicles{u.store},
		Applications: memApplications{u.store},
		Offers:       memOffers{u.store},
		Valuations:   memValuations{u.store},
	})
	if err != nil {
		u.store.restore(backup)
	}
	return err
}

// staleVersion matches the error the postgres repositories return when an
// optimistic-lock check fails.
func staleVersion(resource, id string) error {
	return apperr.Wrap(apperr.ErrConflict, fmt.Errorf("%s %q was modified concurrently: %w", resource, id, port.ErrStaleVersion))
}

type memVehicles struct{ s *memStore }

func (r memVehicles) GetValuationSnapshot(_ context.Context, id string) (model.VehicleSnapshot, error) {
	v, ok := r.s.vehicles[id]
	if !ok {
		return model.VehicleSnapshot{}, apperr.NotFound("vehicle", id)
	}
	return v, nil
}

func (r memVehicles) FindByVIN(_ context.Context, vin string) (model.VehicleSnapshot, error) {
	for _, v := range r.s.vehicles {
		if v.VIN == vin {
			return v, nil
		}
	}
	return model.VehicleSnapshot{}, apperr.NotFound("vehicle", vin)
}

func (r memVehicles) UpdateValuation(_ context.Context, id string, res model.ValuationResult, at time.Time) error {
	v, ok := r.s.vehicles[id]
	if !ok {
		return apperr.NotFound("vehicle", id)
	}
	retail, loan := res.RetailValue, res.LoanValue
	v.RetailValue, v.LoanValue, v.ValuationSource, v.ValuationFetchedAt = &retail, &loan, res.Source, &at
	r.s.vehicles[id] = v
	return nil
}

func (r memVehicles) UpdatePricing(_ context.Context, v model.VehicleSnapshot) error {
	if _, ok := r.s.vehicles[v.ID]; !ok {
		return apperr.NotFound("vehicle", v.ID)
	}
	r.s.vehicles[v.ID] = v
	return nil
}

type memApplications struct{ s *memStore }

func (r memApplications) Save(_ context.Context, app model.LoanApplication) error {
	if r.s.saveAppErr != nil {
		return r.s.saveAppErr
	}
	rec := app.Record()
	if existing, ok := r.s.apps[rec.ID]; ok {
		if existing.Version != rec.Version {
			return staleVersion("loan application", rec.ID)
		}
		rec.Version++
	}
	r.s.apps[rec.ID] = rec
	return nil
}

func (r memApplications) FindByID(_ context.Context, id string) (model.LoanApplication, error) {
	rec, ok := r.s.apps[id]
	if !ok {
		return model.LoanApplication{}, apperr.NotFound("loan application", id)
	}
	return model.ReconstructLoanApplication(rec), nil
}

func (r memApplications) FindByIDForUpdate(ctx context.Context, id string) (model.LoanApplication, error) {
	return r.FindByID(ctx, id)
}

func (r memApplications) List(_ context.Context, f port.ApplicationFilter) ([]model.LoanApplication, error) {
	var out []model.LoanApplication
	for _, rec := range r.s.apps {
		if f.UserID != "" && rec.UserID != f.UserID {
			continue
		}
		if !f.Status.IsZero() && !rec.Status.Equal(f.Status) {
			continue
		}
		out = append(out, model.ReconstructLoanApplication(rec))
	}
	sortApps(out)
	return out, nil
}

func (r memApplications) ListUnclaimedByEmail(_ context.Context, email string) ([]model.LoanApplication, error) {
	var out []model.LoanApplication
	for _, rec := range r.s.apps {
		if rec.IsGuest && rec.UserID == "" && strings.EqualFold(rec.Applicant.Email, email) {
			out = append(out, model.ReconstructLoanApplication(rec))
		}
	}
	sortApps(out)
	return out, nil
}

func (r memApplications) StatusesByVehicle(_ context.Context, vehicleID string) ([]valueobject.LoanApplicationStatus, error) {
	var out []valueobject.LoanApplicationStatus
	for _, rec := range r.s.apps {
		if rec.VehicleID == vehicleID {
			out = append(out, rec.Status)
		}
	}
	return out, nil
}

func (r memApplications) Delete(_ context.Context, id string) error {
	if _, ok := r.s.apps[id]; !ok {
		return apperr.NotFound("loan application", id)
	}
	delete(r.s.apps, id)
	return nil
}

func sortApps(apps []model.LoanApplication) {
	slices.SortFunc(apps, func(a, b model.LoanApplication) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID(), b.ID())
	})
}

type memOffers struct{ s *memStore }

func (r memOffers) Save(_ context.Context, o model.Offer) error {
	if r.s.saveOfferErr != nil {
		return r.s.saveOfferErr
	}
	rec := o.Record()
	if r.s.beforeOfferSave != nil {
		r.s.beforeOfferSave(rec.ID)
	}
	if existing, ok := r.s.offers[rec.ID]; ok {
		if existing.Version != rec.Version {
			return staleVersion("offer", rec.ID)
		}
		rec.Version++
	}
	r.s.offers[rec.ID] = rec
	return nil
}

func (r memOffers) FindByID(_ context.Context, id string) (model.Offer, error) {
	rec, ok := r.s.offers[id]
	if !ok {
		return model.Offer{}, apperr.NotFound("offer", id)
	}
	return model.ReconstructOffer(rec), nil
}

func (r memOffers) FindByIDForUpdate(ctx context.Context, id string) (model.Offer, error) {
	return r.FindByID(ctx, id)
}

func (r memOffers) ListByApplication(_ context.Context, applicationID string) ([]model.Offer, error) {
	return r.filter(func(rec model.OfferRecord) bool { return rec.LoanApplicationID == applicationID }), nil
}

func (r memOffers) ListByUser(_ context.Context, userID string) ([]model.Offer, error) {
	return r.filter(func(rec model.OfferRecord) bool {
		app, ok := r.s.apps[rec.LoanApplicationID]
		return ok && app.UserID == userID
	}), nil
}

func (r memOffers) StatusesByVehicle(_ context.Context, vehicleID string) ([]valueobject.OfferStatus, error) {
	var out []valueobject.OfferStatus
	for _, o := range r.filter(func(rec model.OfferRecord) bool {
		return r.s.apps[rec.LoanApplicationID].VehicleID == vehicleID
	}) {
		out = append(out, o.Status())
	}
	return out, nil
}

func (r memOffers) filter(keep func(model.OfferRecord) bool) []model.Offer {
	var out []model.Offer
	for _, rec := range r.s.offers {
		if keep(rec) {
			out = append(out, model.ReconstructOffer(rec))
		}
	}
	slices.SortFunc(out, func(a, b model.Offer) int {
		if c := b.Record().CreatedAt.Compare(a.Record().CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID(), b.ID())
	})
	return out
}

type memValuations struct{ s *memStore }

func (r memValuations) Save(_ context.Context, v model.Valuation) error {
	r.s.valuations = append(r.s.valuations, v)
	return nil
}

func (r memValuations) ListByVehicle(_ context.Context, vehicleID string) ([]model.Valuation, error) {
	var out []model.Valuation
	for _, v := range r.s.valuations {
		if v.VehicleID == vehicleID {
			out = append(out, v)
		}
	}
	slices.Reverse(out)
	return out, nil
}

// ---------------------------------------------------------------------------
// Side-effect recorders
// ---------------------------------------------------------------------------

type sentNotification struct {
	userID string
	n      model.Notification
}

type recordingSink struct {
	users  []sentNotification
	admins []model.Notification
	err    error
}

func (s *recordingSink) NotifyUser(_ context.Context, userID string, n model.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.users = append(s.users, sentNotification{userID: userID, n: n})
	return nil
}

func (s *recordingSink) NotifyAdmins(_ context.Context, n model.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.admins = append(s.admins, n)
	return nil
}

func (s *recordingSink) userTypes() []model.NotificationType {
	out := make([]model.NotificationType, len(s.users))
	for i, u := range s.users {
		out[i] = u.n.Type
	}
	return out
}

type recordingPublisher struct {
	events []event.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...event.DomainEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type countingMetrics struct {
	verdicts      map[string]int
	transitions   map[string]int
	sources       map[string]int
	notifyFailure map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		verdicts:      map[string]int{},
		transitions:   map[string]int{},
		sources:       map[string]int{},
		notifyFailure: map[string]int{},
	}
}

func (m *countingMetrics) EligibilityVerdict(s string) { m.verdicts[s]++ }
func (m *countingMetrics) OfferTransition(s string)    { m.transitions[s]++ }
func (m *countingMetrics) ValuationSource(s string)    { m.sources[s]++ }
func (m *countingMetrics) NotificationFailed(k string) { m.notifyFailure[k]++ }

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	store      *memStore
	uow        *memUoW
	sink       *recordingSink
	publisher  *recordingPublisher
	metrics    *countingMetrics
	dispatcher *usecase.Dispatcher
	now        time.Time
}

func newHarness() *harness {
	store := newMemStore()
	h := &harness{
		store:     store,
		uow:       &memUoW{store: store},
		sink:      &recordingSink{},
		publisher: &recordingPublisher{},
		metrics:   newCountingMetrics(),
		now:       testutil.FixedNow,
	}
	h.dispatcher = usecase.NewDispatcher(h.publisher, h.sink, h.metrics, nil)
	return h
}

func (h *harness) clock() time.Time { return h.now }

func (h *harness) policy() valueobject.PolicyConfig { return valueobject.DefaultPolicyConfig() }

// referenceVehicle is the 5.5M listing with a 30% minimum down payment and a
// fresh 5.2M loan value.
func (h *harness) referenceVehicle() model.VehicleSnapshot {
	fetched := h.now.Add(-48 * time.Hour)
	v := model.VehicleSnapshot{
		ID:                     testutil.TestVehicleID.String(),
		VIN:                    testutil.TestVIN,
		Make:                   "Toyota",
		Model:                  "Camry",
		Year:                   2019,
		Condition:              "good",
		ListingPrice:           testutil.Dec("5500000"),
		LoanValue:              testutil.DecPtr("5200000"),
		RetailValue:            testutil.DecPtr("5600000"),
		RequiredDownPaymentPct: testutil.Dec("0.30"),
		Currency:               "NGN",
		IsLoanAvailable:        true,
		ValuationSource:        "rapidapi:vin-lookup-jack-roe",
		ValuationFetchedAt:     &fetched,
	}
	h.store.vehicles[v.ID] = v
	return v
}

// seedApplication stores an application in the given status.
func (h *harness) seedApplication(userID, email string, status valueobject.LoanApplicationStatus) model.LoanApplicationRecord {
	v := h.referenceVehicle()
	rec := model.LoanApplicationRecord{
		ID:                  "app-" + strings.ToLower(status.String()) + "-" + userID,
		VehicleID:           v.ID,
		UserID:              userID,
		IsGuest:             userID == "",
		Applicant:           model.Applicant{Name: "Ada Obi", Email: email, BVN: "22212345678"},
		Terms:               model.RequestedTerms{TermMonths: 48},
		ListingPrice:        v.ListingPrice,
		SnapshotLoanValue:   v.LoanValue,
		SnapshotRetailValue: v.RetailValue,
		Currency:            "NGN",
		LTVCap:              testutil.Dec("1.10"),
		ValidatedLoanAmount: testutil.Dec("3850000"),
		EligibilityStatus:   valueobject.EligibilityEligible,
		EligibilityReasons:  []string{"Down 30% → Finance ₦3,850,000 → ~₦127,655/month for 48 months"},
		Status:              status,
		Version:             1,
		CreatedAt:           h.now.Add(-time.Hour),
		UpdatedAt:           h.now.Add(-time.Hour),
	}
	h.store.apps[rec.ID] = rec
	return rec
}

// seedOffer stores an offer on the application expiring at expiresAt.
func (h *harness) seedOffer(id, applicationID string, status valueobject.OfferStatus, expiresAt time.Time) model.OfferRecord {
	rec := model.OfferRecord{
		ID:                id,
		LoanApplicationID: applicationID,
		AdminID:           testutil.TestAdminID,
		LenderCode:        model.DefaultLenderCode,
		OfferedLoanAmount: testutil.Dec("1000000"),
		APR:               testutil.Dec("0.12"),
		TermMonths:        12,
		MonthlyPayment:    testutil.Dec("88848.79"),
		TotalInterest:     testutil.Dec("66185.48"),
		Status:            status,
		ExpiresAt:         expiresAt,
		Version:           1,
		CreatedAt:         h.now.Add(-time.Hour),
		UpdatedAt:         h.now.Add(-time.Hour),
	}
	h.store.offers[rec.ID] = rec
	return rec
}
