package grpc_test

import (
	"context"
	"sync"
	"time"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
)

// store is a minimal in-memory persistence for transport tests. Offers and
// valuations are never created through it.
type store struct {
	mu       sync.Mutex
	vehicles map[string]model.VehicleSnapshot
	apps     map[string]model.LoanApplicationRecord
}

func newStore() *store {
	return &store{
		vehicles: map[string]model.VehicleSnapshot{},
		apps:     map[string]model.LoanApplicationRecord{},
	}
}

func (s *store) Do(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, port.Repositories{
		Vehicles:     vehicleRepo{s},
		Applications: applicationRepo{s},
		Offers:       offerRepo{},
		Valuations:   valuationRepo{},
	})
}

type vehicleRepo struct{ s *store }

func (r vehicleRepo) GetValuationSnapshot(_ context.Context, id string) (model.VehicleSnapshot, error) {
	v, ok := r.s.vehicles[id]
	if !ok {
		return model.VehicleSnapshot{}, apperr.NotFound("vehicle", id)
	}
	return v, nil
}

func (r vehicleRepo) FindByVIN(_ context.Context, vin string) (model.VehicleSnapshot, error) {
	for _, v := range r.s.vehicles {
		if v.VIN == vin {
			return v, nil
		}
	}
	return model.VehicleSnapshot{}, apperr.NotFound("vehicle", vin)
}

func (vehicleRepo) UpdateValuation(context.Context, string, model.ValuationResult, time.Time) error {
	return nil
}

func (vehicleRepo) UpdatePricing(context.Context, model.VehicleSnapshot) error { return nil }

type applicationRepo struct{ s *store }

func (r applicationRepo) Save(_ context.Context, app model.LoanApplication) error {
	rec := app.Record()
	r.s.apps[rec.ID] = rec
	return nil
}

func (r applicationRepo) FindByID(_ context.Context, id string) (model.LoanApplication, error) {
	rec, ok := r.s.apps[id]
	if !ok {
		return model.LoanApplication{}, apperr.NotFound("loan application", id)
	}
	return model.ReconstructLoanApplication(rec), nil
}

func (r applicationRepo) FindByIDForUpdate(ctx context.Context, id string) (model.LoanApplication, error) {
	return r.FindByID(ctx, id)
}

func (r applicationRepo) List(_ context.Context, f port.ApplicationFilter) ([]model.LoanApplication, error) {
	var out []model.LoanApplication
	for _, rec := range r.s.apps {
		if f.UserID == "" || rec.UserID == f.UserID {
			out = append(out, model.ReconstructLoanApplication(rec))
		}
	}
	return out, nil
}

func (applicationRepo) ListUnclaimedByEmail(context.Context, string) ([]model.LoanApplication, error) {
	return nil, nil
}

func (applicationRepo) StatusesByVehicle(context.Context, string) ([]valueobject.LoanApplicationStatus, error) {
	return nil, nil
}

func (r applicationRepo) Delete(_ context.Context, id string) error {
	delete(r.s.apps, id)
	return nil
}

type offerRepo struct{}

func (offerRepo) Save(context.Context, model.Offer) error { return nil }

func (offerRepo) FindByID(_ context.Context, id string) (model.Offer, error) {
	return model.Offer{}, apperr.NotFound("offer", id)
}

func (r offerRepo) FindByIDForUpdate(ctx context.Context, id string) (model.Offer, error) {
	return r.FindByID(ctx, id)
}

func (offerRepo) ListByApplication(context.Context, string) ([]model.Offer, error) { return nil, nil }
func (offerRepo) ListByUser(context.Context, string) ([]model.Offer, error)        { return nil, nil }

func (offerRepo) StatusesByVehicle(context.Context, string) ([]valueobject.OfferStatus, error) {
	return nil, nil
}

type valuationRepo struct{}

func (valuationRepo) Save(context.Context, model.Valuation) error { return nil }

func (valuationRepo) ListByVehicle(context.Context, string) ([]model.Valuation, error) {
	return nil, nil
}
