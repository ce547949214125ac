package valuation

import (
	"context"
	"log/slog"
	"time"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/service"
)

var _ port.ValuationProvider = (*TwoTierProvider)(nil)

// TwoTierProvider asks the external lookup first and falls back to the
// depreciation model on any error. It never fails.
type TwoTierProvider struct {
	primary  port.ValuationProvider
	fallback service.DepreciationCalculator
	now      func() time.Time
	logger   *slog.Logger
}

// NewTwoTierProvider wires the tiers. A nil now uses time.Now.
func NewTwoTierProvider(primary port.ValuationProvider, now func() time.Time, logger *slog.Logger) *TwoTierProvider {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TwoTierProvider{
		primary:  primary,
		fallback: service.NewDepreciationCalculator(),
		now:      now,
		logger:   logger,
	}
}

// FetchValuation implements port.ValuationProvider.
func (p *TwoTierProvider) FetchValuation(ctx context.Context, vehicle model.VehicleSnapshot) (model.ValuationResult, error) {
	if p.primary != nil {
		result, err := p.primary.FetchValuation(ctx, vehicle)
		if err == nil {
			return result, nil
		}
		p.logger.InfoContext(ctx, "falling back to depreciation model",
			"vin", vehicle.VIN,
			"error", err,
		)
	}
	return p.fallback.Calculate(vehicle, p.now()), nil
}
