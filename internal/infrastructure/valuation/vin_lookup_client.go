package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

// VINLookupSource identifies valuations returned by the RapidAPI VIN lookup.
const VINLookupSource = "rapidapi:vin-lookup-jack-roe"

// VINLookupConfig configures VINLookupClient.
type VINLookupConfig struct {
	Enabled bool
	APIKey  string
	// Host is sent as x-rapidapi-host and forms the default base URL.
	Host string
	// BaseURL overrides "https://<Host>".
	BaseURL string
	// USDToNGNRate converts the provider's USD figures into the listing currency.
	USDToNGNRate decimal.Decimal
	Timeout      time.Duration
}

// DefaultVINLookupConfig returns the production host with lookups disabled.
func DefaultVINLookupConfig() VINLookupConfig {
	return VINLookupConfig{
		Host:         "vin-lookup2.p.rapidapi.com",
		USDToNGNRate: decimal.NewFromInt(1500),
		Timeout:      10 * time.Second,
	}
}

// Configured reports whether lookups will reach the network.
func (c VINLookupConfig) Configured() bool {
	return c.Enabled && c.APIKey != ""
}

type vinLookupResponse struct {
	UID          string          `json:"uid"`
	RetailValue  decimal.Decimal `json:"retail_value"`
	LoanValue    decimal.Decimal `json:"loan_value"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	Trim         string          `json:"trim"`
	Engine       string          `json:"engine"`
	Transmission string          `json:"transmission"`
	FuelType     string          `json:"fuel_type"`
}

var _ port.ValuationProvider = (*VINLookupClient)(nil)

// VINLookupClient is the first valuation tier.
type VINLookupClient struct {
	cfg    VINLookupConfig
	http   *http.Client
	logger *slog.Logger
}

// NewVINLookupClient creates a client. A nil httpClient gets one with cfg.Timeout.
func NewVINLookupClient(cfg VINLookupConfig, httpClient *http.Client, logger *slog.Logger) *VINLookupClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.USDToNGNRate.IsZero() {
		cfg.USDToNGNRate = decimal.NewFromInt(1500)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VINLookupClient{cfg: cfg, http: httpClient, logger: logger}
}

// FetchValuation looks the vehicle's VIN up. Every failure, including a
// disabled client, is reported as apperr.ErrUpstreamUnavailable.
func (c *VINLookupClient) FetchValuation(ctx context.Context, vehicle model.VehicleSnapshot) (model.ValuationResult, error) {
	if !c.cfg.Enabled {
		return model.ValuationResult{}, apperr.New(apperr.ErrUpstreamUnavailable, "vin lookup disabled")
	}
	if c.cfg.APIKey == "" {
		c.logger.WarnContext(ctx, "vin lookup key not configured")
		return model.ValuationResult{}, apperr.New(apperr.ErrUpstreamUnavailable, "vin lookup key not configured")
	}
	if vehicle.VIN == "" {
		return model.ValuationResult{}, apperr.New(apperr.ErrInvalidRequest, "vin is required")
	}

	resp, err := c.get(ctx, vehicle.VIN)
	if err != nil {
		c.logger.ErrorContext(ctx, "vin lookup failed", "vin", vehicle.VIN, "error", err)
		return model.ValuationResult{}, apperr.Wrap(apperr.ErrUpstreamUnavailable, err)
	}
	if !resp.RetailValue.IsPositive() || !resp.LoanValue.IsPositive() {
		c.logger.WarnContext(ctx, "vin lookup returned no values", "vin", vehicle.VIN)
		return model.ValuationResult{}, apperr.New(apperr.ErrUpstreamUnavailable, "vin lookup returned no values for %s", vehicle.VIN)
	}

	c.logger.InfoContext(ctx, "vin lookup succeeded", "vin", vehicle.VIN, "provider_ref", resp.UID)
	return model.ValuationResult{
		RetailValue:  resp.RetailValue.Mul(c.cfg.USDToNGNRate).Round(0),
		LoanValue:    resp.LoanValue.Mul(c.cfg.USDToNGNRate).Round(0),
		Currency:     "NGN",
		Make:         resp.Make,
		Model:        resp.Model,
		Year:         resp.Year,
		Trim:         resp.Trim,
		Engine:       resp.Engine,
		Transmission: resp.Transmission,
		FuelType:     resp.FuelType,
		Source:       VINLookupSource,
		ProviderRef:  resp.UID,
	}, nil
}

func (c *VINLookupClient) get(ctx context.Context, vin string) (vinLookupResponse, error) {
	base := c.cfg.BaseURL
	if base == "" {
		base = "https://" + c.cfg.Host
	}
	endpoint := strings.TrimRight(base, "/") + "/vehicle-lookup?vin=" + url.QueryEscape(vin)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return vinLookupResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.cfg.APIKey)
	req.Header.Set("x-rapidapi-host", c.cfg.Host)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return vinLookupResponse{}, fmt.Errorf("request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return vinLookupResponse{}, fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out vinLookupResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return vinLookupResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
