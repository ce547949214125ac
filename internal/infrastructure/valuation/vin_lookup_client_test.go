package valuation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/valuation"
	"github.com/Nathan-Yinka/autochek-API/pkg/testutil"
)

const camryResponse = `{
	"uid": "jr-42",
	"retail_value": 4000.4,
	"loan_value": 3333,
	"make": "Toyota",
	"model": "Camry",
	"year": 2020,
	"trim": "LE",
	"engine": "2.5L I4",
	"transmission": "Automatic",
	"fuel_type": "Gasoline"
}`

func enabledConfig(baseURL string) valuation.VINLookupConfig {
	cfg := valuation.DefaultVINLookupConfig()
	cfg.Enabled = true
	cfg.APIKey = "secret"
	cfg.BaseURL = baseURL
	return cfg
}

func TestVINLookupClient_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vehicle-lookup", r.URL.Path)
		assert.Equal(t, testutil.TestVIN, r.URL.Query().Get("vin"))
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "vin-lookup2.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(camryResponse))
	}))
	defer srv.Close()

	client := valuation.NewVINLookupClient(enabledConfig(srv.URL), srv.Client(), nil)
	got, err := client.FetchValuation(context.Background(), model.VehicleSnapshot{VIN: testutil.TestVIN})
	require.NoError(t, err)

	// 4000.4 * 1500 = 6000600, 3333 * 1500 = 4999500
	testutil.AssertDecimal(t, "6000600", got.RetailValue)
	testutil.AssertDecimal(t, "4999500", got.LoanValue)
	assert.Equal(t, valuation.VINLookupSource, got.Source)
	assert.Equal(t, "jr-42", got.ProviderRef)
	assert.Equal(t, "Toyota", got.Make)
	assert.Equal(t, 2020, got.Year)
	assert.Equal(t, "Gasoline", got.FuelType)
	assert.Equal(t, "NGN", got.Currency)
}

func TestVINLookupClient_RoundsConvertedValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"uid":"x","retail_value":10.3333,"loan_value":9.5}`))
	}))
	defer srv.Close()

	cfg := enabledConfig(srv.URL)
	cfg.USDToNGNRate = decimal.NewFromInt(3)
	got, err := valuation.NewVINLookupClient(cfg, srv.Client(), nil).
		FetchValuation(context.Background(), model.VehicleSnapshot{VIN: testutil.TestVIN})
	require.NoError(t, err)

	testutil.AssertDecimal(t, "31", got.RetailValue)
	testutil.AssertDecimal(t, "29", got.LoanValue)
}

func TestVINLookupClient_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		mutate  func(*valuation.VINLookupConfig)
		noCalls bool
	}{
		{name: "disabled", mutate: func(c *valuation.VINLookupConfig) { c.Enabled = false }, noCalls: true},
		{name: "missing key", mutate: func(c *valuation.VINLookupConfig) { c.APIKey = "" }, noCalls: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"boom"}`},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`},
		{name: "zero retail value", status: http.StatusOK, body: `{"uid":"x","retail_value":0,"loan_value":100}`},
		{name: "missing loan value", status: http.StatusOK, body: `{"uid":"x","retail_value":100}`},
		{name: "malformed body", status: http.StatusOK, body: `{"uid":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cfg := enabledConfig(srv.URL)
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			_, err := valuation.NewVINLookupClient(cfg, srv.Client(), nil).
				FetchValuation(context.Background(), model.VehicleSnapshot{VIN: testutil.TestVIN})

			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
			if tt.noCalls {
				assert.Zero(t, calls.Load())
			}
		})
	}
}

func TestVINLookupConfig_Configured(t *testing.T) {
	cfg := valuation.DefaultVINLookupConfig()
	assert.False(t, cfg.Configured())

	cfg.Enabled = true
	assert.False(t, cfg.Configured())

	cfg.APIKey = "k"
	assert.True(t, cfg.Configured())
}
