package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics bridges OpenTelemetry instruments into the given Prometheus
// registerer and returns the MeterProvider plus the /metrics handler.
// A nil registry uses the Prometheus default registry.
func InitMetrics(registry *prometheus.Registry) (*sdkmetric.MeterProvider, http.Handler, error) {
	var (
		exporterOpts []promexporter.Option
		handler      http.Handler
	)
	if registry != nil {
		exporterOpts = append(exporterOpts, promexporter.WithRegisterer(registry))
		handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	} else {
		handler = promhttp.Handler()
	}

	exporter, err := promexporter.New(exporterOpts...)
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return provider, handler, nil
}
