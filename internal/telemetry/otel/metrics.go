package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// HTTPInstruments holds the tracer and request instruments used by the HTTP middleware.
type HTTPInstruments struct {
	Tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHTTPInstruments creates the request counter and latency histogram from the global
// MeterProvider and a tracer from the global TracerProvider. Call after Providers.SetGlobal.
func NewHTTPInstruments() (*HTTPInstruments, error) {
	meter := otel.GetMeterProvider().Meter(instrumentationName)
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests served"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &HTTPInstruments{
		Tracer:   otel.GetTracerProvider().Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}, nil
}

// Record adds one request observation. route is the matched route pattern, not the raw path.
func (h *HTTPInstruments) Record(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if h == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	h.requests.Add(ctx, 1, attrs)
	h.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}
