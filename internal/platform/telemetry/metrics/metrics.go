package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Decision outcomes recorded by RecordDecision.
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder owns the meter provider and the instruments used by a service.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	provider  *sdkmetric.MeterProvider
	handler   http.Handler
	decisions metric.Int64Counter
	requests  metric.Int64Counter
	latency   metric.Float64Histogram
}

// Setup builds a recorder exporting to a fresh Prometheus registry.
func Setup(ctx context.Context, serviceName string) (*Recorder, error) {
	serviceName = strings.TrimSpace(serviceName)
	if serviceName == "" {
		return nil, fmt.Errorf("service name is required")
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutUnits(),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("build metrics resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	decisions, err := meter.Int64Counter(
		"membership.decisions",
		metric.WithDescription("Membership policy decisions by operation, outcome and reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("create decisions counter: %w", err)
	}
	requests, err := meter.Int64Counter(
		"http.requests",
		metric.WithDescription("Total number of HTTP requests processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	latency, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("create latency histogram: %w", err)
	}

	return &Recorder{
		provider:  provider,
		handler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		decisions: decisions,
		requests:  requests,
		latency:   latency,
	}, nil
}

// Handler returns the Prometheus scrape handler.
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.handler == nil {
		return http.NotFoundHandler()
	}
	return r.handler
}

// RecordDecision counts one membership policy outcome.
func (r *Recorder) RecordDecision(ctx context.Context, operation string, outcome string, reason string) {
	if r == nil || r.decisions == nil {
		return
	}
	r.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
		attribute.String("reason", reason),
	))
}

// Middleware records request counts and latency keyed by the matched route pattern.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, req)

		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", recorder.status),
		)
		r.requests.Add(req.Context(), 1, attrs)
		r.latency.Record(req.Context(), time.Since(start).Seconds(), attrs)
	})
}

// Shutdown flushes and stops the meter provider.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(statusCode int) {
	s.status = statusCode
	s.ResponseWriter.WriteHeader(statusCode)
}
