package kickdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes, used as the outcome label and the outcome log attribute.
const (
	outcomeOK          = "ok"
	outcomeRejected    = "rejected"
	outcomeServerError = "server_error"
	outcomeCanceled    = "canceled"
	outcomeTransport   = "transport_error"
)

// outcome buckets a call result: 4xx answers are rejections, 5xx answers are server errors and
// anything without an answer is a transport failure.
func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &apiErr):
		if apiErr.Status >= 500 {
			return outcomeServerError
		}
		return outcomeRejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	}
	return outcomeTransport
}

type clientMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kickdex",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Calls made by the kickdex client, by operation and outcome.",
	}, []string{"operation", "outcome"}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kickdex",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Round-trip time of kickdex client calls.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	return &clientMetrics{requests: requests, latency: latency}, nil
}

// register adds c to reg. When an equal collector is already registered, the existing one is returned
// so several clients can report into one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("kickdex: register client metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("kickdex: client metric registered as %T", dup.ExistingCollector)
	}
	return existing, nil
}

// observer reports each client call. Both the logger and the metrics are optional.
type observer struct {
	log     *slog.Logger
	metrics *clientMetrics
}

func newObserver(log *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{log: log}
	if reg == nil {
		return o, nil
	}
	m, err := newClientMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

func (o *observer) observe(ctx context.Context, op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	out := outcome(err)

	if o.metrics != nil {
		o.metrics.requests.WithLabelValues(op, out).Inc()
		o.metrics.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.log == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("operation", op),
		slog.String("outcome", out),
		slog.Duration("elapsed", elapsed),
	}
	if err == nil {
		o.log.LogAttrs(ctx, slog.LevelDebug, "kickdex call done", attrs...)
		return
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs, slog.Int("status", apiErr.Status), slog.String("code", apiErr.Code))
	}
	attrs = append(attrs, slog.Any("error", err))
	o.log.LogAttrs(ctx, slog.LevelWarn, "kickdex call failed", attrs...)
}
