// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/events"
)

var (
	previewCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapsies_previews_total",
			Help: "Total number of preview computations",
		},
		[]string{"status"},
	)
	previewDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swapsies_preview_duration_seconds",
			Help:    "Duration of quote fetch plus cost computation",
			Buckets: prometheus.LinearBuckets(0, 0.1, 10),
		},
	)
	severityCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapsies_preview_severity_total",
			Help: "Preview results by cost severity",
		},
		[]string{"severity"},
	)
	quoteFetchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapsies_quote_fetches_total",
			Help: "Total number of aggregator quote fetches",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(previewCounter)
	prometheus.MustRegister(previewDuration)
	prometheus.MustRegister(severityCounter)
	prometheus.MustRegister(quoteFetchCounter)
}

// RecordQuoteFetch counts an aggregator round trip by outcome.
func RecordQuoteFetch(status string) {
	quoteFetchCounter.WithLabelValues(status).Inc()
}

// Attach subscribes metric recording to preview lifecycle events.
func Attach(bus *events.Bus) []events.Subscription {
	return []events.Subscription{
		bus.SubscribeFunc(events.PreviewReady, func(ctx context.Context, e events.Event) error {
			ev, ok := e.(events.PreviewReadyEvent)
			if !ok {
				return nil
			}
			previewCounter.WithLabelValues("success").Inc()
			previewDuration.Observe(ev.Elapsed.Seconds())
			if ev.Severity != "" {
				severityCounter.WithLabelValues(ev.Severity).Inc()
			}
			return nil
		}),
		bus.SubscribeFunc(events.PreviewFailed, func(ctx context.Context, e events.Event) error {
			previewCounter.WithLabelValues("failed").Inc()
			return nil
		}),
	}
}

// Serve exposes /metrics until the context is canceled. An empty addr
// disables the listener.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("📊 Metrics listener started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
