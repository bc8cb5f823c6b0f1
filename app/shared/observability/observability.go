// Package observability bootstraps the logger, prometheus registry and otel
// tracer the modules share. Exporter wiring (OTLP endpoints, scrape targets)
// is a deployment concern; the engine only emits.
package observability

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config selects what the observability stack reports itself as.
type Config struct {
	ServiceName    string
	Environment    string
	Version        string
	MetricsAddress string
}

// Observability bundles the shared telemetry handles.
type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Tracer   trace.Tracer

	metricsServer *http.Server
}

// Init builds the logger, registry and tracer and, when MetricsAddress is
// set, starts the /metrics endpoint.
func Init(ctx context.Context, cfg Config) (*Observability, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("version", cfg.Version),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := &Observability{
		Logger:   logger,
		Registry: registry,
		Tracer:   otel.GetTracerProvider().Tracer(cfg.ServiceName),
	}

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		obs.metricsServer = &http.Server{Addr: cfg.MetricsAddress, Handler: mux}

		go func() {
			if err := obs.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	return obs, nil
}

// Close shuts down the metrics endpoint.
func (o *Observability) Close(ctx context.Context) error {
	if o.metricsServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.metricsServer.Shutdown(shutdownCtx)
}
