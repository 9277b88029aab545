// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
)

const namespace = "beacon_scanner"

// Metrics is a sink that records scan cycles as Prometheus collectors.
type Metrics struct {
	reg *prometheus.Registry

	cycles         prometheus.Counter
	scanErrors     prometheus.Counter
	advertisements prometheus.Counter
	lastSeen       prometheus.Gauge
	rssi           *prometheus.GaugeVec
	cycleDuration  prometheus.Histogram
}

// New registers the scanner collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Scan cycles completed, failed ones included.",
		}),
		scanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_errors_total",
			Help:      "Scan cycles that failed.",
		}),
		advertisements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advertisements_total",
			Help:      "Advertisements that passed the filters.",
		}),
		lastSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_advertisements",
			Help:      "Advertisements in the most recent successful cycle.",
		}),
		rssi: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rssi_dbm",
			Help:      "Last RSSI heard per address.",
		}, []string{"address"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock length of scan cycles.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
	}

	m.reg.MustRegister(
		m.cycles,
		m.scanErrors,
		m.advertisements,
		m.lastSeen,
		m.rssi,
		m.cycleDuration,
	)
	return m
}

// Registry exposes the collectors, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Write implements sink.Sink.
func (m *Metrics) Write(res scanner.ScanResult) error {
	m.cycles.Inc()
	m.cycleDuration.Observe(res.Duration.Seconds())

	if res.Err != nil {
		m.scanErrors.Inc()
		return nil
	}

	m.advertisements.Add(float64(len(res.Advertisements)))
	m.lastSeen.Set(float64(len(res.Advertisements)))
	for _, a := range res.Advertisements {
		m.rssi.WithLabelValues(a.Address).Set(float64(a.RSSI))
	}
	return nil
}

// Serve exposes /metrics on listen until ctx ends.
func (m *Metrics) Serve(ctx context.Context, listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
