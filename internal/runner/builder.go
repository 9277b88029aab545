// internal/runner/builder.go
package runner

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/tamzrod/beacon-scanner/internal/config"
	"github.com/tamzrod/beacon-scanner/internal/metrics"
	"github.com/tamzrod/beacon-scanner/internal/scanner"
	"github.com/tamzrod/beacon-scanner/internal/scanner/goble"
	"github.com/tamzrod/beacon-scanner/internal/sink"
)

// Build opens the adapter and wires scanner, sinks and pipeline.
// Assumes config has already passed Validate and Normalize.
func Build(cfg *config.Config, stdout io.Writer, log zerolog.Logger) (*Runner, error) {
	svc, err := goble.New(goble.Config{
		Adapter:         cfg.Device.Adapter,
		Active:          cfg.Device.ScanType == "active",
		ScanIntervalMs:  cfg.Device.ScanIntervalMs,
		ScanWindowMs:    cfg.Device.ScanWindowMs,
		AllowDuplicates: cfg.Scanner.AllowDuplicates,
	})
	if err != nil {
		return nil, err
	}

	r, err := build(cfg, svc, stdout, log, sink.BuildModbus)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	r.closers = append([]func() error{svc.Close}, r.closers...)
	return r, nil
}

// ScannerOptions maps the scanner section onto scanner options.
func ScannerOptions(sc config.ScannerConfig, log zerolog.Logger) []scanner.Option {
	opts := []scanner.Option{
		scanner.WithRevisit(int(sc.Revisit)),
		scanner.WithFilter(sc.Filters.Filter()),
		scanner.WithTolerateErrors(sc.TolerateErrors),
		scanner.WithLogger(log),
	}
	if sc.Timeout.Set {
		opts = append(opts, scanner.WithTimeout(sc.Timeout.Seconds))
	}
	return opts
}

type modbusBuilder func(m *config.ModbusConfig) (*sink.Modbus, error)

func build(
	cfg *config.Config,
	svc scanner.BeaconService,
	stdout io.Writer,
	log zerolog.Logger,
	buildModbus modbusBuilder,
) (*Runner, error) {
	sc, err := scanner.New(svc, ScannerOptions(cfg.Scanner, log)...)
	if err != nil {
		return nil, err
	}

	r := &Runner{Scanner: sc, Log: log}

	// ---- sinks ----
	var sinks sink.Multi

	if cfg.Output.Format != "none" {
		out, err := sink.NewStdout(stdout, cfg.Output.Format)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, out)
	}

	if cfg.Metrics.Listen != "" {
		m := metrics.New()
		sinks = append(sinks, m)
		r.Metrics = m
		r.MetricsListen = cfg.Metrics.Listen
	}

	var sw sink.StatusWriter
	if cfg.Modbus != nil {
		mb, err := buildModbus(cfg.Modbus)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, mb.Beacons)
		sw = mb.Status
		if mb.Close != nil {
			r.closers = append(r.closers, mb.Close)
		}
	}

	r.Pipeline = NewPipeline(sinks, sw, log)
	return r, nil
}
