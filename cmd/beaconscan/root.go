// cmd/beaconscan/root.go
package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tamzrod/beacon-scanner/internal/config"
	"github.com/tamzrod/beacon-scanner/internal/logging"
	"github.com/tamzrod/beacon-scanner/internal/runner"
)

type options struct {
	configPath string
	timeout    float64
	revisit    int
	adapter    string
	format     string
	logLevel   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "beaconscan",
		Short: "Scan for BLE beacons and print what is heard",
		Long: `beaconscan scans for Bluetooth LE advertisements on one HCI adapter in
fixed-length cycles and prints the results to stdout.

Without --timeout it scans until interrupted. Results can also be mirrored to
a Modbus TCP register table and exposed as Prometheus metrics (see --config).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML config file (defaults apply when empty)")
	f.Float64VarP(&o.timeout, "timeout", "t", 0, "stop after this many seconds, at most 600 (default: run until interrupted)")
	f.IntVarP(&o.revisit, "revisit", "r", 0, "scan cycle length in whole seconds (default 1)")
	f.StringVarP(&o.adapter, "adapter", "a", "", "HCI adapter, e.g. hci0")
	f.StringVarP(&o.format, "format", "f", "", "stdout format: raw, json or none")
	f.StringVar(&o.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")

	return cmd
}

// loadConfig reads the config file, applies explicitly set flags on top,
// then validates and normalizes the result.
func loadConfig(cmd *cobra.Command, o options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("timeout") {
		cfg.Scanner.Timeout = config.Seconds(o.timeout)
	}
	if f.Changed("revisit") {
		cfg.Scanner.Revisit = config.Revisit(o.revisit)
	}
	if f.Changed("adapter") {
		cfg.Device.Adapter = o.adapter
	}
	if f.Changed("format") {
		cfg.Output.Format = o.format
	}
	if f.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	log, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := runner.Build(cfg, stdout, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}()

	sum, err := r.Run(ctx)
	if !runner.Stopped(err) {
		return err
	}

	log.Info().
		Str("session", sum.Session).
		Int("cycles", sum.Cycles).
		Int("advertisements", sum.Advertisements).
		Dur("elapsed", sum.Elapsed).
		Msg("done")
	return nil
}
