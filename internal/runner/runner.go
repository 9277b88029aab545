// internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
)

// metricsServer is the part of metrics.Metrics the runner drives.
type metricsServer interface {
	Serve(ctx context.Context, listen string) error
}

// Runner connects the scanner to the pipeline.
type Runner struct {
	Scanner  *scanner.Scanner
	Pipeline *Pipeline

	Metrics       metricsServer // nil: no exposition endpoint
	MetricsListen string

	Log zerolog.Logger

	closers []func() error
}

// Run scans until the timeout elapses or ctx ends.
// Results are handed to the pipeline over an unbuffered channel.
func (r *Runner) Run(ctx context.Context) (scanner.Summary, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	if r.Metrics != nil && r.MetricsListen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Log.Info().Str("listen", r.MetricsListen).Msg("metrics endpoint up")
			if err := r.Metrics.Serve(runCtx, r.MetricsListen); err != nil {
				r.Log.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	out := make(chan scanner.ScanResult)

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Pipeline.Run(runCtx, out)
	}()

	sum, err := r.Scanner.Scan(runCtx, func(res scanner.ScanResult) error {
		select {
		case out <- res:
			return nil
		case <-runCtx.Done():
			return runCtx.Err()
		}
	})

	close(out)
	cancel()
	wg.Wait()

	return sum, err
}

// Close releases the adapter and sink connections.
func (r *Runner) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Stopped reports whether err is a normal end of a scan: nil or a
// cancelled context.
func Stopped(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
