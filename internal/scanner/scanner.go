// internal/scanner/scanner.go
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler receives every scan cycle in order.
// A non-nil error stops the scan.
type Handler func(res ScanResult) error

// Option configures a Scanner at construction.
type Option func(*Scanner) error

// WithTimeout bounds the scan to the given number of seconds.
func WithTimeout(seconds float64) Option {
	return func(s *Scanner) error { return s.SetTimeout(seconds) }
}

// WithRevisit sets the scan cycle length in whole seconds.
func WithRevisit(seconds int) Option {
	return func(s *Scanner) error { return s.SetRevisit(seconds) }
}

// WithFilter drops advertisements that do not match f.
func WithFilter(f Filter) Option {
	return func(s *Scanner) error {
		s.filter = f
		return nil
	}
}

// WithTolerateErrors keeps scanning after a failed cycle.
// The failure is delivered to the handler in ScanResult.Err.
func WithTolerateErrors(on bool) Option {
	return func(s *Scanner) error {
		s.tolerateErrors = on
		return nil
	}
}

// WithLogger sets the scanner logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) error {
		s.log = l
		return nil
	}
}

// Scanner drives a BeaconService in a cycle loop.
// It is not safe for concurrent Scan calls.
type Scanner struct {
	svc BeaconService

	timeout time.Duration // zero: no timeout
	revisit time.Duration

	filter         Filter
	tolerateErrors bool

	log zerolog.Logger
	now func() time.Time
}

// New creates a scanner over svc. Options are validated in order.
func New(svc BeaconService, opts ...Option) (*Scanner, error) {
	if svc == nil {
		return nil, errors.New("scanner: beacon service required")
	}
	s := &Scanner{
		svc:     svc,
		revisit: DefaultRevisitSeconds * time.Second,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Timeout returns the configured timeout and whether one is set.
func (s *Scanner) Timeout() (time.Duration, bool) {
	return s.timeout, s.timeout > 0
}

// SetTimeout sets the timeout in seconds, in (0, MaxTimeoutSeconds].
func (s *Scanner) SetTimeout(seconds float64) error {
	if err := ValidateTimeout(seconds); err != nil {
		return err
	}
	s.timeout = time.Duration(seconds * float64(time.Second))
	if s.timeout <= 0 {
		// sub-nanosecond: keep it set, zero means no timeout
		s.timeout = time.Nanosecond
	}
	return nil
}

// ClearTimeout removes the timeout. Scan then runs until its context ends.
func (s *Scanner) ClearTimeout() {
	s.timeout = 0
}

// Revisit returns the scan cycle length.
func (s *Scanner) Revisit() time.Duration {
	return s.revisit
}

// SetRevisit sets the scan cycle length in whole seconds.
func (s *Scanner) SetRevisit(seconds int) error {
	if err := ValidateRevisit(seconds); err != nil {
		return err
	}
	s.revisit = time.Duration(seconds) * time.Second
	return nil
}

// ScanOnce performs exactly one scan cycle.
func (s *Scanner) ScanOnce(ctx context.Context) ScanResult {
	return s.scanOnce(ctx, "", 1)
}

func (s *Scanner) scanOnce(ctx context.Context, session string, cycle int) ScanResult {
	res := ScanResult{
		Session: session,
		Cycle:   cycle,
		At:      s.now(),
	}

	ads, err := s.svc.Scan(ctx, s.revisit)
	res.Duration = s.now().Sub(res.At)
	if err != nil {
		res.Err = err
		return res
	}

	res.Advertisements = s.filter.Apply(ads)
	return res
}

// Scan runs scan cycles until the timeout elapses or ctx ends.
//
// The timeout is checked after each cycle returns, so a scan lasts at least
// one full cycle and may overrun the timeout by up to one revisit interval.
// Without a timeout only ctx stops the loop; the returned error is then
// ctx.Err().
func (s *Scanner) Scan(ctx context.Context, h Handler) (Summary, error) {
	sum := Summary{Session: uuid.NewString()}
	start := s.now()

	log := s.log.With().Str("session", sum.Session).Logger()
	ev := log.Info().Dur("revisit", s.revisit)
	if s.timeout > 0 {
		ev = ev.Dur("timeout", s.timeout)
	}
	ev.Msg("scan started")

	finish := func(err error) (Summary, error) {
		sum.Elapsed = s.now().Sub(start)
		log.Info().
			Int("cycles", sum.Cycles).
			Int("advertisements", sum.Advertisements).
			Dur("elapsed", sum.Elapsed).
			Msg("scan finished")
		return sum, err
	}

	for cycle := 1; ; cycle++ {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		res := s.scanOnce(ctx, sum.Session, cycle)
		sum.Cycles++

		if res.Err != nil {
			if err := ctx.Err(); err != nil {
				return finish(err)
			}
			if !s.tolerateErrors {
				return finish(fmt.Errorf("scanner: cycle %d: %w", cycle, res.Err))
			}
			log.Warn().Err(res.Err).Int("cycle", cycle).Msg("scan cycle failed")
		}

		sum.Advertisements += len(res.Advertisements)
		log.Debug().
			Int("cycle", cycle).
			Int("advertisements", len(res.Advertisements)).
			Dur("duration", res.Duration).
			Msg("scan cycle done")

		if h != nil {
			if err := h(res); err != nil {
				return finish(fmt.Errorf("scanner: handler: %w", err))
			}
		}

		// A failed service usually returns at once; wait out the cycle
		// so a dead adapter is not hammered.
		if res.Err != nil && res.Duration < s.revisit {
			if err := sleep(ctx, s.revisit-res.Duration); err != nil {
				return finish(err)
			}
		}

		if s.timeout > 0 && s.now().Sub(start) > s.timeout {
			return finish(nil)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
