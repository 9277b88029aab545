// internal/scanner/scanner_test.go
package scanner

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

// fakeClock advances only when the fake service scans.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

type fakeService struct {
	clock *fakeClock
	calls int

	ads []Advertisement

	// failAt makes the given call (1-based) return an error.
	failAt int

	// onCall runs after every call, before returning.
	onCall func(n int)

	intervals []time.Duration
}

func (f *fakeService) Scan(ctx context.Context, interval time.Duration) ([]Advertisement, error) {
	f.calls++
	f.intervals = append(f.intervals, interval)
	if f.clock != nil {
		f.clock.t = f.clock.t.Add(interval)
	}
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	if f.calls == f.failAt {
		return nil, errors.New("adapter gone")
	}
	return f.ads, nil
}

// sleepingService blocks for the interval like a real adapter.
type sleepingService struct{}

func (sleepingService) Scan(ctx context.Context, interval time.Duration) ([]Advertisement, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(interval):
		return nil, nil
	}
}

func newTestScanner(t *testing.T, svc *fakeService, opts ...Option) *Scanner {
	t.Helper()
	s, err := New(svc, opts...)
	require.NoError(t, err)
	if svc.clock != nil {
		s.now = svc.clock.now
	}
	return s
}

// ---- configuration ----

func TestNew_Defaults(t *testing.T) {
	s, err := New(&fakeService{})
	require.NoError(t, err)

	_, set := s.Timeout()
	assert.False(t, set)
	assert.Equal(t, time.Second, s.Revisit())
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestSetTimeout_Rejected(t *testing.T) {
	cases := []float64{0, -1, -0.5, 600.001, 601, 1e9, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, v := range cases {
		_, err := New(&fakeService{}, WithTimeout(v))
		require.Error(t, err, "timeout=%v", v)
		assert.ErrorIs(t, err, ErrInvalidValue, "timeout=%v", v)

		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "timeout", fe.Field)
	}
}

func TestSetTimeout_Accepted(t *testing.T) {
	for _, v := range []float64{0.001, 1, 1.5, 599.9, 600} {
		s, err := New(&fakeService{}, WithTimeout(v))
		require.NoError(t, err, "timeout=%v", v)

		d, set := s.Timeout()
		assert.True(t, set)
		assert.Equal(t, time.Duration(v*float64(time.Second)), d)
	}
}

func TestSetTimeout_SubNanosecondStaysSet(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	svc := &fakeService{clock: clock}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.onCall = func(n int) {
		if n == 100 {
			cancel()
		}
	}

	s := newTestScanner(t, svc, WithTimeout(1e-10))
	d, set := s.Timeout()
	require.True(t, set)
	assert.Equal(t, time.Nanosecond, d)

	sum, err := s.Scan(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Cycles)
}

func TestSetTimeout_RejectedKeepsPrevious(t *testing.T) {
	s, err := New(&fakeService{}, WithTimeout(10))
	require.NoError(t, err)

	require.Error(t, s.SetTimeout(-3))
	d, _ := s.Timeout()
	assert.Equal(t, 10*time.Second, d)

	s.ClearTimeout()
	_, set := s.Timeout()
	assert.False(t, set)
}

func TestSetRevisit(t *testing.T) {
	for _, v := range []int{0, -1, math.MinInt32} {
		_, err := New(&fakeService{}, WithRevisit(v))
		assert.ErrorIs(t, err, ErrInvalidValue, "revisit=%d", v)
	}

	s, err := New(&fakeService{}, WithRevisit(5))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, s.Revisit())
}

func TestSetRevisit_DurationOverflow(t *testing.T) {
	limit := MaxRevisitSeconds

	_, err := New(&fakeService{}, WithRevisit(int(limit+1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidValue)

	s, err := New(&fakeService{}, WithRevisit(int(limit)))
	require.NoError(t, err)
	assert.Positive(t, s.Revisit())
}

// ---- scanning ----

func TestScan_StopsAfterTimeout(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	svc := &fakeService{clock: clock, ads: []Advertisement{{Address: "aa:bb:cc:dd:ee:ff"}}}
	s := newTestScanner(t, svc, WithTimeout(1), WithRevisit(1))

	var results []ScanResult
	sum, err := s.Scan(context.Background(), func(res ScanResult) error {
		results = append(results, res)
		return nil
	})
	require.NoError(t, err)

	// elapsed must exceed the timeout: 1s after cycle 1 is not enough
	assert.Equal(t, 2, sum.Cycles)
	assert.Equal(t, 2*time.Second, sum.Elapsed)
	assert.Equal(t, 2, sum.Advertisements)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Cycle)
	assert.Equal(t, 2, results[1].Cycle)
	assert.Equal(t, sum.Session, results[0].Session)
	assert.NotEmpty(t, sum.Session)

	for _, iv := range svc.intervals {
		assert.Equal(t, time.Second, iv)
	}
}

func TestScan_RealTimeBounded(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time scan")
	}
	s, err := New(sleepingService{}, WithTimeout(1), WithRevisit(1))
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Scan(context.Background(), nil)
	require.NoError(t, err)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, time.Second)
	assert.Less(t, elapsed, 2500*time.Millisecond)
}

func TestScan_NoTimeoutRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := &fakeClock{t: time.Unix(0, 0)}
	svc := &fakeService{clock: clock}
	svc.onCall = func(n int) {
		if n == 50 {
			cancel()
		}
	}
	s := newTestScanner(t, svc)

	sum, err := s.Scan(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 50, sum.Cycles)
	assert.Equal(t, 50*time.Second, sum.Elapsed)
}

func TestScan_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := &fakeService{}
	s := newTestScanner(t, svc)

	sum, err := s.Scan(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Cycles)
	assert.Zero(t, svc.calls)
}

func TestScan_ServiceErrorStops(t *testing.T) {
	svc := &fakeService{clock: &fakeClock{}, failAt: 3}
	s := newTestScanner(t, svc)

	calls := 0
	sum, err := s.Scan(context.Background(), func(ScanResult) error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle 3")
	assert.Equal(t, 3, sum.Cycles)
	assert.Equal(t, 2, calls)
}

func TestScan_TolerateErrorsContinues(t *testing.T) {
	svc := &fakeService{clock: &fakeClock{}, failAt: 2}
	s := newTestScanner(t, svc, WithTimeout(3), WithTolerateErrors(true))

	var failed []int
	sum, err := s.Scan(context.Background(), func(res ScanResult) error {
		if res.Err != nil {
			failed = append(failed, res.Cycle)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, failed)
	assert.Equal(t, 4, sum.Cycles)
}

func TestScan_HandlerErrorStops(t *testing.T) {
	svc := &fakeService{clock: &fakeClock{}}
	s := newTestScanner(t, svc)

	boom := errors.New("sink full")
	sum, err := s.Scan(context.Background(), func(ScanResult) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, sum.Cycles)
}

func TestScan_AppliesFilter(t *testing.T) {
	minRSSI := -70
	svc := &fakeService{
		clock: &fakeClock{},
		ads: []Advertisement{
			{Address: "aa:aa:aa:aa:aa:aa", RSSI: -50},
			{Address: "bb:bb:bb:bb:bb:bb", RSSI: -90},
		},
	}
	s := newTestScanner(t, svc, WithTimeout(0.5), WithFilter(Filter{MinRSSI: &minRSSI}))

	res := s.ScanOnce(context.Background())
	require.NoError(t, res.Err)
	require.Len(t, res.Advertisements, 1)
	assert.Equal(t, "aa:aa:aa:aa:aa:aa", res.Advertisements[0].Address)
	assert.Equal(t, time.Second, res.Duration)
}
