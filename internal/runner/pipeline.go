// internal/runner/pipeline.go
package runner

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
	"github.com/tamzrod/beacon-scanner/internal/sink"
	"github.com/tamzrod/beacon-scanner/internal/status"
)

// Pipeline owns scanner health and delivers results to the sinks.
// Status writes are delivery only; all health logic lives here.
type Pipeline struct {
	sinks  sink.Multi
	status sink.StatusWriter // nil: status block disabled
	log    zerolog.Logger

	snap status.Snapshot

	// newTicker is swapped in tests.
	newTicker func() (<-chan time.Time, func())
}

// NewPipeline builds a pipeline. sw may be nil.
func NewPipeline(sinks sink.Multi, sw sink.StatusWriter, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		sinks:  sinks,
		status: sw,
		log:    log,
		snap:   status.Snapshot{Health: status.HealthUnknown},
		newTicker: func() (<-chan time.Time, func()) {
			t := time.NewTicker(time.Second)
			return t.C, t.Stop
		},
	}
}

// Snapshot returns the current health snapshot.
// Only safe once Run has returned.
func (p *Pipeline) Snapshot() status.Snapshot { return p.snap }

// Run consumes results until in is closed or ctx ends.
func (p *Pipeline) Run(ctx context.Context, in <-chan scanner.ScanResult) {
	tick, stop := p.newTicker()
	defer stop()

	// Full block write on start (identity re-assert).
	p.writeStatus("start")

	for {
		select {
		case <-ctx.Done():
			return

		case res, ok := <-in:
			if !ok {
				return
			}
			p.deliver(res)

		case <-tick:
			p.tick()
		}
	}
}

func (p *Pipeline) deliver(res scanner.ScanResult) {
	// --- data delivery ---
	if err := p.sinks.Write(res); err != nil {
		p.log.Error().Err(err).Int("cycle", res.Cycle).Msg("sink write failed")
	}

	// --- health ---
	p.snap.CycleCount++ // wraps at 65536

	if res.Err == nil {
		p.snap.Health = status.HealthOK
		p.snap.LastErrorCode = status.ErrorCodeNone
		p.snap.SecondsInError = 0
		p.snap.LastAdvertisements = saturate(len(res.Advertisements))
	} else {
		p.snap.Health = status.HealthError
		p.snap.LastErrorCode = status.ErrorCode(res.Err)
		p.snap.LastAdvertisements = 0
		// seconds_in_error increments on the 1 Hz tick only
	}

	p.writeStatus("cycle")
}

// tick runs at 1 Hz and counts seconds while not OK.
func (p *Pipeline) tick() {
	if p.snap.Health == status.HealthOK {
		return
	}
	if p.snap.SecondsInError == 65535 {
		return
	}
	p.snap.SecondsInError++
	p.writeStatus("tick")
}

func (p *Pipeline) writeStatus(when string) {
	if p.status == nil {
		return
	}
	if err := p.status.WriteStatus(p.snap); err != nil {
		p.log.Warn().Err(err).Str("on", when).Msg("status write failed")
	}
}

func saturate(n int) uint16 {
	if n > 65535 {
		return 65535
	}
	return uint16(n)
}
