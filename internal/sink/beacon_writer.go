// internal/sink/beacon_writer.go
package sink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
	"github.com/tamzrod/beacon-scanner/internal/status"
)

// BeaconWriter mirrors configured beacons into a Modbus register table.
// Each beacon owns status.BeaconSlots registers at slot*status.BeaconSlots.
type BeaconWriter struct {
	plan  Plan
	cli   endpointClient
	state map[string]status.BeaconState
}

func NewBeaconWriter(plan Plan, cli endpointClient) *BeaconWriter {
	return &BeaconWriter{
		plan:  plan,
		cli:   cli,
		state: make(map[string]status.BeaconState, len(plan.Beacons)),
	}
}

// Write updates every configured beacon from one scan cycle.
// Failed cycles are skipped: presence is unknown, not absent.
func (w *BeaconWriter) Write(res scanner.ScanResult) error {
	if res.Err != nil {
		return nil
	}
	if w.cli == nil {
		return fmt.Errorf("beacon writer: missing client for endpoint %s", w.plan.Endpoint)
	}

	heard := make(map[string]scanner.Advertisement, len(res.Advertisements))
	for _, a := range res.Advertisements {
		heard[strings.ToLower(a.Address)] = a
	}

	var errs []string

	for _, b := range w.plan.Beacons {
		st := w.state[b.Address]

		if a, ok := heard[b.Address]; ok {
			st.Present = true
			st.RSSI = a.RSSI
			st.MissedCycles = 0
			if a.IBeacon != nil {
				st.Major = a.IBeacon.Major
				st.Minor = a.IBeacon.Minor
			} else {
				st.Major, st.Minor = 0, 0
			}
		} else {
			st.Present = false
			// HARD INVARIANT: missed cycles MUST NOT wrap
			if st.MissedCycles < 0xFFFF {
				st.MissedCycles++
			}
		}
		w.state[b.Address] = st

		addr := b.Slot * status.BeaconSlots
		if err := w.cli.WriteRegisters(w.plan.UnitID, addr, status.EncodeBeacon(st)); err != nil {
			errs = append(errs, fmt.Sprintf(
				"beacon writer: ep=%s unit=%d addr=%d beacon=%s err=%v",
				w.plan.Endpoint, w.plan.UnitID, addr, b.Address, err,
			))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}

// State returns the last state written for address.
func (w *BeaconWriter) State(address string) (status.BeaconState, bool) {
	st, ok := w.state[strings.ToLower(address)]
	return st, ok
}
