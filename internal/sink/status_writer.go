// internal/sink/status_writer.go
package sink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/beacon-scanner/internal/status"
)

// StatusWriter is the delivery-only contract for scanner status.
// It receives a snapshot and writes it verbatim.
// No logic, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter writes the status block over Modbus.
type deviceStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// live slots compared for incremental writes
var liveSlots = []struct {
	slot int
	name string
}{
	{status.SlotHealthCode, "health"},
	{status.SlotLastErrorCode, "last_error"},
	{status.SlotSecondsInError, "seconds_in_error"},
	{status.SlotCycleCount, "cycle_count"},
	{status.SlotLastAdvertisements, "last_advertisements"},
}

// NewDeviceStatusWriter builds a status writer if the status block is enabled.
// If plan.Status is nil, status is disabled.
func NewDeviceStatusWriter(plan Plan, cli endpointClient) (StatusWriter, bool) {
	if plan.Status == nil {
		return nil, false
	}

	return &deviceStatusWriter{
		plan:     plan.Status,
		cli:      cli,
		needFull: true, // full re-assert on first write
		last:     status.Snapshot{Health: status.HealthUnknown},
		nameRegs: status.EncodeDeviceName(plan.Status.DeviceName),
	}, true
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return errors.New("status writer: missing client")
	}

	base := sw.baseAddr()
	unitID := sw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(unitID, base, sw.fullBlockRegs(s)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: only slots that changed
	// ------------------------------------------------------------
	want := status.Encode(s)
	have := status.Encode(sw.last)

	var errs []string
	for _, ls := range liveSlots {
		if want[ls.slot] == have[ls.slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(
			unitID,
			base+uint16(ls.slot),
			[]uint16{want[ls.slot]},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", ls.slot, ls.name, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next call.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each block owns a fixed SlotsPerDevice range.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)

	// Reserved slots stay zero; the device name lives at the end of the block.
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)

	return regs
}
