// internal/status/beacon.go
package status

// Beacon table layout. Each configured beacon owns BeaconSlots registers
// starting at slot*BeaconSlots.

// BeaconSlots is the fixed number of registers per beacon.
const BeaconSlots = 8

const (
	// BeaconPresent is 1 if the beacon was heard in the last cycle.
	BeaconPresent = 0
	// BeaconRSSI is the last RSSI as a two's complement int16.
	BeaconRSSI = 1
	// BeaconMissedCycles counts consecutive cycles without the beacon, saturating.
	BeaconMissedCycles = 2
	// BeaconMajor is the last iBeacon major, 0 if not an iBeacon.
	BeaconMajor = 3
	// BeaconMinor is the last iBeacon minor, 0 if not an iBeacon.
	BeaconMinor = 4
)

// BeaconState is what the sink keeps per configured beacon.
type BeaconState struct {
	Present      bool
	RSSI         int
	MissedCycles uint16
	Major        uint16
	Minor        uint16
}

// EncodeBeacon converts a BeaconState into its register block.
func EncodeBeacon(b BeaconState) []uint16 {
	regs := make([]uint16, BeaconSlots)
	if b.Present {
		regs[BeaconPresent] = 1
	}
	regs[BeaconRSSI] = uint16(int16(b.RSSI))
	regs[BeaconMissedCycles] = b.MissedCycles
	regs[BeaconMajor] = b.Major
	regs[BeaconMinor] = b.Minor
	return regs
}
