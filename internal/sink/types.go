// internal/sink/types.go
package sink

import "github.com/tamzrod/beacon-scanner/internal/scanner"

// Sink receives every scan cycle.
type Sink interface {
	Write(res scanner.ScanResult) error
}

// BeaconSlot pins one beacon address to a register slot.
type BeaconSlot struct {
	Address string
	Slot    uint16
}

// StatusPlan places the scanner status block.
type StatusPlan struct {
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built Modbus write plan.
type Plan struct {
	Endpoint string
	UnitID   uint8
	Beacons  []BeaconSlot
	Status   *StatusPlan // nil: status block disabled
}

// endpointClient is the exact contract the Modbus writers use.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
