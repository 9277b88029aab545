// internal/sink/builder.go
package sink

import (
	"errors"
	"strings"
	"time"

	cfg "github.com/tamzrod/beacon-scanner/internal/config"
	smodbus "github.com/tamzrod/beacon-scanner/internal/sink/modbus"
)

// BuildPlan converts the modbus config section into a write Plan.
// Assumes config has already passed Validate.
func BuildPlan(m *cfg.ModbusConfig) (Plan, error) {
	if m == nil {
		return Plan{}, errors.New("sink: modbus config required")
	}

	plan := Plan{
		Endpoint: m.Endpoint,
		UnitID:   m.UnitID,
	}

	for _, b := range m.Beacons {
		plan.Beacons = append(plan.Beacons, BeaconSlot{
			Address: strings.ToLower(b.Address),
			Slot:    b.Slot,
		})
	}

	if m.Status != nil {
		plan.Status = &StatusPlan{
			UnitID:     m.Status.UnitID,
			BaseSlot:   m.Status.Slot,
			DeviceName: m.Status.DeviceName,
		}
	}

	return plan, nil
}

// Modbus bundles the writers sharing one endpoint connection.
type Modbus struct {
	Beacons *BeaconWriter

	// Status is nil when the status block is disabled.
	Status StatusWriter

	Close func() error
}

// BuildModbus connects to the endpoint and wires beacon and status writers.
func BuildModbus(m *cfg.ModbusConfig) (*Modbus, error) {
	plan, err := BuildPlan(m)
	if err != nil {
		return nil, err
	}

	cli, err := smodbus.NewEndpointClient(smodbus.Config{
		Endpoint: plan.Endpoint,
		Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	return newModbus(plan, cli, cli.Close), nil
}

func newModbus(plan Plan, cli endpointClient, closeFn func() error) *Modbus {
	out := &Modbus{
		Beacons: NewBeaconWriter(plan, cli),
		Close:   closeFn,
	}
	if sw, ok := NewDeviceStatusWriter(plan, cli); ok {
		out.Status = sw
	}
	return out
}
