// internal/sink/status_writer_test.go
package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/beacon-scanner/internal/status"
)

func statusPlan() Plan {
	return Plan{
		Endpoint: "status-endpoint",
		Status: &StatusPlan{
			UnitID:     1,
			BaseSlot:   2,
			DeviceName: "SCAN-01",
		},
	}
}

func TestStatusWriter_Disabled(t *testing.T) {
	_, enabled := NewDeviceStatusWriter(Plan{}, &fakeEndpointClient{})
	assert.False(t, enabled)
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()

	sw, enabled := NewDeviceStatusWriter(plan, cli)
	require.True(t, enabled)

	// ---- first write: FULL ASSERT ----
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthOK}))

	require.Len(t, cli.lastRegs, status.SlotsPerDevice)
	assert.Equal(t, uint16(2*status.SlotsPerDevice), cli.lastRegsAddr)

	expectedNameRegs := status.EncodeDeviceName(plan.Status.DeviceName)
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		assert.Equal(t, expectedNameRegs[i], cli.lastRegs[status.SlotDeviceNameStart+i], "name slot %d", i)
	}

	// ---- second write: INCREMENTAL ONLY ----
	require.NoError(t, sw.WriteStatus(status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  7,
		SecondsInError: 1,
	}))

	// three changed slots, one register each
	require.Len(t, cli.writes, 4)
	for _, w := range cli.writes[1:] {
		assert.Len(t, w.regs, 1)
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()

	sw, _ := NewDeviceStatusWriter(plan, cli)

	require.NoError(t, sw.WriteStatus(status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  42,
		SecondsInError: 3,
	}))

	// recovery: health, error code and seconds all change
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthOK}))

	expectedAddr := plan.Status.BaseSlot*status.SlotsPerDevice + status.SlotSecondsInError
	assert.Equal(t, expectedAddr, cli.lastRegsAddr)
	require.Len(t, cli.lastRegs, 1)
	assert.Equal(t, uint16(0), cli.lastRegs[0])
}

func TestStatusWriter_UnchangedWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), cli)

	snap := status.Snapshot{Health: status.HealthOK, CycleCount: 5}
	require.NoError(t, sw.WriteStatus(snap))
	require.NoError(t, sw.WriteStatus(snap))
	assert.Len(t, cli.writes, 1)
}

func TestStatusWriter_FailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), cli)

	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthOK}))

	cli.fail = errors.New("broken pipe")
	require.Error(t, sw.WriteStatus(status.Snapshot{Health: status.HealthError}))

	cli.fail = nil
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthError}))
	assert.Len(t, cli.lastRegs, status.SlotsPerDevice)
}

func TestStatusWriter_MissingClient(t *testing.T) {
	sw, _ := NewDeviceStatusWriter(statusPlan(), nil)
	require.Error(t, sw.WriteStatus(status.Snapshot{}))
}
