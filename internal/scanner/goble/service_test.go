// internal/scanner/goble/service_test.go
package goble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake advertisement ----

type fakeAdv struct {
	addr     string
	name     string
	rssi     int
	md       []byte
	services []ble.UUID
}

func (a fakeAdv) LocalName() string { return a.name }
func (a fakeAdv) ManufacturerData() []byte { return a.md }
func (a fakeAdv) ServiceData() []ble.ServiceData { return nil }
func (a fakeAdv) Services() []ble.UUID { return a.services }
func (a fakeAdv) OverflowService() []ble.UUID { return nil }
func (a fakeAdv) TxPowerLevel() int { return -4 }
func (a fakeAdv) Connectable() bool { return true }
func (a fakeAdv) SolicitedService() []ble.UUID { return nil }
func (a fakeAdv) RSSI() int { return a.rssi }
func (a fakeAdv) Addr() ble.Addr { return ble.NewAddr(a.addr) }

// ---- fake device ----

type fakeDevice struct {
	reports  []ble.Advertisement
	err      error
	allowDup bool
	stopped  bool
}

func (d *fakeDevice) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	d.allowDup = allowDup
	if d.err != nil {
		return d.err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, r := range d.reports {
			h(r)
		}
	}()
	<-done
	<-ctx.Done()
	return ctx.Err()
}

func (d *fakeDevice) Stop() error {
	d.stopped = true
	return nil
}

func ibeaconData() []byte {
	md := []byte{0x4c, 0x00, 0x02, 0x15}
	md = append(md, make([]byte, 16)...)
	md[4] = 0x01
	return append(md, 0x00, 0x01, 0x00, 0x02, 0xc5)
}

// ---- tests ----

func TestScan_DedupesAndSorts(t *testing.T) {
	dev := &fakeDevice{reports: []ble.Advertisement{
		fakeAdv{addr: "CC:CC:CC:CC:CC:CC", rssi: -70},
		fakeAdv{addr: "aa:aa:aa:aa:aa:aa", rssi: -80, name: "first"},
		fakeAdv{addr: "AA:AA:AA:AA:AA:AA", rssi: -60, name: "second"},
	}}
	svc := newService("hci0", dev, true)

	ads, err := svc.Scan(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, ads, 2)

	assert.Equal(t, "aa:aa:aa:aa:aa:aa", ads[0].Address)
	assert.Equal(t, "second", ads[0].LocalName)
	assert.Equal(t, -60, ads[0].RSSI)
	assert.Equal(t, "cc:cc:cc:cc:cc:cc", ads[1].Address)
	assert.True(t, dev.allowDup)
}

func TestScan_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newService("hci0", &fakeDevice{}, false)
	_, err := svc.Scan(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScan_DeviceError(t *testing.T) {
	boom := errors.New("hci: command disallowed")
	svc := newService("hci1", &fakeDevice{err: boom}, false)

	_, err := svc.Scan(context.Background(), time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "hci1")
}

func TestScan_EarlyDeadlineFromDevice(t *testing.T) {
	svc := newService("hci0", &fakeDevice{err: context.DeadlineExceeded}, false)

	_, err := svc.Scan(context.Background(), time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "goble: scan hci0")
}

func TestClose_StopsDevice(t *testing.T) {
	dev := &fakeDevice{}
	require.NoError(t, newService("hci0", dev, false).Close())
	assert.True(t, dev.stopped)
}

func TestConvert(t *testing.T) {
	at := time.Unix(1700000000, 0)
	a := fakeAdv{
		addr:     "11:22:33:44:55:66",
		name:     "beacon",
		rssi:     -42,
		md:       ibeaconData(),
		services: []ble.UUID{ble.UUID16(0x180f)},
	}

	adv := Convert(a, at)
	assert.Equal(t, "11:22:33:44:55:66", adv.Address)
	assert.Equal(t, at, adv.Timestamp)
	assert.Equal(t, -4, adv.TxPower)
	assert.True(t, adv.Connectable)
	assert.Equal(t, []string{ble.UUID16(0x180f).String()}, adv.Services)
	require.NotNil(t, adv.IBeacon)
	assert.Equal(t, uint16(1), adv.IBeacon.Major)
	assert.Equal(t, uint16(2), adv.IBeacon.Minor)

	// the copy must not alias the stack buffer
	a.md[5] = 0xff
	assert.NotEqual(t, byte(0xff), adv.ManufacturerData[5])
}

func TestParseAdapter(t *testing.T) {
	id, err := ParseAdapter("hci0")
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	id, err = ParseAdapter("hci3")
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	for _, bad := range []string{"", "hci", "hcix", "usb0", "hci-1"} {
		_, err := ParseAdapter(bad)
		assert.Error(t, err, bad)
	}
}

func TestScanParams(t *testing.T) {
	p := ScanParams(Config{Active: true, ScanIntervalMs: 100, ScanWindowMs: 20})
	assert.Equal(t, uint8(0x01), p.LEScanType)
	assert.Equal(t, uint16(160), p.LEScanInterval)
	assert.Equal(t, uint16(32), p.LEScanWindow)

	p = ScanParams(Config{ScanIntervalMs: 0, ScanWindowMs: 20000})
	assert.Equal(t, uint8(0x00), p.LEScanType)
	assert.Equal(t, uint16(32), p.LEScanInterval)
	assert.Equal(t, uint16(16000), p.LEScanWindow)
}
