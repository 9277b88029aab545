// internal/scanner/goble/service.go
package goble

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/pkg/errors"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
)

// DefaultAdapter is the HCI adapter used when none is configured.
const DefaultAdapter = "hci0"

// LE scan timing limits in milliseconds.
const (
	MinScanMs = 20
	MaxScanMs = 10000
)

// Config selects the adapter and LE scan parameters.
type Config struct {
	Adapter         string
	Active          bool
	ScanIntervalMs  int
	ScanWindowMs    int
	AllowDuplicates bool
}

// scanDevice is the part of ble.Device the service needs.
type scanDevice interface {
	Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error
	Stop() error
}

// Service implements scanner.BeaconService on one HCI adapter.
type Service struct {
	mu sync.Mutex

	adapter  string
	dev      scanDevice
	allowDup bool
	now      func() time.Time
}

// New opens the adapter named in cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Adapter == "" {
		cfg.Adapter = DefaultAdapter
	}
	id, err := ParseAdapter(cfg.Adapter)
	if err != nil {
		return nil, err
	}
	dev, err := openDevice(id, ScanParams(cfg))
	if err != nil {
		return nil, errors.Wrapf(err, "goble: open %s", cfg.Adapter)
	}
	return newService(cfg.Adapter, dev, cfg.AllowDuplicates), nil
}

func newService(adapter string, dev scanDevice, allowDup bool) *Service {
	return &Service{
		adapter:  adapter,
		dev:      dev,
		allowDup: allowDup,
		now:      time.Now,
	}
}

// Close releases the adapter.
func (s *Service) Close() error {
	if s == nil || s.dev == nil {
		return nil
	}
	return s.dev.Stop()
}

// Scan listens for interval and returns one advertisement per address,
// the latest heard, sorted by address.
func (s *Service) Scan(ctx context.Context, interval time.Duration) ([]scanner.Advertisement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sctx, cancel := context.WithTimeout(ctx, interval)
	defer cancel()

	var mu sync.Mutex
	seen := make(map[string]scanner.Advertisement)

	err := s.dev.Scan(sctx, s.allowDup, func(a ble.Advertisement) {
		adv := Convert(a, s.now())
		mu.Lock()
		seen[adv.Address] = adv
		mu.Unlock()
	})

	// Parent cancellation wins over whatever the stack reported.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	// Our own deadline expiring is the normal end of a cycle.
	cycleDone := errors.Is(err, context.DeadlineExceeded) && sctx.Err() != nil
	if err != nil && !cycleDone {
		return nil, errors.Wrapf(err, "goble: scan %s", s.adapter)
	}

	mu.Lock()
	defer mu.Unlock()

	out := make([]scanner.Advertisement, 0, len(seen))
	for _, adv := range seen {
		out = append(out, adv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

// Convert copies a stack advertisement into the scanner's model.
func Convert(a ble.Advertisement, at time.Time) scanner.Advertisement {
	adv := scanner.Advertisement{
		Timestamp:   at,
		LocalName:   a.LocalName(),
		RSSI:        a.RSSI(),
		TxPower:     a.TxPowerLevel(),
		Connectable: a.Connectable(),
	}
	if addr := a.Addr(); addr != nil {
		adv.Address = strings.ToLower(addr.String())
	}
	if md := a.ManufacturerData(); len(md) > 0 {
		adv.ManufacturerData = append(scanner.HexBytes(nil), md...)
		adv.IBeacon, _ = scanner.ParseIBeacon(md)
	}
	for _, u := range a.Services() {
		adv.Services = append(adv.Services, u.String())
	}
	return adv
}

// ParseAdapter maps "hciN" to device id N.
func ParseAdapter(name string) (int, error) {
	if !strings.HasPrefix(name, "hci") {
		return 0, errors.Errorf("goble: adapter %q: want hciN", name)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(name, "hci"))
	if err != nil || id < 0 {
		return 0, errors.Errorf("goble: adapter %q: want hciN", name)
	}
	return id, nil
}

// ScanParams builds the HCI LE scan parameters.
// Interval and window are converted to 0.625ms units; zero means MinScanMs.
func ScanParams(cfg Config) cmd.LESetScanParameters {
	var scanType uint8 // 0x00 passive
	if cfg.Active {
		scanType = 0x01
	}
	return cmd.LESetScanParameters{
		LEScanType:           scanType,
		LEScanInterval:       msToUnits(cfg.ScanIntervalMs),
		LEScanWindow:         msToUnits(cfg.ScanWindowMs),
		OwnAddressType:       0x00, // public
		ScanningFilterPolicy: 0x00, // accept all
	}
}

func msToUnits(ms int) uint16 {
	if ms < MinScanMs {
		ms = MinScanMs
	}
	if ms > MaxScanMs {
		ms = MaxScanMs
	}
	return uint16(ms * 1000 / 625)
}
