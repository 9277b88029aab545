// internal/config/config.go
package config

import "github.com/tamzrod/beacon-scanner/internal/scanner"

type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	Device  DeviceConfig  `yaml:"device"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Modbus  *ModbusConfig `yaml:"modbus" validate:"omitempty"`
}

// ---- SCANNER ----

type ScannerConfig struct {
	Timeout         Timeout      `yaml:"timeout"`
	Revisit         Revisit      `yaml:"revisit"`
	AllowDuplicates bool         `yaml:"allow_duplicates"`
	TolerateErrors  bool         `yaml:"tolerate_errors"`
	Filters         FilterConfig `yaml:"filters"`
}

type FilterConfig struct {
	Addresses      []string `yaml:"addresses" validate:"dive,mac"`
	NamePrefix     string   `yaml:"name_prefix"`
	MinRSSI        *int     `yaml:"min_rssi" validate:"omitempty,min=-127,max=20"`
	ManufacturerID *uint16  `yaml:"manufacturer_id"`
	IBeaconOnly    bool     `yaml:"ibeacon_only"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Adapter        string `yaml:"adapter" validate:"required,startswith=hci"`
	ScanType       string `yaml:"scan_type" validate:"oneof=passive active"`
	ScanIntervalMs int    `yaml:"scan_interval_ms" validate:"min=20,max=10000"`
	ScanWindowMs   int    `yaml:"scan_window_ms" validate:"min=20,max=10000"`
}

// ---- OUTPUT / LOG / METRICS ----

type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=raw json none"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
}

// ---- MODBUS SINK ----

type ModbusConfig struct {
	Endpoint  string             `yaml:"endpoint" validate:"required,hostname_port"`
	UnitID    uint8              `yaml:"unit_id"`
	TimeoutMs int                `yaml:"timeout_ms" validate:"gte=0"`
	Beacons   []BeaconSlotConfig `yaml:"beacons" validate:"dive"`
	Status    *StatusConfig      `yaml:"status" validate:"omitempty"`
}

// BeaconSlotConfig pins one beacon address to a register slot.
type BeaconSlotConfig struct {
	Address string `yaml:"address" validate:"required,mac"`
	Slot    uint16 `yaml:"slot"`
}

// StatusConfig enables the scanner status block (opt-in).
type StatusConfig struct {
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name" validate:"omitempty,printascii"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Revisit: scanner.DefaultRevisitSeconds,
		},
		Device: DeviceConfig{
			Adapter:        "hci0",
			ScanType:       "active",
			ScanIntervalMs: 100,
			ScanWindowMs:   100,
		},
		Output: OutputConfig{Format: "raw"},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Filter converts the filter section into a scanner filter.
func (f FilterConfig) Filter() scanner.Filter {
	return scanner.Filter{
		Addresses:      f.Addresses,
		NamePrefix:     f.NamePrefix,
		MinRSSI:        f.MinRSSI,
		ManufacturerID: f.ManufacturerID,
		IBeaconOnly:    f.IBeaconOnly,
	}
}
