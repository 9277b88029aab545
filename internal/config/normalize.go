// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/tamzrod/beacon-scanner/internal/status"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// Addresses are matched lower-case everywhere downstream.
	for i, a := range cfg.Scanner.Filters.Addresses {
		cfg.Scanner.Filters.Addresses[i] = strings.ToLower(a)
	}

	if cfg.Modbus == nil {
		return
	}

	for i := range cfg.Modbus.Beacons {
		b := &cfg.Modbus.Beacons[i]
		b.Address = strings.ToLower(b.Address)
	}

	// ------------------------------------------------------------
	// STATUS BLOCK NORMALIZATION (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Modbus.Status == nil {
		return
	}

	// device_name is already validated as printable ASCII
	if len(cfg.Modbus.Status.DeviceName) > status.DeviceNameMaxChars {
		cfg.Modbus.Status.DeviceName = cfg.Modbus.Status.DeviceName[:status.DeviceNameMaxChars]
	}
}
