// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
	"github.com/tamzrod/beacon-scanner/internal/status"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report yaml key names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	// ------------------------------------------------------------
	// SCANNER TIMING
	// ------------------------------------------------------------

	if cfg.Scanner.Timeout.Set {
		if err := scanner.ValidateTimeout(cfg.Scanner.Timeout.Seconds); err != nil {
			return scoped("scanner", err)
		}
	}
	if err := scanner.ValidateRevisit(int(cfg.Scanner.Revisit)); err != nil {
		return scoped("scanner", err)
	}

	// ------------------------------------------------------------
	// DECLARATIVE FIELD RULES
	// ------------------------------------------------------------

	if err := validate.Struct(cfg); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			return &scanner.FieldError{
				Field: trimRoot(fe.Namespace()),
				Kind:  scanner.ErrInvalidValue,
				Msg:   fmt.Sprintf("value %v fails %q", fe.Value(), ruleName(fe)),
			}
		}
		return err
	}

	if cfg.Device.ScanWindowMs > cfg.Device.ScanIntervalMs {
		return &scanner.FieldError{
			Field: "device.scan_window_ms",
			Kind:  scanner.ErrInvalidValue,
			Msg: fmt.Sprintf(
				"window %dms exceeds interval %dms",
				cfg.Device.ScanWindowMs,
				cfg.Device.ScanIntervalMs,
			),
		}
	}

	if cfg.Modbus != nil {
		if err := validateModbus(cfg.Modbus); err != nil {
			return err
		}
	}

	return nil
}

// validateModbus checks register geometry of the beacon table and status block.
func validateModbus(m *ModbusConfig) error {
	type span struct {
		start int
		end   int // inclusive
		owner string
	}

	// key = unit id
	spans := make(map[uint8][]span)

	claim := func(unitID uint8, s span) error {
		if s.end > 0xFFFF {
			return &scanner.FieldError{
				Field: "modbus",
				Kind:  scanner.ErrInvalidValue,
				Msg:   fmt.Sprintf("%s range %d-%d exceeds register space", s.owner, s.start, s.end),
			}
		}
		for _, prev := range spans[unitID] {
			// overlap check (inclusive)
			if !(s.end < prev.start || s.start > prev.end) {
				return &scanner.FieldError{
					Field: "modbus",
					Kind:  scanner.ErrInvalidValue,
					Msg: fmt.Sprintf(
						"register overlap: unit_id=%d %s range=%d-%d overlaps %s range=%d-%d",
						unitID, s.owner, s.start, s.end, prev.owner, prev.start, prev.end,
					),
				}
			}
		}
		spans[unitID] = append(spans[unitID], s)
		return nil
	}

	seen := make(map[string]bool)
	for i, b := range m.Beacons {
		addr := strings.ToLower(b.Address)
		if seen[addr] {
			return &scanner.FieldError{
				Field: fmt.Sprintf("modbus.beacons[%d].address", i),
				Kind:  scanner.ErrInvalidValue,
				Msg:   fmt.Sprintf("duplicate address %s", b.Address),
			}
		}
		seen[addr] = true

		start := int(b.Slot) * status.BeaconSlots
		if err := claim(m.UnitID, span{
			start: start,
			end:   start + status.BeaconSlots - 1,
			owner: "beacon " + addr,
		}); err != nil {
			return err
		}
	}

	// status is opt-in
	if m.Status != nil {
		start := int(m.Status.Slot) * status.SlotsPerDevice
		if err := claim(m.Status.UnitID, span{
			start: start,
			end:   start + status.SlotsPerDevice - 1,
			owner: "status block",
		}); err != nil {
			return err
		}
	}

	return nil
}

func scoped(prefix string, err error) error {
	var fe *scanner.FieldError
	if errors.As(err, &fe) {
		return &scanner.FieldError{Field: prefix + "." + fe.Field, Kind: fe.Kind, Msg: fe.Msg}
	}
	return err
}

// trimRoot drops the top-level struct name from a validator namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func ruleName(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
