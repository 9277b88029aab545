// internal/scanner/types.go
package scanner

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"
)

// BeaconService is the platform scan primitive.
// Scan listens for interval (or until ctx ends) and returns what it heard.
type BeaconService interface {
	Scan(ctx context.Context, interval time.Duration) ([]Advertisement, error)
}

// HexBytes renders as a hex string in JSON output.
type HexBytes []byte

func (b HexBytes) String() string { return hex.EncodeToString(b) }

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

// Advertisement is one report heard during a scan cycle.
// The BLE stack owns the wire format; this is a plain copy.
type Advertisement struct {
	Address          string    `json:"address"`
	Timestamp        time.Time `json:"timestamp"`
	LocalName        string    `json:"local_name,omitempty"`
	RSSI             int       `json:"rssi"`
	TxPower          int       `json:"tx_power"`
	Connectable      bool      `json:"connectable"`
	ManufacturerData HexBytes  `json:"manufacturer_data,omitempty"`
	Services         []string  `json:"services,omitempty"`
	IBeacon          *IBeacon  `json:"ibeacon,omitempty"`
}

// ScanResult is produced by one scan cycle.
type ScanResult struct {
	Session        string          `json:"session"`
	Cycle          int             `json:"cycle"`
	At             time.Time       `json:"at"`
	Duration       time.Duration   `json:"duration"`
	Advertisements []Advertisement `json:"advertisements"`
	Err            error           `json:"-"` // non-nil means the cycle failed
}

// Summary describes a finished scan.
type Summary struct {
	Session        string
	Cycles         int
	Advertisements int
	Elapsed        time.Duration
}
