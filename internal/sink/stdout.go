// internal/sink/stdout.go
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
)

// Output formats.
const (
	FormatRaw  = "raw"
	FormatJSON = "json"
)

// Stdout prints scan results to a writer, one line per advertisement (raw)
// or one JSON object per cycle (json).
type Stdout struct {
	mu     sync.Mutex
	w      io.Writer
	format string
}

func NewStdout(w io.Writer, format string) (*Stdout, error) {
	switch format {
	case FormatRaw, FormatJSON:
	default:
		return nil, fmt.Errorf("stdout sink: unknown format %q", format)
	}
	return &Stdout{w: w, format: format}, nil
}

func (s *Stdout) Write(res scanner.ScanResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatJSON {
		return s.writeJSON(res)
	}
	return s.writeRaw(res)
}

type jsonResult struct {
	scanner.ScanResult
	Error string `json:"error,omitempty"`
}

func (s *Stdout) writeJSON(res scanner.ScanResult) error {
	out := jsonResult{ScanResult: res}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	if out.Advertisements == nil {
		out.Advertisements = []scanner.Advertisement{}
	}
	return json.NewEncoder(s.w).Encode(out)
}

func (s *Stdout) writeRaw(res scanner.ScanResult) error {
	if res.Err != nil {
		_, err := fmt.Fprintf(s.w, "%s cycle=%d scan error: %v\n",
			res.At.UTC().Format(time.RFC3339), res.Cycle, res.Err)
		return err
	}
	for _, a := range res.Advertisements {
		if _, err := io.WriteString(s.w, FormatAdvertisement(a)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// FormatAdvertisement renders one advertisement as a single raw line.
func FormatAdvertisement(a scanner.Advertisement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s rssi=%d", a.Timestamp.UTC().Format(time.RFC3339Nano), a.Address, a.RSSI)
	if a.LocalName != "" {
		fmt.Fprintf(&b, " name=%q", a.LocalName)
	}
	if len(a.ManufacturerData) > 0 {
		fmt.Fprintf(&b, " mfg=%s", a.ManufacturerData)
	}
	if len(a.Services) > 0 {
		fmt.Fprintf(&b, " services=%s", strings.Join(a.Services, ","))
	}
	if ib := a.IBeacon; ib != nil {
		fmt.Fprintf(&b, " ibeacon=%s major=%d minor=%d power=%d", ib.UUID, ib.Major, ib.Minor, ib.MeasuredPower)
	}

	return b.String()
}
