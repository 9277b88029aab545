// internal/sink/multi.go
package sink

import (
	"errors"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
)

// Multi delivers each result to every sink. A failing sink does not stop the others.
type Multi []Sink

func (m Multi) Write(res scanner.ScanResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
