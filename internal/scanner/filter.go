// internal/scanner/filter.go
package scanner

import "strings"

// Filter selects advertisements. Every set criterion must match.
// The zero Filter matches everything.
type Filter struct {
	Addresses      []string
	NamePrefix     string
	MinRSSI        *int
	ManufacturerID *uint16
	IBeaconOnly    bool
}

// Empty reports whether the filter has no criteria.
func (f Filter) Empty() bool {
	return len(f.Addresses) == 0 &&
		f.NamePrefix == "" &&
		f.MinRSSI == nil &&
		f.ManufacturerID == nil &&
		!f.IBeaconOnly
}

// Match reports whether a passes the filter.
func (f Filter) Match(a Advertisement) bool {
	if len(f.Addresses) > 0 {
		found := false
		for _, addr := range f.Addresses {
			if strings.EqualFold(addr, a.Address) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.NamePrefix != "" && !strings.HasPrefix(a.LocalName, f.NamePrefix) {
		return false
	}
	if f.MinRSSI != nil && a.RSSI < *f.MinRSSI {
		return false
	}
	if f.ManufacturerID != nil {
		if len(a.ManufacturerData) < 2 || companyID(a.ManufacturerData) != *f.ManufacturerID {
			return false
		}
	}
	if f.IBeaconOnly && a.IBeacon == nil {
		return false
	}
	return true
}

// Apply returns the advertisements that match, preserving order.
func (f Filter) Apply(ads []Advertisement) []Advertisement {
	if f.Empty() {
		return ads
	}
	out := make([]Advertisement, 0, len(ads))
	for _, a := range ads {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
