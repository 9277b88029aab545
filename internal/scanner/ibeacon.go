// internal/scanner/ibeacon.go
package scanner

import (
	"encoding/binary"

	"github.com/google/uuid"
)

const (
	appleCompanyID uint16 = 0x004C

	ibeaconType   byte = 0x02
	ibeaconLength byte = 0x15

	// company id (2) + type (1) + length (1) + payload (21)
	ibeaconDataLen = 25
)

// IBeacon is the decoded Apple iBeacon payload.
type IBeacon struct {
	UUID          string `json:"uuid"`
	Major         uint16 `json:"major"`
	Minor         uint16 `json:"minor"`
	MeasuredPower int8   `json:"measured_power"`
}

// ParseIBeacon decodes manufacturer data that carries an iBeacon frame.
//
// Layout:
//	0-1   company id 0x004C (little endian)
//	2     type 0x02
//	3     length 0x15
//	4-19  proximity uuid
//	20-21 major (big endian)
//	22-23 minor (big endian)
//	24    measured power at 1m
func ParseIBeacon(md []byte) (*IBeacon, bool) {
	if len(md) != ibeaconDataLen {
		return nil, false
	}
	if companyID(md) != appleCompanyID || md[2] != ibeaconType || md[3] != ibeaconLength {
		return nil, false
	}
	u, err := uuid.FromBytes(md[4:20])
	if err != nil {
		return nil, false
	}
	return &IBeacon{
		UUID:          u.String(),
		Major:         binary.BigEndian.Uint16(md[20:22]),
		Minor:         binary.BigEndian.Uint16(md[22:24]),
		MeasuredPower: int8(md[24]),
	}, true
}

// companyID reads the Bluetooth SIG company identifier heading manufacturer data.
func companyID(md []byte) uint16 {
	if len(md) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(md[0:2])
}
