//go:build !linux

// internal/scanner/goble/device_other.go
package goble

import (
	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/pkg/errors"
)

func openDevice(id int, params cmd.LESetScanParameters) (scanDevice, error) {
	return nil, errors.New("goble: HCI scanning is only supported on linux")
}
