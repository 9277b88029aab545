//go:build linux

// internal/scanner/goble/device_linux.go
package goble

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/cmd"
)

func openDevice(id int, params cmd.LESetScanParameters) (scanDevice, error) {
	d, err := linux.NewDevice(
		ble.OptDeviceID(id),
		ble.OptScanParams(params),
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}
