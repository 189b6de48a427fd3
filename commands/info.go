package commands

import (
	"fmt"

	"github.com/mobile-next/mumucli/devices"
)

// InfoCommand reports the instance details of a MuMu device together with the
// state of its IPC session. An empty deviceID selects the only running
// instance.
func InfoCommand(deviceID string) (*devices.FullDeviceInfo, error) {
	targetDevice, err := FindDeviceOrAutoSelect(deviceID)
	if err != nil {
		return nil, fmt.Errorf("error finding device: %w", err)
	}

	info, err := targetDevice.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read info of device %s: %w", targetDevice.ID(), err)
	}

	return info, nil
}
