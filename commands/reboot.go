package commands

import (
	"fmt"
)

// RebootRequest represents the parameters for a reboot command
type RebootRequest struct {
	DeviceID string `json:"deviceId"`
}

// RebootCommand restarts the emulator through MuMuManager and waits for it
func RebootCommand(req RebootRequest) *CommandResponse {
	targetDevice, err := FindDeviceOrAutoSelect(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %v", err))
	}

	err = targetDevice.Reboot()
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to reboot device %s: %v", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Reboot command processed for device %s", targetDevice.ID()),
	})
}

// ResetRequest represents the parameters for a reset command
type ResetRequest struct {
	DeviceID string `json:"deviceId"`
}

// ResetCommand drops the IPC session of a device so the next call reconnects
func ResetCommand(req ResetRequest) *CommandResponse {
	targetDevice, err := FindDeviceOrAutoSelect(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %v", err))
	}

	err = targetDevice.Reset()
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to reset device %s: %v", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("IPC session of device %s reset", targetDevice.ID()),
	})
}
