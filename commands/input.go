package commands

import (
	"fmt"
	"time"

	"github.com/mobile-next/mumucli/devices/nemu"
)

// TapRequest represents the parameters for a tap command
type TapRequest struct {
	DeviceID string `json:"deviceId"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// ButtonRequest represents the parameters for a button press command
type ButtonRequest struct {
	DeviceID string `json:"deviceId"`
	Button   string `json:"button"`
}

// KeyRequest sends a raw key code
type KeyRequest struct {
	DeviceID string `json:"deviceId"`
	Code     int    `json:"code"`
}

// GestureRequest is a multi-segment drag that keeps the finger down between
// points. Durations are per segment, in milliseconds.
type GestureRequest struct {
	DeviceID  string       `json:"deviceId"`
	Points    []nemu.Point `json:"points"`
	Durations []int        `json:"durations"`
}

// SwipeRequest represents the parameters for a swipe command
type SwipeRequest struct {
	DeviceID   string `json:"deviceId"`
	X1         int    `json:"x1"`
	Y1         int    `json:"y1"`
	X2         int    `json:"x2"`
	Y2         int    `json:"y2"`
	DurationMs int    `json:"durationMs,omitempty"`
}

// TapCommand performs a tap operation on the specified device
func TapCommand(req TapRequest) *CommandResponse {
	if req.X < 0 || req.Y < 0 {
		return NewErrorResponse(fmt.Errorf("x and y coordinates must be non-negative, got x=%d, y=%d", req.X, req.Y))
	}

	targetDevice, err := FindDeviceOrAutoSelect(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %v", err))
	}

	err = targetDevice.Tap(req.X, req.Y)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to tap on device %s: %v", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Tapped on device %s at (%d,%d)", targetDevice.ID(), req.X, req.Y),
	})
}

// ButtonCommand presses a hardware button on the specified device
func ButtonCommand(req ButtonRequest) *CommandResponse {
	if req.Button == "" {
		return NewErrorResponse(fmt.Errorf("button name is required"))
	}

	targetDevice, err := FindDeviceOrAutoSelect(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %v", err))
	}

	err = targetDevice.PressButton(req.Button)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to press button on device %s: %v", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Pressed button '%s' on device %s", req.Button, targetDevice.ID()),
	})
}

// KeyCommand sends a raw key code to the specified device
func KeyCommand(req KeyRequest) *CommandResponse {
	if req.Code < 0 {
		return NewErrorResponse(fmt.Errorf("key code must be non-negative, got %d", req.Code))
	}

	targetDevice, err := FindDeviceOrAutoSelect(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %v", err))
	}

	err = targetDevice.SendKey(req.Code)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to send key %d to device %s: %v", req.Code, targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Sent key %d to device %s", req.Code, targetDevice.ID()),
	})
}

// BackCommand presses back on the specified device
func BackCommand(deviceID string) *CommandResponse {
	return ButtonCommand(ButtonRequest{DeviceID: deviceID, Button: "back"})
}

// GestureCommand performs a multi-point drag on the specified device
func GestureCommand(req GestureRequest) *CommandResponse {
	if len(req.Points) < 2 {
		return NewErrorResponse(fmt.Errorf("points array needs at least 2 points, got %d", len(req.Points)))
	}
	if len(req.Durations) != len(req.Points)-1 {
		return NewErrorResponse(fmt.Errorf("durations array needs %d entries for %d points, got %d", len(req.Points)-1, len(req.Points), len(req.Durations)))
	}

	targetDevice, err := FindDeviceOrAutoSelect(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %v", err))
	}

	durations := make([]time.Duration, len(req.Durations))
	for i, ms := range req.Durations {
		durations[i] = time.Duration(ms) * time.Millisecond
	}

	err = targetDevice.Gesture(req.Points, durations)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to perform gesture on device %s: %v", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Performed gesture on device %s through %d points", targetDevice.ID(), len(req.Points)),
	})
}

// SwipeCommand performs a swipe operation on the specified device
func SwipeCommand(req SwipeRequest) *CommandResponse {
	if req.DurationMs < 0 {
		return NewErrorResponse(fmt.Errorf("duration must be non-negative, got %d", req.DurationMs))
	}

	targetDevice, err := FindDeviceOrAutoSelect(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %v", err))
	}

	duration := time.Duration(req.DurationMs) * time.Millisecond
	err = targetDevice.Swipe(req.X1, req.Y1, req.X2, req.Y2, duration)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to swipe on device %s: %v", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Swiped on device %s from (%d,%d) to (%d,%d)", targetDevice.ID(), req.X1, req.Y1, req.X2, req.Y2),
	})
}
