package server

import (
	"encoding/json"
	"fmt"

	"github.com/mobile-next/mumucli/commands"
	"github.com/mobile-next/mumucli/devices/nemu"
)

// ScreenshotParams represents the parameters for the screenshot request
type ScreenshotParams struct {
	DeviceID string `json:"deviceId"`
	Format   string `json:"format,omitempty"`  // "png" or "jpeg"
	Quality  int    `json:"quality,omitempty"` // 1-100, only used for JPEG
}

type DevicesParams struct {
	ShowAll *bool `json:"showAll,omitempty"`
}

type IoTapParams struct {
	DeviceID string `json:"deviceId"`
	X        *int   `json:"x"`
	Y        *int   `json:"y"`
}

type IoSwipeParams struct {
	DeviceID   string `json:"deviceId"`
	X1         *int   `json:"x1"`
	Y1         *int   `json:"y1"`
	X2         *int   `json:"x2"`
	Y2         *int   `json:"y2"`
	DurationMs int    `json:"durationMs,omitempty"`
}

type IoGestureParams struct {
	DeviceID  string       `json:"deviceId"`
	Points    []nemu.Point `json:"points"`
	Durations []int        `json:"durations"`
}

type IoButtonParams struct {
	DeviceID string `json:"deviceId"`
	Button   string `json:"button"`
}

type IoKeyParams struct {
	DeviceID string `json:"deviceId"`
	Code     *int   `json:"code"`
}

// DeviceParams is shared by the methods that only take a device.
type DeviceParams struct {
	DeviceID string `json:"deviceId"`
}

func handleDevicesList(params json.RawMessage) (interface{}, error) {
	// server shows all devices unless asked otherwise
	showAll := true
	if len(params) > 0 {
		var devicesParams DevicesParams
		if err := json.Unmarshal(params, &devicesParams); err != nil {
			return nil, fmt.Errorf("invalid parameters: %v", err)
		}
		if devicesParams.ShowAll != nil {
			showAll = *devicesParams.ShowAll
		}
	}

	return responseData(commands.DevicesCommand(showAll))
}

func handleScreenshot(params json.RawMessage) (interface{}, error) {
	var screenshotParams ScreenshotParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &screenshotParams); err != nil {
			return nil, fmt.Errorf("invalid parameters: %v", err)
		}
	}

	req := commands.ScreenshotRequest{
		DeviceID:   screenshotParams.DeviceID,
		Format:     screenshotParams.Format,
		Quality:    screenshotParams.Quality,
		OutputPath: "-", // Always return base64 data for server
	}

	response := commands.ScreenshotCommand(req)
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}

	// Convert the response data to the expected server format
	if screenshotResp, ok := response.Data.(commands.ScreenshotResponse); ok {
		return map[string]interface{}{
			"format": screenshotResp.Format,
			"data":   fmt.Sprintf("data:image/%s;base64,%s", screenshotResp.Format, screenshotResp.Data),
		}, nil
	}

	return nil, fmt.Errorf("unexpected response format")
}

func handleIoTap(params json.RawMessage) (interface{}, error) {
	var p IoTapParams
	if err := unmarshalParams(params, &p, "deviceId, x, y"); err != nil {
		return nil, err
	}
	if p.X == nil || p.Y == nil {
		return nil, fmt.Errorf("'x' and 'y' are required")
	}

	return responseOK(commands.TapCommand(commands.TapRequest{
		DeviceID: p.DeviceID,
		X:        *p.X,
		Y:        *p.Y,
	}))
}

func handleIoSwipe(params json.RawMessage) (interface{}, error) {
	var p IoSwipeParams
	if err := unmarshalParams(params, &p, "deviceId, x1, y1, x2, y2"); err != nil {
		return nil, err
	}

	for name, v := range map[string]*int{"x1": p.X1, "y1": p.Y1, "x2": p.X2, "y2": p.Y2} {
		if v == nil {
			return nil, fmt.Errorf("'%s' is required", name)
		}
	}

	return responseOK(commands.SwipeCommand(commands.SwipeRequest{
		DeviceID:   p.DeviceID,
		X1:         *p.X1,
		Y1:         *p.Y1,
		X2:         *p.X2,
		Y2:         *p.Y2,
		DurationMs: p.DurationMs,
	}))
}

func handleIoGesture(params json.RawMessage) (interface{}, error) {
	var p IoGestureParams
	if err := unmarshalParams(params, &p, "deviceId, points, durations"); err != nil {
		return nil, err
	}

	return responseOK(commands.GestureCommand(commands.GestureRequest{
		DeviceID:  p.DeviceID,
		Points:    p.Points,
		Durations: p.Durations,
	}))
}

func handleIoButton(params json.RawMessage) (interface{}, error) {
	var p IoButtonParams
	if err := unmarshalParams(params, &p, "deviceId, button"); err != nil {
		return nil, err
	}

	return responseOK(commands.ButtonCommand(commands.ButtonRequest{
		DeviceID: p.DeviceID,
		Button:   p.Button,
	}))
}

func handleIoKey(params json.RawMessage) (interface{}, error) {
	var p IoKeyParams
	if err := unmarshalParams(params, &p, "deviceId, code"); err != nil {
		return nil, err
	}
	if p.Code == nil {
		return nil, fmt.Errorf("'code' is required")
	}

	return responseOK(commands.KeyCommand(commands.KeyRequest{
		DeviceID: p.DeviceID,
		Code:     *p.Code,
	}))
}

func handleIoBack(params json.RawMessage) (interface{}, error) {
	var p DeviceParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %v", err)
		}
	}

	return responseOK(commands.BackCommand(p.DeviceID))
}

func handleDeviceInfo(params json.RawMessage) (interface{}, error) {
	var p DeviceParams
	if err := unmarshalParams(params, &p, "deviceId"); err != nil {
		return nil, err
	}

	info, err := commands.InfoCommand(p.DeviceID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"device": info}, nil
}

func handleDeviceBoot(params json.RawMessage) (interface{}, error) {
	var p DeviceParams
	if err := unmarshalParams(params, &p, "deviceId"); err != nil {
		return nil, err
	}

	return responseData(commands.BootCommand(commands.BootRequest{DeviceID: p.DeviceID}))
}

func handleDeviceShutdown(params json.RawMessage) (interface{}, error) {
	var p DeviceParams
	if err := unmarshalParams(params, &p, "deviceId"); err != nil {
		return nil, err
	}

	return responseData(commands.ShutdownCommand(commands.ShutdownRequest{DeviceID: p.DeviceID}))
}

func handleDeviceReboot(params json.RawMessage) (interface{}, error) {
	var p DeviceParams
	if err := unmarshalParams(params, &p, "deviceId"); err != nil {
		return nil, err
	}

	return responseData(commands.RebootCommand(commands.RebootRequest{DeviceID: p.DeviceID}))
}

func handleDeviceReset(params json.RawMessage) (interface{}, error) {
	var p DeviceParams
	if err := unmarshalParams(params, &p, "deviceId"); err != nil {
		return nil, err
	}

	return responseData(commands.ResetCommand(commands.ResetRequest{DeviceID: p.DeviceID}))
}
