package server

import (
	"encoding/json"
	"fmt"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP and the WebSocket endpoints
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"devices":         handleDevicesList,
		"screenshot":      handleScreenshot,
		"io_tap":          handleIoTap,
		"io_swipe":        handleIoSwipe,
		"io_gesture":      handleIoGesture,
		"io_button":       handleIoButton,
		"io_key":          handleIoKey,
		"io_back":         handleIoBack,
		"device_info":     handleDeviceInfo,
		"device_boot":     handleDeviceBoot,
		"device_shutdown": handleDeviceShutdown,
		"device_reboot":   handleDeviceReboot,
		"device_reset":    handleDeviceReset,
		"server.shutdown": handleServerShutdown,
	}
}

// Execute dispatches a method call using the registry
func Execute(method string, params json.RawMessage) (interface{}, error) {
	registry := GetMethodRegistry()

	handler, exists := registry[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(params)
}
