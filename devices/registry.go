package devices

import (
	"sync"

	"github.com/mobile-next/mumucli/utils"
)

type DeviceRegistry struct {
	mu      sync.RWMutex
	devices map[string]ControllableDevice
}

// NewDeviceRegistry creates a new device registry instance
func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{
		devices: make(map[string]ControllableDevice),
	}
}

// Register adds a device to the registry for cleanup tracking
func (r *DeviceRegistry) Register(device ControllableDevice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[device.ID()] = device
}

// Unregister stops tracking a device without cleaning it up
func (r *DeviceRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, id)
}

func (r *DeviceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// CleanupAll gracefully cleans up all registered devices, disconnecting
// their IPC sessions
func (r *DeviceRegistry) CleanupAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.devices) == 0 {
		return
	}

	for id, device := range r.devices {
		if err := device.Cleanup(); err != nil {
			utils.Verbose("Error cleaning up device %s: %v", id, err)
		}
	}

	// clear the registry
	r.devices = make(map[string]ControllableDevice)
}
