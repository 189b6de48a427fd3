package commands

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/mumucli/devices"
	"github.com/mobile-next/mumucli/devices/nemu"
	"github.com/mobile-next/mumucli/utils"
)

// DeviceCacheSize bounds how many instances keep an open IPC session.
const DeviceCacheSize = 16

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

var (
	configMu     sync.RWMutex
	driverConfig = nemu.DefaultConfig()

	// findMu keeps two requests from opening two sessions to one instance
	findMu      sync.Mutex
	deviceCache = newDeviceCache()

	// deviceLister is replaced in tests
	deviceLister = func(cfg nemu.Config, showAll bool) ([]devices.ControllableDevice, error) {
		return devices.GetAllControllableDevices(cfg, showAll)
	}

	// deviceRegistry holds the registry for device cleanup tracking.
	deviceRegistry *devices.DeviceRegistry
	shutdownHook   *devices.ShutdownHook
)

// newDeviceCache evicts least recently used devices, disconnecting their IPC
// session on the way out.
func newDeviceCache() *lru.Cache[string, devices.ControllableDevice] {
	cache, err := lru.NewWithEvict(DeviceCacheSize, func(id string, device devices.ControllableDevice) {
		utils.Verbose("Evicting device %s from cache", id)
		if err := device.Cleanup(); err != nil {
			utils.Verbose("Error cleaning up device %s: %v", id, err)
		}
		if deviceRegistry != nil {
			deviceRegistry.Unregister(id)
		}
	})
	if err != nil {
		panic(err)
	}
	return cache
}

// SetConfig sets the driver configuration used for every device found from
// now on. Cached devices are dropped.
func SetConfig(cfg nemu.Config) {
	configMu.Lock()
	driverConfig = cfg
	configMu.Unlock()

	deviceCache.Purge()
}

// GetConfig returns the driver configuration.
func GetConfig() nemu.Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return driverConfig
}

// SetRegistry sets the global device registry for cleanup tracking.
// This should be called once at application startup (main.go).
// The registry is used to track devices with an open IPC session and
// disconnect them during graceful shutdown (SIGINT/SIGTERM).
func SetRegistry(registry *devices.DeviceRegistry) {
	deviceRegistry = registry
}

// GetRegistry returns the current device registry.
// Returns nil if SetRegistry has not been called yet.
func GetRegistry() *devices.DeviceRegistry {
	return deviceRegistry
}

func SetShutdownHook(hook *devices.ShutdownHook) {
	shutdownHook = hook
}

func GetShutdownHook() *devices.ShutdownHook {
	return shutdownHook
}

func cacheDevice(device devices.ControllableDevice) devices.ControllableDevice {
	deviceCache.Add(device.ID(), device)
	if deviceRegistry != nil {
		deviceRegistry.Register(device)
	}
	return device
}

// FindDevice finds a device by ID, using cache when possible
func FindDevice(deviceID string) (devices.ControllableDevice, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device ID is required")
	}

	findMu.Lock()
	defer findMu.Unlock()

	// Check cache first
	if device, exists := deviceCache.Get(deviceID); exists {
		return device, nil
	}

	// include stopped instances so they can be booted
	allDevices, err := deviceLister(GetConfig(), true)
	if err != nil {
		return nil, fmt.Errorf("error getting devices: %w", err)
	}

	for _, d := range allDevices {
		if d.ID() == deviceID {
			return cacheDevice(d), nil
		}
	}

	return nil, fmt.Errorf("device not found: %s", deviceID)
}

// FindDeviceOrAutoSelect finds a device by ID, or auto-selects if deviceID is empty
func FindDeviceOrAutoSelect(deviceID string) (devices.ControllableDevice, error) {
	// if deviceID is provided, use existing logic
	if deviceID != "" {
		return FindDevice(deviceID)
	}

	findMu.Lock()
	defer findMu.Unlock()

	onlineDevices, err := deviceLister(GetConfig(), false)
	if err != nil {
		return nil, fmt.Errorf("error getting devices: %w", err)
	}

	if len(onlineDevices) == 0 {
		return nil, fmt.Errorf("no online devices found")
	}

	if len(onlineDevices) > 1 {
		err = fmt.Errorf("multiple devices found (%d), please specify --device with one of: %s", len(onlineDevices), getDeviceIDList(onlineDevices))
		return nil, err
	}

	// exactly 1 online device - check cache first to reuse existing instance
	deviceID = onlineDevices[0].ID()
	if cachedDevice, exists := deviceCache.Get(deviceID); exists {
		return cachedDevice, nil
	}

	return cacheDevice(onlineDevices[0]), nil
}

// getDeviceIDList returns a comma-separated list of device IDs for error messages
func getDeviceIDList(devices []devices.ControllableDevice) string {
	var ids []string
	for _, d := range devices {
		ids = append(ids, d.ID())
	}
	return fmt.Sprintf("[%s]", strings.Join(ids, ", "))
}
