package nemu

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mobile-next/mumucli/utils"
)

// ManagerExecutable is the MuMu 12 command line management tool.
const ManagerExecutable = "MuMuManager.exe"

// DefaultRestartTimeout bounds how long Restart waits for Android to boot.
const DefaultRestartTimeout = 120 * time.Second

// EmulatorState is the coarse run state reported by MuMuManager info.
type EmulatorState string

const (
	StateRunning   EmulatorState = "running"
	StateLaunching EmulatorState = "launching"
	StateStopped   EmulatorState = "stopped"
)

// CommandRunner executes an external program and returns what it wrote to
// stdout and stderr.
type CommandRunner func(name string, args ...string) (stdout, stderr []byte, err error)

func execRunner(name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.Command(name, args...)
	utils.ConfigureHiddenProcAttr(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Management is what the driver needs from the management tool.
type Management interface {
	State() (EmulatorState, error)
	Version() (Version, error)
	Restart() error
}

// InstanceInfo is one entry of `MuMuManager info -v all`.
type InstanceInfo struct {
	Index   int           `json:"index"`
	Name    string        `json:"name"`
	State   EmulatorState `json:"state"`
	Version string        `json:"version,omitempty"`
}

// Manager runs MuMuManager.exe for one emulator instance.
type Manager struct {
	path           string
	index          int
	run            CommandRunner
	clock          Clock
	restartTimeout time.Duration

	mu      sync.Mutex
	version *Version
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithCommandRunner replaces process execution, mainly for tests.
func WithCommandRunner(run CommandRunner) ManagerOption {
	return func(m *Manager) {
		m.run = run
	}
}

// WithManagerClock sets the clock used while waiting for a restart.
func WithManagerClock(clock Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithRestartTimeout overrides DefaultRestartTimeout.
func WithRestartTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.restartTimeout = d
	}
}

// NewManager creates a query client for instance index using the
// MuMuManager.exe at path.
func NewManager(path string, index int, opts ...ManagerOption) *Manager {
	m := &Manager{
		path:           path,
		index:          index,
		run:            execRunner,
		clock:          realClock{},
		restartTimeout: DefaultRestartTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the MuMuManager.exe path this client invokes.
func (m *Manager) Path() string {
	return m.path
}

// Index returns the emulator instance index.
func (m *Manager) Index() int {
	return m.index
}

func (m *Manager) invoke(args ...string) ([]byte, error) {
	stdout, stderr, err := m.run(m.path, args...)
	if err != nil {
		output := strings.TrimSpace(string(stderr))
		if output == "" {
			output = strings.TrimSpace(string(stdout))
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return nil, &ManagementQueryError{Args: args, ExitCode: exitCode, Output: output, Err: err}
	}

	output := bytes.TrimSpace(stdout)
	if len(output) == 0 && len(stderr) > 0 {
		utils.Verbose("MuMuManager %v printed to stderr only", args)
		output = bytes.TrimSpace(stderr)
	}

	return output, nil
}

func (m *Manager) queryJSON(args ...string) (map[string]interface{}, error) {
	output, err := m.invoke(args...)
	if err != nil {
		return nil, err
	}

	if len(output) == 0 {
		return nil, fmt.Errorf("%w: MuMuManager %v printed nothing", ErrMalformedOutput, args)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(output, &data); err != nil {
		return nil, fmt.Errorf("%w: MuMuManager %v: %v (output: %q)", ErrMalformedOutput, args, err, truncate(string(output), 200))
	}

	return data, nil
}

// Setting returns `MuMuManager setting -v <index> -a`.
func (m *Manager) Setting() (map[string]interface{}, error) {
	return m.queryJSON("setting", "-v", strconv.Itoa(m.index), "-a")
}

// Info returns `MuMuManager info -v <index>`.
func (m *Manager) Info() (map[string]interface{}, error) {
	return m.queryJSON("info", "-v", strconv.Itoa(m.index))
}

// State reports whether the instance is running, launching or stopped.
func (m *Manager) State() (EmulatorState, error) {
	info, err := m.Info()
	if err != nil {
		return "", err
	}
	return stateFromInfo(info), nil
}

func stateFromInfo(info map[string]interface{}) EmulatorState {
	if truthy(info["is_android_started"]) || info["player_state"] == "start_finished" {
		return StateRunning
	}
	if truthy(info["is_process_started"]) {
		return StateLaunching
	}
	return StateStopped
}

// Version returns the emulator core version. The first successful answer is
// cached for the lifetime of the Manager.
func (m *Manager) Version() (Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.version != nil {
		return *m.version, nil
	}

	setting, err := m.Setting()
	if err != nil {
		return Version{}, err
	}

	raw := "0.0.0"
	if v, ok := setting["core_version"]; ok && v != nil {
		raw = fmt.Sprint(v)
	}

	version, err := ParseVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("%w: core_version: %v", ErrMalformedOutput, err)
	}

	m.version = &version
	return version, nil
}

func (m *Manager) control(args ...string) error {
	full := append([]string{"control", "-v", strconv.Itoa(m.index)}, args...)
	output, err := m.invoke(full...)
	if err != nil {
		return err
	}

	// control commands answer {"errcode": 0} on success, older builds print nothing
	var reply map[string]interface{}
	if len(output) > 0 && json.Unmarshal(output, &reply) == nil {
		if code, ok := reply["errcode"].(float64); ok && code != 0 {
			return &ManagementQueryError{
				Args:     full,
				ExitCode: 0,
				Output:   string(output),
				Err:      fmt.Errorf("errcode %d", int(code)),
			}
		}
	}

	return nil
}

// Launch starts the emulator instance.
func (m *Manager) Launch() error {
	return m.control("launch")
}

// Shutdown stops the emulator instance.
func (m *Manager) Shutdown() error {
	return m.control("shutdown")
}

// LaunchApp brings packageName to the foreground inside the instance.
func (m *Manager) LaunchApp(packageName string) error {
	return m.control("app", "launch", "-pkg", packageName)
}

// Restart restarts the emulator process and blocks until Android reports
// started or the restart timeout elapses.
func (m *Manager) Restart() error {
	log := utils.WithComponent("mumu-manager").WithField("index", m.index)
	log.Info("restarting emulator")

	if err := m.control("restart"); err != nil {
		return err
	}

	return m.WaitRunning(m.restartTimeout)
}

// WaitRunning polls State once per second until it reports running.
func (m *Manager) WaitRunning(timeout time.Duration) error {
	deadline := m.clock.Now().Add(timeout)
	var lastErr error

	for m.clock.Now().Before(deadline) {
		state, err := m.State()
		if err == nil && state == StateRunning {
			return nil
		}
		lastErr = err

		if err := m.clock.Sleep(time.Second); err != nil {
			return err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w: instance %d not running after %s: %v", ErrEmulatorNotRunning, m.index, timeout, lastErr)
	}
	return fmt.Errorf("%w: instance %d not running after %s", ErrEmulatorNotRunning, m.index, timeout)
}

// ListInstances returns every instance known to MuMuManager, ordered by index.
func (m *Manager) ListInstances() ([]InstanceInfo, error) {
	data, err := m.queryJSON("info", "-v", "all")
	if err != nil {
		return nil, err
	}

	var entries []map[string]interface{}
	if _, single := data["index"]; single {
		entries = append(entries, data)
	} else {
		for _, v := range data {
			if entry, ok := v.(map[string]interface{}); ok {
				entries = append(entries, entry)
			}
		}
	}

	instances := make([]InstanceInfo, 0, len(entries))
	for _, entry := range entries {
		index, ok := toInt(entry["index"])
		if !ok {
			continue
		}

		name, _ := entry["name"].(string)
		version, _ := entry["core_version"].(string)
		instances = append(instances, InstanceInfo{
			Index:   index,
			Name:    name,
			State:   stateFromInfo(entry),
			Version: version,
		})
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Index < instances[j].Index
	})

	return instances, nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		b, err := strconv.ParseBool(t)
		return err == nil && b
	default:
		return false
	}
}

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	default:
		return 0, false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
