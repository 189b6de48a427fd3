package commands

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mobile-next/mumucli/devices/nemu"
)

type DoctorInfo struct {
	MumuCLIVersion string   `json:"mumucli_version"`
	OS             string   `json:"os"`
	OSVersion      string   `json:"os_version"`
	EmulatorFolder string   `json:"emulator_folder"`
	ManagerPath    string   `json:"manager_path,omitempty"`
	RendererPath   string   `json:"renderer_path,omitempty"`
	CoreVersion    string   `json:"core_version,omitempty"`
	Coordinates    string   `json:"coordinates,omitempty"`
	Instances      int      `json:"instances"`
	Problems       []string `json:"problems,omitempty"`
}

func getManagerPath(cfg nemu.Config) string {
	path := cfg.ManagerPath()
	if _, err := os.Stat(path); err == nil {
		return path
	}

	// check if MuMuManager is in PATH
	path, err := exec.LookPath(nemu.ManagerExecutable)
	if err == nil {
		return path
	}

	return ""
}

func getOSVersion() string {
	switch runtime.GOOS {
	case "darwin":
		cmd := exec.Command("sw_vers", "-productVersion")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "windows":
		cmd := exec.Command("cmd", "/c", "ver")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "linux":
		// try reading /etc/os-release
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return ""
		}
		lines := strings.Split(string(data), "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "PRETTY_NAME=") {
				return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
			}
		}
		return ""
	default:
		return ""
	}
}

// DoctorCommand checks that the MuMu install, its management tool and the
// renderer library can be found, and reports the emulator core version
func DoctorCommand(version string) *CommandResponse {
	cfg := GetConfig()
	info := DoctorInfo{
		MumuCLIVersion: version,
		OS:             runtime.GOOS,
		OSVersion:      getOSVersion(),
		EmulatorFolder: cfg.EmulatorFolder,
		ManagerPath:    getManagerPath(cfg),
		RendererPath:   nemu.FindRenderer(cfg.Root()),
	}

	if runtime.GOOS != "windows" {
		info.Problems = append(info.Problems, "the MuMu renderer library only loads on windows")
	}
	if info.RendererPath == "" {
		info.Problems = append(info.Problems, nemu.RendererDLL+" not found under "+cfg.Root())
	}
	if info.ManagerPath == "" {
		info.Problems = append(info.Problems, nemu.ManagerExecutable+" not found in "+cfg.EmulatorFolder)
		return NewSuccessResponse(info)
	}

	manager := nemu.NewManager(info.ManagerPath, cfg.Index)
	if v, err := manager.Version(); err != nil {
		info.Problems = append(info.Problems, "core version query failed: "+err.Error())
	} else {
		info.CoreVersion = v.String()
		info.Coordinates = nemu.CoordModeFor(v).String()
	}

	if instances, err := manager.ListInstances(); err != nil {
		info.Problems = append(info.Problems, "instance listing failed: "+err.Error())
	} else {
		info.Instances = len(instances)
	}

	return NewSuccessResponse(info)
}
