package nemu

import "path/filepath"

// RendererDLL is the vendor library exposing the nemu_* capture/input API.
const RendererDLL = "external_renderer_ipc.dll"

// Renderer is the native capture/input surface of external_renderer_ipc.
// All calls are synchronous. Methods returning a status use 0 for success.
type Renderer interface {
	// Connect returns a session handle, or 0 on failure.
	Connect(root string, index int) int
	Disconnect(handle int)
	// GetDisplayID returns a negative value while the app surface is not ready.
	GetDisplayID(handle int, packageName string, appIndex int) int
	CaptureDisplay(handle, displayID, bufferSize int, width, height *int, buffer []byte) int
	TouchDown(handle, displayID, x, y int) int
	TouchUp(handle, displayID int) int
	FingerTouchDown(handle, displayID, fingerID, x, y int) int
	FingerTouchUp(handle, displayID, fingerID int) int
	KeyDown(handle, displayID, keyCode int) int
	KeyUp(handle, displayID, keyCode int) int
}

// rendererCandidates lists where MuMu 12 ships the renderer library, relative
// to the emulator install root.
func rendererCandidates(root string) []string {
	return []string{
		filepath.Join(root, "shell", "sdk", RendererDLL),
		filepath.Join(root, "nx_main", "sdk", RendererDLL),
	}
}

// FindRenderer returns the first candidate path that exists, or "".
func FindRenderer(root string) string {
	for _, path := range rendererCandidates(root) {
		if fileExists(path) {
			return path
		}
	}
	return ""
}
