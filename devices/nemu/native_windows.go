//go:build windows

package nemu

import (
	"fmt"
	"unsafe"

	"github.com/mobile-next/mumucli/utils"
	"golang.org/x/sys/windows"
)

type dllRenderer struct {
	dll *windows.DLL

	connect         *windows.Proc
	disconnect      *windows.Proc
	getDisplayID    *windows.Proc
	captureDisplay  *windows.Proc
	touchDown       *windows.Proc
	touchUp         *windows.Proc
	fingerTouchDown *windows.Proc
	fingerTouchUp   *windows.Proc
	keyDown         *windows.Proc
	keyUp           *windows.Proc
}

// LoadRenderer loads external_renderer_ipc.dll from the MuMu install root and
// binds every nemu_* procedure. It fails if the library or any symbol is missing.
func LoadRenderer(root string) (Renderer, error) {
	candidates := rendererCandidates(root)

	var dll *windows.DLL
	var lastErr error
	for _, path := range candidates {
		d, err := windows.LoadDLL(path)
		if err != nil {
			utils.Verbose("Failed to load renderer from %s: %v", path, err)
			lastErr = err
			continue
		}
		utils.Verbose("Loaded MuMu renderer: %s", path)
		dll = d
		break
	}

	if dll == nil {
		return nil, fmt.Errorf("%w: checked %v: %v", ErrNativeUnavailable, candidates, lastErr)
	}

	r := &dllRenderer{dll: dll}
	procs := []struct {
		name string
		dst  **windows.Proc
	}{
		{"nemu_connect", &r.connect},
		{"nemu_disconnect", &r.disconnect},
		{"nemu_get_display_id", &r.getDisplayID},
		{"nemu_capture_display", &r.captureDisplay},
		{"nemu_input_event_touch_down", &r.touchDown},
		{"nemu_input_event_touch_up", &r.touchUp},
		{"nemu_input_event_finger_touch_down", &r.fingerTouchDown},
		{"nemu_input_event_finger_touch_up", &r.fingerTouchUp},
		{"nemu_input_event_key_down", &r.keyDown},
		{"nemu_input_event_key_up", &r.keyUp},
	}

	for _, p := range procs {
		proc, err := dll.FindProc(p.name)
		if err != nil {
			_ = dll.Release()
			return nil, fmt.Errorf("%w: %s: %v", ErrNativeUnavailable, p.name, err)
		}
		*p.dst = proc
	}

	return r, nil
}

// status converts a C int return value.
func status(r1 uintptr) int {
	return int(int32(r1))
}

func (r *dllRenderer) Connect(root string, index int) int {
	path, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return 0
	}
	r1, _, _ := r.connect.Call(uintptr(unsafe.Pointer(path)), uintptr(index))
	return status(r1)
}

func (r *dllRenderer) Disconnect(handle int) {
	_, _, _ = r.disconnect.Call(uintptr(handle))
}

func (r *dllRenderer) GetDisplayID(handle int, packageName string, appIndex int) int {
	pkg, err := windows.BytePtrFromString(packageName)
	if err != nil {
		return -1
	}
	r1, _, _ := r.getDisplayID.Call(uintptr(handle), uintptr(unsafe.Pointer(pkg)), uintptr(appIndex))
	return status(r1)
}

func (r *dllRenderer) CaptureDisplay(handle, displayID, bufferSize int, width, height *int, buffer []byte) int {
	if len(buffer) == 0 || len(buffer) < bufferSize {
		return -1
	}

	w := int32(*width)
	h := int32(*height)
	r1, _, _ := r.captureDisplay.Call(
		uintptr(handle),
		uintptr(uint32(displayID)),
		uintptr(bufferSize),
		uintptr(unsafe.Pointer(&w)),
		uintptr(unsafe.Pointer(&h)),
		uintptr(unsafe.Pointer(&buffer[0])),
	)
	*width = int(w)
	*height = int(h)
	return status(r1)
}

func (r *dllRenderer) TouchDown(handle, displayID, x, y int) int {
	r1, _, _ := r.touchDown.Call(uintptr(handle), uintptr(displayID), uintptr(x), uintptr(y))
	return status(r1)
}

func (r *dllRenderer) TouchUp(handle, displayID int) int {
	r1, _, _ := r.touchUp.Call(uintptr(handle), uintptr(displayID))
	return status(r1)
}

func (r *dllRenderer) FingerTouchDown(handle, displayID, fingerID, x, y int) int {
	r1, _, _ := r.fingerTouchDown.Call(uintptr(handle), uintptr(displayID), uintptr(fingerID), uintptr(x), uintptr(y))
	return status(r1)
}

func (r *dllRenderer) FingerTouchUp(handle, displayID, fingerID int) int {
	r1, _, _ := r.fingerTouchUp.Call(uintptr(handle), uintptr(displayID), uintptr(fingerID))
	return status(r1)
}

func (r *dllRenderer) KeyDown(handle, displayID, keyCode int) int {
	r1, _, _ := r.keyDown.Call(uintptr(handle), uintptr(displayID), uintptr(keyCode))
	return status(r1)
}

func (r *dllRenderer) KeyUp(handle, displayID, keyCode int) int {
	r1, _, _ := r.keyUp.Call(uintptr(handle), uintptr(displayID), uintptr(keyCode))
	return status(r1)
}
