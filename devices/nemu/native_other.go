//go:build !windows

package nemu

import (
	"fmt"
	"runtime"
)

// LoadRenderer always fails outside Windows; MuMu 12 ships the renderer only
// as a Windows DLL.
func LoadRenderer(root string) (Renderer, error) {
	return nil, fmt.Errorf("%w: not supported on %s (checked %v)", ErrNativeUnavailable, runtime.GOOS, rendererCandidates(root))
}
