package nemu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Version is a MuMu core version triple.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// DirectCoordsSince is the first core version whose input calls take
// logical (x, y) unchanged.
var DirectCoordsSince = Version{Major: 4, Minor: 1, Patch: 21}

// ParseVersion parses "major.minor.patch", ignoring any further components.
// Missing components are zero.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	var nums [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare returns -1, 0 or 1 comparing v and o lexicographically.
func (v Version) Compare(o Version) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{o.Major, o.Minor, o.Patch}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// CoordMode is the coordinate convention expected by the native input calls.
type CoordMode int

const (
	CoordUnresolved CoordMode = iota
	// CoordLegacy passes (height - y, x).
	CoordLegacy
	// CoordDirect passes (x, y).
	CoordDirect
)

func (m CoordMode) String() string {
	switch m {
	case CoordLegacy:
		return "legacy"
	case CoordDirect:
		return "direct"
	default:
		return "unresolved"
	}
}

// CoordModeFor picks the convention for a core version.
func CoordModeFor(v Version) CoordMode {
	if v.Compare(DirectCoordsSince) >= 0 {
		return CoordDirect
	}
	return CoordLegacy
}

type versionSource interface {
	Version() (Version, error)
}

type coordResolver struct {
	source versionSource
	height int
	mode   CoordMode
	log    *logrus.Entry
}

// resolve queries the version once; later calls reuse the cached mode.
func (r *coordResolver) resolve() (CoordMode, error) {
	if r.mode != CoordUnresolved {
		return r.mode, nil
	}

	version, err := r.source.Version()
	if err != nil {
		return CoordUnresolved, fmt.Errorf("resolving coordinate convention: %w", err)
	}

	r.mode = CoordModeFor(version)
	r.log.WithFields(logrus.Fields{
		"version": version.String(),
		"coords":  r.mode.String(),
	}).Info("resolved coordinate convention")
	return r.mode, nil
}

func (r *coordResolver) mapXY(x, y int) (int, int, error) {
	mode, err := r.resolve()
	if err != nil {
		return 0, 0, err
	}

	if mode == CoordDirect {
		return x, y, nil
	}
	return r.height - y, x, nil
}

// reset forgets the cached convention; only a full session teardown does this.
func (r *coordResolver) reset() {
	r.mode = CoordUnresolved
}
