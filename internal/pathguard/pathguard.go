// Package pathguard decides whether a caller supplied path lies inside one of
// the configured mount points. It is the only authorization check in the
// system; every operation that touches a caller path must pass it first.
package pathguard

import (
	"os"
	"path/filepath"
	"strings"
)

// Guard holds the configured mount points. The zero value allows nothing.
type Guard struct {
	mounts []string
}

// New returns a Guard over mountPoints. Mount points are canonicalized on
// every check, so a mount that appears after startup is honored.
func New(mountPoints []string) *Guard {
	return &Guard{mounts: append([]string(nil), mountPoints...)}
}

// MountPoints returns the configured mount points in order.
func (g *Guard) MountPoints() []string {
	return append([]string(nil), g.mounts...)
}

// Allowed reports whether path resolves inside a mount point.
func (g *Guard) Allowed(path string) bool {
	return IsAllowed(path, g.mounts)
}

// IsAllowed resolves path and each mount point to canonical absolute form
// (symlinks followed, "." and ".." removed) and reports whether the path is
// equal to or below one of them. Any resolution failure denies.
//
// Containment is decided on path segment boundaries: "/data1" admits
// "/data1/x" but not "/data12/x".
func IsAllowed(path string, mountPoints []string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	real, err := canonical(path)
	if err != nil {
		return false
	}
	for _, mp := range mountPoints {
		if strings.TrimSpace(mp) == "" {
			continue
		}
		realMount, err := canonical(mp)
		if err != nil {
			continue
		}
		if within(real, realMount) {
			return true
		}
	}
	return false
}

func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}

func within(path, base string) bool {
	if path == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(path, prefix)
}
