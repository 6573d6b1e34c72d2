package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is one navigable folder.
type Dir struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

const dirType = "directory"

// housekeeping directory names never offered for navigation, lowercased.
var deniedDirs = map[string]bool{
	"$recycle.bin":              true,
	"recycler":                  true,
	"system volume information": true,
	"lost+found":                true,
	"proc":                      true,
	"sys":                       true,
	"dev":                       true,
	"node_modules":              true,
	"__pycache__":               true,
	".git":                      true,
	".svn":                      true,
	".hg":                       true,
}

// Hidden reports whether a directory named name is filtered from browsing.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".") || deniedDirs[strings.ToLower(name)]
}

// MountDirs lists the configured mount points that currently exist as
// directories, in configuration order.
func MountDirs(mountPoints []string) []Dir {
	out := make([]Dir, 0, len(mountPoints))
	for _, mp := range mountPoints {
		fi, err := os.Stat(mp)
		if err != nil || !fi.IsDir() {
			continue
		}
		name := filepath.Base(filepath.Clean(mp))
		if name == "" || name == "." || name == string(filepath.Separator) {
			name = mp
		}
		out = append(out, Dir{Name: name, Path: mp, Type: dirType})
	}
	return out
}

// ListDirs returns the visible subdirectories of dir sorted by name,
// case-insensitively. Entries that cannot be inspected are left out.
func (s *Scanner) ListDirs(dir string) ([]Dir, error) {
	abs, err := s.openDir("browse", dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, dirError("browse", abs, err)
	}

	out := make([]Dir, 0, len(entries))
	for _, e := range entries {
		if Hidden(e.Name()) {
			continue
		}
		path := filepath.Join(abs, e.Name())
		if !e.IsDir() {
			if e.Type()&os.ModeSymlink == 0 {
				continue
			}
			fi, err := os.Stat(path)
			if err != nil || !fi.IsDir() {
				continue
			}
		}
		out = append(out, Dir{Name: e.Name(), Path: path, Type: dirType})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
