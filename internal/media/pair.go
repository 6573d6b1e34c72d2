package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SiblingIndex groups the file names of one directory by stem (the name
// without its final extension) so pairing lookups need no further I/O.
// Stems compare exactly; only the extension is matched case-insensitively.
type SiblingIndex struct {
	byStem map[string][]string
}

// NewSiblingIndex indexes names, which must all live in the same directory.
func NewSiblingIndex(names []string) *SiblingIndex {
	x := &SiblingIndex{byStem: make(map[string][]string, len(names))}
	for _, n := range names {
		stem := stemOf(n)
		x.byStem[stem] = append(x.byStem[stem], n)
	}
	for _, names := range x.byStem {
		sort.Strings(names)
	}
	return x
}

// Raw returns the RAW sibling of the JPG named jpgName.
func (x *SiblingIndex) Raw(jpgName string) (string, bool) {
	return x.lookup(stemOf(jpgName), RawExtensions)
}

// Jpg returns the JPG sibling of the RAW named rawName.
func (x *SiblingIndex) Jpg(rawName string) (string, bool) {
	return x.lookup(stemOf(rawName), JpgExtensions)
}

// lookup walks exts in priority order and returns the first sibling whose
// extension matches. Several case variants of one extension can coexist on a
// case-sensitive filesystem; the all-lowercase spelling wins, then the
// all-uppercase one, then the lexically smallest.
func (x *SiblingIndex) lookup(stem string, exts []string) (string, bool) {
	candidates := x.byStem[stem]
	if len(candidates) == 0 {
		return "", false
	}
	for _, ext := range exts {
		best, bestRank := "", 3
		for _, c := range candidates {
			got := filepath.Ext(c)
			if strings.ToLower(got) != ext {
				continue
			}
			rank := 2
			switch got {
			case ext:
				rank = 0
			case strings.ToUpper(ext):
				rank = 1
			}
			if rank < bestRank {
				best, bestRank = c, rank
			}
		}
		if best != "" {
			return best, true
		}
	}
	return "", false
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// SameShot reports whether a and b live in the same directory and share a
// stem, i.e. could be the two halves of one JPG+RAW pair.
func SameShot(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	return filepath.Dir(a) == filepath.Dir(b) && stemOf(filepath.Base(a)) == stemOf(filepath.Base(b))
}

// FindRaw locates the same-directory, same-stem RAW file of jpgPath.
func FindRaw(jpgPath string) (string, bool) {
	return findSibling(jpgPath, (*SiblingIndex).Raw)
}

// FindJpg locates the same-directory, same-stem JPG file of rawPath.
func FindJpg(rawPath string) (string, bool) {
	return findSibling(rawPath, (*SiblingIndex).Jpg)
}

func findSibling(path string, pick func(*SiblingIndex, string) (string, bool)) (string, bool) {
	dir := filepath.Dir(path)
	names, err := ListFileNames(dir)
	if err != nil {
		return "", false
	}
	name, ok := pick(NewSiblingIndex(names), filepath.Base(path))
	if !ok {
		return "", false
	}
	return filepath.Join(dir, name), true
}

// ListFileNames returns the names of the non-directory entries of dir.
// Symlinks are followed; dangling links are dropped.
func ListFileNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if isRegular(dir, e) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func isRegular(dir string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}
