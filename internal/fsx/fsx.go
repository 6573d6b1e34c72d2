// Package fsx wraps the filesystem calls whose failure modes matter to the
// batch operations: renames across devices and replace-in-place writes.
package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Swappable so tests can simulate EXDEV and permission failures.
var (
	renameFunc = os.Rename
	removeFunc = os.Remove
)

// CrossDeviceError marks a rename that failed with EXDEV. Files are never
// copied and deleted implicitly; the caller reports the failure instead.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cross-device move %q -> %q is not supported: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a *CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// ErrDestinationExists is returned by MoveNoReplace when dst is already taken.
var ErrDestinationExists = errors.New("destination already exists")

// Rename wraps os.Rename and tags EXDEV failures as *CrossDeviceError.
func Rename(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// MoveNoReplace renames src to dst unless something already lives at dst.
// The existence probe and the rename are not atomic together.
func MoveNoReplace(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%s: %w", dst, ErrDestinationExists)
	} else if !os.IsNotExist(err) {
		return err
	}
	return Rename(src, dst)
}

// Remove deletes a single file.
func Remove(path string) error {
	return removeFunc(path)
}

// Exists reports whether path can be stat'ed. Any stat error counts as absent.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsEmptyDir reports whether dir is a directory with no entries.
func IsEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return false, err
	}
	if !fi.IsDir() {
		return false, nil
	}
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// WriteFileAtomic writes data to dir/name through a same-directory temp file
// and a rename, replacing any existing file. Concurrent writers of identical
// content converge on the same result; the last rename wins.
func WriteFileAtomic(dir, name string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := Rename(tmpName, dst); err != nil {
		return err
	}

	_ = syncDirBestEffort(dir)
	return nil
}

func syncDirBestEffort(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
