//go:build unix

package api

import "golang.org/x/sys/unix"

// access asks the kernel whether the process may read and write path.
func access(path string) (readable, writable bool) {
	return unix.Access(path, unix.R_OK) == nil, unix.Access(path, unix.W_OK) == nil
}
