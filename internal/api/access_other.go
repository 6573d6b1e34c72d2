//go:build !unix

package api

import "os"

func access(path string) (readable, writable bool) {
	if f, err := os.Open(path); err == nil {
		readable = true
		f.Close()
	}
	if fi, err := os.Stat(path); err == nil {
		writable = fi.Mode().Perm()&0o200 != 0
	}
	return readable, writable
}
