package api

import (
	"net/http"
	"os"
)

// spaFileSystem serves index.html for any path that does not exist, so
// client-side routes survive a reload.
type spaFileSystem struct {
	root http.FileSystem
}

func (fs *spaFileSystem) Open(name string) (http.File, error) {
	f, err := fs.root.Open(name)
	if os.IsNotExist(err) {
		return fs.root.Open("/index.html")
	}
	return f, err
}

// StaticHandler serves the browser UI from dir.
func StaticHandler(dir string) http.Handler {
	return http.FileServer(&spaFileSystem{root: http.Dir(dir)})
}
