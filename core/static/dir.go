package static

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrNotDirectory = errors.New("static root is not a directory")

// Dir serves files from root for routes with a {filename...} wildcard,
// such as GET /resources/{filename...}. Directory listings are never served.
func Dir(root string) (http.Handler, error) {
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("static root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	return FS(os.DirFS(root)), nil
}

// FS is Dir for an arbitrary filesystem, e.g. an embed.FS.
func FS(fsys fs.FS) http.Handler {
	fileServer := http.FileServer(neuteredFileSystem{http.FS(fsys)})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.PathValue("filename")), "/")
		if name == "" || name == "." {
			http.NotFound(w, r)
			return
		}

		r2 := new(http.Request)
		*r2 = *r
		u := *r.URL
		u.Path = "/" + name
		u.RawPath = ""
		r2.URL = &u
		fileServer.ServeHTTP(w, r2)
	})
}

// neuteredFileSystem hides directories so http.FileServer cannot list them.
type neuteredFileSystem struct {
	http.FileSystem
}

func (nfs neuteredFileSystem) Open(name string) (http.File, error) {
	f, err := nfs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	s, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if s.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
