package view

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// Assets serves an embedded static directory and builds cache-busting
// URLs for it.
type Assets struct {
	fsys   fs.FS
	prefix string
	hashes map[string]string
}

// NewAssets fingerprints every file in fsys.  prefix is the URL path the
// handler is mounted at, e.g. "/static/".
func NewAssets(fsys fs.FS, prefix string) (*Assets, error) {
	a := &Assets{fsys: fsys, prefix: prefix, hashes: map[string]string{}}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(b)
		a.hashes[p] = hex.EncodeToString(sum[:])[:10]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// URL returns the public path of name with a content-hash query.
func (a *Assets) URL(name string) string {
	name = strings.TrimPrefix(name, "/")
	u := path.Join(a.prefix, name)
	if h, ok := a.hashes[name]; ok {
		u += "?v=" + h
	}
	return u
}

// Handler serves the files under prefix with a long cache lifetime.
func (a *Assets) Handler() http.Handler {
	fsrv := http.StripPrefix(strings.TrimSuffix(a.prefix, "/"), http.FileServer(http.FS(a.fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "" {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=300")
		}
		fsrv.ServeHTTP(w, r)
	})
}
