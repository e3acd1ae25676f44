// internal/view/render.go
//
// View engine: embedded template sets, func-map injection, and an LRU of
// parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Render         – buffer rendered HTML, then write it with a status.
//   - RenderToString – return template.HTML (fragments, tests).
//
// Every *.html file at the root of the Renderer's fs.FS is parsed as one
// set, so sub-templates ({{ template "form" . }}) work out-of-the-box.
//
// execName() chooses the template to execute:
//   – If the set contains "<name>.html", we run that (file has no define).
//   – Else we fall back to "<name>" (root template defined via {{ define }}).
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/yanizio/waitlist/internal/cache"
)

// CachePolicy hints how parsed sets are cached.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // parse once, reuse
	CacheSkip                       // re-parse on every render (development)
)

// Renderer renders templates from one fs.FS.
type Renderer struct {
	fsys   fs.FS
	funcs  template.FuncMap
	policy CachePolicy
	sets   *cache.LRU[string, *template.Template]
}

// New returns a Renderer over fsys.  extra funcs are merged over the
// built-in helpers.
func New(fsys fs.FS, policy CachePolicy, extra template.FuncMap) *Renderer {
	fm := template.FuncMap{
		"dict": dict,
	}
	for k, v := range extra {
		fm[k] = v
	}
	return &Renderer{
		fsys:   fsys,
		funcs:  fm,
		policy: policy,
		sets:   cache.New[string, *template.Template](16),
	}
}

// Render executes name into a buffer and writes it with status.  Nothing
// is written when execution fails, so callers can still send an error page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.execute(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString executes name and returns the HTML.
func (r *Renderer) RenderToString(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.execute(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) execute(buf *bytes.Buffer, name string, data any) error {
	t, err := r.load()
	if err != nil {
		return err
	}
	if err := t.ExecuteTemplate(buf, execName(t, name), data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

//
// internal: load
//

const setKey = "root"

// load returns the parsed set, obeying the cache policy.
func (r *Renderer) load() (*template.Template, error) {
	if r.policy != CacheSkip {
		if t, ok := r.sets.Get(setKey); ok {
			return t, nil
		}
	}

	t, err := template.New(setKey).Funcs(r.funcs).ParseFS(r.fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	if r.policy != CacheSkip {
		r.sets.Add(setKey, t)
	}
	return t, nil
}

//
// helpers
//

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
