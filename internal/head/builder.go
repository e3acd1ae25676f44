// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page’s
// <head> element.  It is scoped to a single render call.  Handlers push
// tags into the builder, then the layout template emits them with one
// {{ .Head.HTML }} call.
//
// Features
// --------
//   - SetTitle                – single <title> tag (last call wins).
//   - Meta, OpenGraph         – name= and property= meta tags, escaped.
//   - Stylesheet, Canonical   – <link> tags, escaped.
//   - JSONLD                  – structured data wrapped in a script tag.
//
// Identical tags are emitted once.
package head

import (
	"encoding/json"
	"html/template"
	"strings"
)

// Builder is not safe for concurrent use; build one per render.
type Builder struct {
	title  string
	metas  []string
	links  []string
	jsonLD []string
	seen   map[string]struct{}
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) { b.title = t }

// Meta adds <meta name=… content=…>.
func (b *Builder) Meta(name, content string) {
	b.add(&b.metas, `<meta name="`+attr(name)+`" content="`+attr(content)+`">`)
}

// OpenGraph adds <meta property="og:…" content=…>.
func (b *Builder) OpenGraph(prop, content string) {
	b.add(&b.metas, `<meta property="og:`+attr(prop)+`" content="`+attr(content)+`">`)
}

// Stylesheet adds a stylesheet link.
func (b *Builder) Stylesheet(href string) {
	b.add(&b.links, `<link rel="stylesheet" href="`+attr(href)+`">`)
}

// Canonical adds the canonical URL link.
func (b *Builder) Canonical(href string) {
	b.add(&b.links, `<link rel="canonical" href="`+attr(href)+`">`)
}

// JSONLD marshals v and stores it as a structured-data block.
func (b *Builder) JSONLD(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// json.Marshal escapes <, >, and & so the payload cannot close the tag.
	b.add(&b.jsonLD, `<script type="application/ld+json">`+string(raw)+`</script>`)
	return nil
}

func (b *Builder) add(tgt *[]string, tag string) {
	if _, dup := b.seen[tag]; dup {
		return
	}
	b.seen[tag] = struct{}{}
	*tgt = append(*tgt, tag)
}

// HTML returns the complete head contents in a stable order: title,
// metas, links, then structured data.
func (b *Builder) HTML() template.HTML {
	var sb strings.Builder
	if b.title != "" {
		sb.WriteString("<title>" + template.HTMLEscapeString(b.title) + "</title>\n")
	}
	for _, group := range [][]string{b.metas, b.links, b.jsonLD} {
		for _, tag := range group {
			sb.WriteString(tag)
			sb.WriteByte('\n')
		}
	}
	return template.HTML(sb.String())
}

func attr(s string) string { return template.HTMLEscapeString(s) }
