package waitlist

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

func templates() fs.FS {
	sub, _ := fs.Sub(templateFS, "templates")
	return sub
}

func static() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}
