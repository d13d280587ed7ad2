// Package assets embeds the dashboard templates and static files.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templates embed.FS

//go:embed static
var static embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() fs.FS {
	return sub(templates, "templates")
}

// Static returns the static file tree rooted at static/.
func Static() fs.FS {
	return sub(static, "static")
}

func sub(fsys embed.FS, dir string) fs.FS {
	s, err := fs.Sub(fsys, dir)
	if err != nil {
		// dir is embedded above
		panic(err)
	}
	return s
}
