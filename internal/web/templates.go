package web

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/blockedby/npb-dashboard/internal/table"
)

// TemplateEngine handles HTML template rendering
type TemplateEngine struct {
	fsys      fs.FS
	templates *template.Template
	reload    bool // dev mode: reload on each request
	mu        sync.RWMutex
}

// NewTemplateEngine creates a template engine reading from a directory
func NewTemplateEngine(templatesDir string, reload bool) *TemplateEngine {
	return NewTemplateEngineFS(os.DirFS(templatesDir), reload)
}

// NewTemplateEngineFS creates a template engine reading from fsys
func NewTemplateEngineFS(fsys fs.FS, reload bool) *TemplateEngine {
	return &TemplateEngine{
		fsys:   fsys,
		reload: reload,
	}
}

var errDictArgs = errors.New("dict expects string keys and an even number of arguments")

func funcMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, errDictArgs
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, errDictArgs
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"lower":  strings.ToLower,
		"format": table.FormatValue,
	}
}

// Load parses all templates except the pages directory
func (te *TemplateEngine) Load() error {
	tmpl := template.New("").Funcs(funcMap())

	err := fs.WalkDir(te.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// pages are parsed on demand
		if d.IsDir() && d.Name() == "pages" {
			return fs.SkipDir
		}

		if !d.IsDir() && path.Ext(p) == ".html" {
			_, err = tmpl.ParseFS(te.fsys, p)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	te.mu.Lock()
	te.templates = tmpl
	te.mu.Unlock()
	return nil
}

// page returns the base templates plus the named page
func (te *TemplateEngine) page(name string) (*template.Template, error) {
	if te.reload {
		if err := te.Load(); err != nil {
			return nil, err
		}
	}

	te.mu.RLock()
	base := te.templates
	te.mu.RUnlock()
	if base == nil {
		return nil, errors.New("templates not loaded")
	}

	tmpl, err := base.Clone()
	if err != nil {
		return nil, err
	}
	return tmpl.ParseFS(te.fsys, path.Join("pages", name+".html"))
}

// Render renders a page inside the layout
func (te *TemplateEngine) Render(w io.Writer, name string, data interface{}) error {
	tmpl, err := te.page(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// RenderContent renders only the content template without layout (for HTMX)
func (te *TemplateEngine) RenderContent(w io.Writer, name string, data interface{}) error {
	tmpl, err := te.page(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "content", data)
}

// RenderPartial renders a named template (partial)
func (te *TemplateEngine) RenderPartial(w io.Writer, name string, data interface{}) error {
	if te.reload {
		if err := te.Load(); err != nil {
			return err
		}
	}
	te.mu.RLock()
	tmpl := te.templates
	te.mu.RUnlock()
	if tmpl == nil {
		return errors.New("templates not loaded")
	}
	return tmpl.ExecuteTemplate(w, name, data)
}
