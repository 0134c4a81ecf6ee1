package handler

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

const layoutFile = "templates/layout.html"

var templateFuncs = template.FuncMap{
	"rate": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}

// Renderer executes page templates inside the shared layout.
// Each page is parsed into its own set so their "content" blocks do not collide.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout plus every templates/pages/*.html file of fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no page templates found")
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page name with data to w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
