package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/sillygoals/sillygoals/internal/observability/logger"
)

//go:embed templates
var templatesFS embed.FS

// Renderer holds the parsed page templates. Each page under
// templates/pages defines a "content" block rendered inside the shared
// layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: glob pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", name, err)
		}
		base := path.Base(name)
		pages[base[:len(base)-len(".html")]] = t
	}
	return &Renderer{pages: pages}, nil
}

// Page renders a full page inside the layout. Render errors surface as
// a 500 because a half-written body is worse than an error page.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	rd.execute(w, r, status, name, "layout", data)
}

// Partial renders just the page's content block, for htmx swaps.
func (rd *Renderer) Partial(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	rd.execute(w, r, status, name, "content", data)
}

func (rd *Renderer) execute(w http.ResponseWriter, r *http.Request, status int, name, block string, data any) {
	t, ok := rd.pages[name]
	if !ok {
		logger.From(r.Context()).Error("unknown template", logger.String("template", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		logger.From(r.Context()).Error("template render failed",
			logger.String("template", name), logger.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
