// Package web holds the embedded templates and static assets and the gin
// renderer that composes each page with the shared layout.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"github.com/mikepea/yatube/pkg/yatube/models"
)

//go:embed templates static
var assets embed.FS

const (
	layoutFile  = "templates/base.html"
	includeGlob = "templates/includes/*.html"
)

// Layout is embedded by every page view-model; base.html reads it.
type Layout struct {
	Title  string
	Viewer *models.User
}

// Authenticated reports whether the page is rendered for a logged-in user.
func (l Layout) Authenticated() bool {
	return l.Viewer != nil
}

// NotFoundPage is rendered for unknown routes and missing records.
type NotFoundPage struct {
	Layout
	Path string
}

// Renderer implements gin's render.HTMLRender with one template set per page.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every page under templates/ together with the layout and
// includes. mediaURL turns a stored media key into a public URL.
func NewRenderer(mediaURL func(key string) string) (*Renderer, error) {
	if mediaURL == nil {
		mediaURL = func(key string) string { return "/media/" + key }
	}
	funcs := template.FuncMap{
		"mediaURL":     mediaURL,
		"date":         formatDate,
		"linebreaksbr": linebreaksbr,
		"truncate":     truncate,
	}

	r := &Renderer{templates: map[string]*template.Template{}}
	err := fs.WalkDir(assets, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layoutFile || strings.HasPrefix(p, "templates/includes/") || path.Ext(p) != ".html" {
			return nil
		}
		name := strings.TrimPrefix(p, "templates/")
		tmpl, err := template.New(path.Base(p)).Funcs(funcs).ParseFS(assets, layoutFile, includeGlob, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		r.templates[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MustRenderer is NewRenderer that panics on a broken template.
func MustRenderer(mediaURL func(key string) string) *Renderer {
	r, err := NewRenderer(mediaURL)
	if err != nil {
		panic(err)
	}
	return r
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Instance returns the render for a page; name is the path under templates/.
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.templates[name]
	if !ok {
		panic(fmt.Sprintf("web: unknown template %q", name))
	}
	return render.HTML{Template: tmpl, Name: "base", Data: data}
}

// StaticFS serves the embedded static directory.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func formatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

func linebreaksbr(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
}

func truncate(n int, s string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
