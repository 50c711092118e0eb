package echodash

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// page is the data passed to every template.
type page struct {
	Title   string
	Session session.Session
	Nav     []*resource.Definition
	Active  string // active resource name, "" for the dashboard home
	CSRF    string
	Notice  string
	Data    interface{}
}

// renderer parses each page template along with _base.gohtml.
type renderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(assetBaseURL string, strict bool) (*renderer, error) {
	funcs := template.FuncMap{
		"asset": func(ref string) string { return resource.ResolveAssetURL(assetBaseURL, ref) },
		"display": func(def *resource.Definition, rec resource.Record, field string) string {
			return def.Display(rec, field)
		},
		"isImage": func(att resource.Attachment) bool { return strings.Contains(att.Accept, "image") },
		"checked": func(v string) bool { return v == "true" },
	}

	fps, err := fs.Glob(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}
	r := &renderer{templates: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		name := strings.TrimSuffix(fname, ".gohtml")
		tmpl, err := template.New(fname).Funcs(funcs).ParseFS(templateFS, "templates/_base.gohtml", fp)
		if err != nil {
			return nil, errors.Wrap(err, "parsing "+fname)
		}
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Render executes the page template name, or one of its blocks when name is "page/block".
func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	block := ""
	if i := strings.Index(name, "/"); i >= 0 {
		name, block = name[:i], name[i+1:]
	}
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	if block == "" {
		block = name + ".gohtml"
	}
	return tmpl.ExecuteTemplate(w, block, data)
}
