package echoapi

import (
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/assets"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
)

const (
	baseTemplate = "_base.gohtml"
	templateExt  = ".gohtml"
)

// pageRenderer renders every page template wrapped in the base layout.
type pageRenderer struct {
	templates map[string]*template.Template // {name without ext: *Template}
}

var _ echo.Renderer = (*pageRenderer)(nil)

func newPageRenderer(strict bool) (*pageRenderer, error) {
	fps, err := fs.Glob(assets.FS, path.Join(assets.TemplatesDir, "*"+templateExt))
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}

	r := &pageRenderer{templates: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := template.ParseFS(assets.FS, path.Join(assets.TemplatesDir, baseTemplate), fp)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing template %s", fname)
		}
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.templates[strings.TrimSuffix(fname, templateExt)] = tmpl
	}
	return r, nil
}

func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.Execute(w, data)
}

type (
	pages struct {
		appName string
		svc     grade.ServiceInterface
	}

	pageData struct {
		AppName string
		Grades  []grade.Grade
	}
)

func registerPages(e *echo.Echo, conf *core.Config, svc grade.ServiceInterface) {
	p := pages{appName: conf.AppName, svc: svc}

	e.GET("/", p.home)
	e.GET("/grades", p.grades)
}

func (p *pages) home(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "index", pageData{AppName: p.appName})
}

func (p *pages) grades(ctx echo.Context) error {
	coll, err := p.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing grades")
	}
	return ctx.Render(http.StatusOK, "grades", pageData{AppName: p.appName, Grades: coll.Grades})
}
