package echodash

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
)

const recentActivityLimit = 5

type resourceApi struct {
	opts *Options
}

type (
	homeData struct {
		Stats  resource.Stats
		Recent []resource.Activity
	}

	formData struct {
		Form    *resource.Form
		Current resource.Record // edited record, or its asset references
		Action  string
		Cancel  string
	}

	confirmData struct {
		Def   *resource.Definition
		ID    string
		Title string
		Err   string
	}
)

func registerResourceRoutes(g *echo.Group, opts *Options) {
	api := &resourceApi{opts: opts}
	g.GET("/", api.home)
	g.GET("/r/:resource", api.list)
	g.GET("/r/:resource/new", api.newForm)
	g.POST("/r/:resource/new", api.create)
	g.GET("/r/:resource/:id/edit", api.editForm)
	g.POST("/r/:resource/:id/edit", api.update)
	g.GET("/r/:resource/:id/delete", api.confirmDelete)
	g.POST("/r/:resource/:id/delete", api.delete)
}

func (api *resourceApi) page(ctx echo.Context, title, active string, data interface{}) *page {
	return &page{
		Title:   title,
		Session: getContextSession(ctx),
		Nav:     api.opts.Registry.All(),
		Active:  active,
		CSRF:    getContextCSRF(ctx),
		Notice:  ctx.QueryParam("notice"),
		Data:    data,
	}
}

// definition returns the definition named by the :resource param, if action is available on it.
func (api *resourceApi) definition(ctx echo.Context, action string) (*resource.Definition, error) {
	def, err := api.opts.Registry.Lookup(ctx.Param("resource"))
	if err != nil {
		return nil, err
	}
	if !def.Can(action) {
		return nil, errHttpForbidden
	}
	return def, nil
}

func listURL(def *resource.Definition, notice string) string {
	u := "/r/" + def.Name
	if notice != "" {
		u += "?" + url.Values{"notice": {notice}}.Encode()
	}
	return u
}

// stale reports whether the request went away while a backend call was pending.
// Nothing must be rendered then.
func stale(ctx context.Context) bool {
	return ctx.Err() != nil
}

// home shows the dashboard totals; failures are logged and zeros shown.
func (api *resourceApi) home(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	var data homeData
	var err error
	if data.Stats, err = api.opts.Service.Stats(reqCtx); err != nil {
		api.opts.Logger.Warn("fetching dashboard stats", err)
	}
	if data.Recent, err = api.opts.Service.Recent(reqCtx, recentActivityLimit); err != nil {
		api.opts.Logger.Warn("fetching recent activities", err)
	}
	if stale(reqCtx) {
		return nil
	}
	return ctx.Render(http.StatusOK, "home", api.page(ctx, "Dashboard", "", &data))
}

// list streams the page shell with a loading indicator, then fetches and renders the collection.
func (api *resourceApi) list(ctx echo.Context) error {
	def, err := api.definition(ctx, resource.ActionList)
	if err != nil {
		return err
	}
	if def.Singleton {
		return api.singleton(ctx, def)
	}

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	resp.WriteHeader(http.StatusOK)
	if err = ctx.Echo().Renderer.Render(resp, "list/list_loading", api.page(ctx, def.Label, def.Name, def), ctx); err != nil {
		return err
	}
	resp.Flush()

	reqCtx := ctx.Request().Context()
	lv := resource.LoadList(reqCtx, api.opts.Service, def, ctx.QueryParam("q"))
	if stale(reqCtx) {
		return nil
	}
	return ctx.Echo().Renderer.Render(resp, "list/list_body", api.page(ctx, def.Label, def.Name, lv), ctx)
}

// singleton opens the edit form of a single-record resource straight from the list fetch.
func (api *resourceApi) singleton(ctx echo.Context, def *resource.Definition) error {
	reqCtx := ctx.Request().Context()
	rec, err := api.opts.Service.Single(reqCtx, def)
	if stale(reqCtx) {
		return nil
	}
	if err != nil {
		return err
	}
	form := resource.NewEditForm(def, rec)
	return api.renderForm(ctx, http.StatusOK, form, rec)
}

func (api *resourceApi) renderForm(ctx echo.Context, code int, form *resource.Form, current resource.Record) error {
	def := form.Def
	if current == nil {
		current = form.Assets()
	}
	data := &formData{Form: form, Current: current, Cancel: listURL(def, "")}
	title := "Add " + def.Singular
	if form.IsEdit() {
		data.Action = "/r/" + def.Name + "/" + form.ID + "/edit"
		title = "Edit " + def.Singular
	} else {
		data.Action = "/r/" + def.Name + "/new"
	}
	if def.Singleton {
		data.Cancel = "/"
	}
	return ctx.Render(code, "form", api.page(ctx, title, def.Name, data))
}

func (api *resourceApi) newForm(ctx echo.Context) error {
	def, err := api.definition(ctx, resource.ActionCreate)
	if err != nil {
		return err
	}
	return api.renderForm(ctx, http.StatusOK, resource.NewCreateForm(def), nil)
}

func (api *resourceApi) editForm(ctx echo.Context) error {
	def, err := api.definition(ctx, resource.ActionEdit)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()
	rec, err := api.opts.Service.Get(reqCtx, def, ctx.Param("id"))
	if stale(reqCtx) {
		return nil
	}
	if err != nil {
		return err
	}
	return api.renderForm(ctx, http.StatusOK, resource.NewEditForm(def, rec), rec)
}

func (api *resourceApi) create(ctx echo.Context) error {
	def, err := api.definition(ctx, resource.ActionCreate)
	if err != nil {
		return err
	}
	return api.submit(ctx, def, resource.ModeCreate, "")
}

func (api *resourceApi) update(ctx echo.Context) error {
	def, err := api.definition(ctx, resource.ActionEdit)
	if err != nil {
		return err
	}
	return api.submit(ctx, def, resource.ModeEdit, ctx.Param("id"))
}

// submit rebuilds the form from its seed, then resets it or submits the posted draft.
// The list is reloaded after a successful write; failures re-render the form with the draft.
func (api *resourceApi) submit(ctx echo.Context, def *resource.Definition, mode, id string) error {
	form, err := resource.RestoreForm(def, mode, id, ctx.FormValue("_seed"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form").SetInternal(err)
	}
	if ctx.FormValue("_action") == "reset" {
		return api.renderForm(ctx, http.StatusOK, form, nil)
	}

	values, err := ctx.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form").SetInternal(err)
	}
	draft := make(map[string]string, len(values))
	for k := range values {
		if !strings.HasPrefix(k, "_") {
			draft[k] = values.Get(k)
		}
	}
	form.Set(draft)

	if !form.IsEdit() {
		closers, err := attachFiles(ctx, form)
		defer func() {
			for _, c := range closers {
				_ = c.Close()
			}
		}()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid upload").SetInternal(err)
		}
	}

	reqCtx := ctx.Request().Context()
	res, err := form.Submit(reqCtx, api.opts.Service, api.opts.Validator, getContextSession(ctx))
	if stale(reqCtx) {
		return nil
	}
	if err != nil {
		code, _, ok := viewError(err)
		if !ok {
			return err
		}
		return api.renderForm(ctx, code, form, nil)
	}
	return ctx.Redirect(http.StatusSeeOther, listURL(def, res.Message))
}

// attachFiles adds the uploaded attachments to form. Empty file inputs are ignored.
func attachFiles(ctx echo.Context, form *resource.Form) ([]io.Closer, error) {
	var closers []io.Closer
	for _, att := range form.Def.Attachments {
		fh, err := ctx.FormFile(att.Name)
		if err != nil {
			if err == http.ErrMissingFile || err == http.ErrNotMultipart {
				continue
			}
			return closers, errors.Wrap(err, "reading "+att.Name)
		}
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return closers, errors.Wrap(err, "opening "+fh.Filename)
		}
		closers = append(closers, f)
		form.Attach(resource.File{
			Field:       att.Name,
			Filename:    fh.Filename,
			ContentType: partContentType(fh),
			Content:     f,
		})
	}
	return closers, nil
}

func partContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get(echo.HeaderContentType); ct != "" {
		return ct
	}
	return echo.MIMEOctetStream
}

// confirmDelete asks for an explicit confirmation before deleting.
func (api *resourceApi) confirmDelete(ctx echo.Context) error {
	def, err := api.definition(ctx, resource.ActionDelete)
	if err != nil {
		return err
	}
	data := &confirmData{Def: def, ID: ctx.Param("id")}
	reqCtx := ctx.Request().Context()
	if rec, err := api.opts.Service.Get(reqCtx, def, data.ID); err == nil {
		data.Title = rec.String(def.Fields[0].Name)
	}
	if stale(reqCtx) {
		return nil
	}
	return ctx.Render(http.StatusOK, "confirm", api.page(ctx, "Delete "+def.Singular, def.Name, data))
}

// delete reloads the list on success. On failure the error is shown and the list is left as is.
func (api *resourceApi) delete(ctx echo.Context) error {
	def, err := api.definition(ctx, resource.ActionDelete)
	if err != nil {
		return err
	}
	data := &confirmData{Def: def, ID: ctx.Param("id")}
	reqCtx := ctx.Request().Context()
	res, err := api.opts.Service.Delete(reqCtx, getContextSession(ctx), def, data.ID)
	if stale(reqCtx) {
		return nil
	}
	if err != nil {
		code, msg, ok := viewError(err)
		if !ok {
			return err
		}
		data.Err = msg
		return ctx.Render(code, "confirm", api.page(ctx, "Delete "+def.Singular, def.Name, data))
	}
	return ctx.Redirect(http.StatusSeeOther, listURL(def, res.Message))
}
