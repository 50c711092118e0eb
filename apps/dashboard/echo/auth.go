package echodash

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
)

const contextSessionKey = "session"

const invalidCredentialsText = "invalid credentials"

// sessionMiddleware decodes the session cookie into the echo.Context.
// Requests without a valid cookie carry an anonymous session.
func sessionMiddleware(mgr *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(contextSessionKey, mgr.FromRequest(ctx.Request()))
			return next(ctx)
		}
	}
}

// requireSession redirects anonymous requests to the login page.
func requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !getContextSession(ctx).Authenticated() {
			return ctx.Redirect(http.StatusSeeOther, "/login")
		}
		return next(ctx)
	}
}

func getContextSession(ctx echo.Context) session.Session {
	sess, _ := ctx.Get(contextSessionKey).(session.Session)
	return sess
}

func getContextCSRF(ctx echo.Context) string {
	token, _ := ctx.Get("csrf").(string)
	return token
}

type authApi struct {
	opts *Options
}

type loginData struct {
	Username string
	Errors   map[string]string
	Err      string
}

func registerAuthRoutes(app *echo.Echo, opts *Options) {
	api := &authApi{opts: opts}
	app.GET("/login", api.loginPage)
	app.POST("/login", api.login)
	app.POST("/logout", api.logout)
}

func (api *authApi) render(ctx echo.Context, code int, data *loginData) error {
	return ctx.Render(code, "login", &page{
		Title:   "Login",
		Session: getContextSession(ctx),
		CSRF:    getContextCSRF(ctx),
		Data:    data,
	})
}

func (api *authApi) loginPage(ctx echo.Context) error {
	if getContextSession(ctx).Authenticated() {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}
	return api.render(ctx, http.StatusOK, &loginData{})
}

// login verifies the credentials against the backend and stores the issued token in the session cookie.
func (api *authApi) login(ctx echo.Context) error {
	username := ctx.FormValue("username")
	sess, err := api.opts.Sessions.Login(ctx.Request().Context(), api.opts.Auth, username, ctx.FormValue("password"))
	if err != nil {
		data := &loginData{Username: username}
		switch origErr := errors.Cause(err).(type) {
		case *core.ValidationError:
			data.Errors = origErr.FieldMap()
			return api.render(ctx, http.StatusBadRequest, data)
		default:
			if origErr == session.ErrInvalidCredentials {
				data.Err = invalidCredentialsText
				return api.render(ctx, http.StatusUnauthorized, data)
			}
			code, msg, ok := viewError(err)
			if !ok {
				return err
			}
			data.Err = msg
			return api.render(ctx, code, data)
		}
	}

	cookie, err := api.opts.Sessions.Cookie(sess)
	if err != nil {
		return errors.Wrap(err, "creating session cookie")
	}
	ctx.SetCookie(cookie)
	api.opts.Logger.Info("administrator logged in", sess)
	return ctx.Redirect(http.StatusSeeOther, "/")
}

// logout forgets the session; the token is not revoked on the backend.
func (api *authApi) logout(ctx echo.Context) error {
	ctx.SetCookie(api.opts.Sessions.ClearCookie())
	return ctx.Redirect(http.StatusSeeOther, "/login")
}
