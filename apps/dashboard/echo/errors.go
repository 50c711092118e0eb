package echodash

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/services/restapi"
)

var errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "this action is not available")

type errorData struct {
	Code    int
	Message string
}

// viewError maps the errors a view displays inline to their status code and message.
// ok is false for any other error, which is left to the HTTPErrorHandler.
func viewError(err error) (code int, msg string, ok bool) {
	switch origErr := errors.Cause(err).(type) {
	case *core.ValidationError:
		return http.StatusBadRequest, origErr.Error(), true
	case *restapi.APIError:
		return http.StatusBadGateway, origErr.Error(), true
	case *restapi.TransportError:
		return http.StatusBadGateway, origErr.Error(), true
	default:
		switch origErr {
		case core.ErrNotAuthorized:
			return http.StatusUnauthorized, origErr.Error(), true
		case resource.ErrSubmitInProgress:
			return http.StatusConflict, origErr.Error(), true
		}
	}
	return 0, "", false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering errors as an HTML page.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func(), reg *resource.Registry) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		if vCode, vMsg, ok := viewError(err); ok {
			code, message = vCode, vMsg
		} else {
			switch origErr := errors.Cause(err).(type) {
			case *echo.HTTPError:
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				if msg, ok := origErr.Message.(string); ok {
					message = msg
				} else {
					message = http.StatusText(code)
				}
			default:
				switch origErr {
				case resource.ErrUnknown, resource.ErrNotFound:
					code = http.StatusNotFound
					message = err.Error()
				case resource.ErrActionForbidden:
					code = http.StatusForbidden
					message = err.Error()
				default: // any other error is a server error
					code = http.StatusInternalServerError
					message = http.StatusText(http.StatusInternalServerError)
					logger.Error(message, errors.Wrap(err, message), getContextSession(ctx), map[string]interface{}{
						"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
						"path":       ctx.Request().URL.Path,
					})

					// shutting down...
					if core.IsShutdown(err) {
						signalShutdown()
					}
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				sess := getContextSession(ctx)
				p := &page{
					Title:   http.StatusText(code),
					Session: sess,
					CSRF:    getContextCSRF(ctx),
					Data:    &errorData{Code: code, Message: message},
				}
				if sess.Authenticated() {
					p.Nav = reg.All()
				}
				err = ctx.Render(code, "error", p)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
