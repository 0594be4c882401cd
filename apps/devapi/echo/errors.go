package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/core/record"
	"github.com/trezcool/preskool/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errInvalidBody          = echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that answers with the error envelope.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string
		var fldErrs map[string]string

		if errs, ok := core.TranslateErrors(err, translator); ok {
			code = http.StatusBadRequest
			message = "invalid data"
			if vErr, isVErr := errors.Cause(err).(*core.ValidationError); isVErr && vErr.Err != nil {
				message = vErr.Err.Error()
			}
			fldErrs = errs
		} else {
			switch origErr := errors.Cause(err).(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = "missing or malformed jwt"
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = httpMessage(origErr)
			case *entity.ErrUnknownEntity:
				code = http.StatusNotFound
				message = origErr.Error()
			default:
				switch errors.Cause(err) {
				case record.ErrNotFound, user.ErrNotFound:
					code = http.StatusNotFound
					message = "not found"
				default: // any other error is a server error
					code = http.StatusInternalServerError
					message = http.StatusText(http.StatusInternalServerError)

					var usr user.User
					if claims, cErr := getContextClaims(ctx); cErr == nil {
						usr.Username = claims.Username
					}
					logger.Error(message, errors.Wrap(err, message), usr)

					if ctx.Echo().Debug {
						message = err.Error()
					}
					// shutting down...
					if core.IsShutdown(err) {
						signalShutdown()
					}
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, failure(message, fldErrs))
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func httpMessage(herr *echo.HTTPError) string {
	if msg, ok := herr.Message.(string); ok {
		return msg
	}
	return http.StatusText(herr.Code)
}
