// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and renders the matching
// error page. Handlers hold one and call it instead of http.Error.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	user := "anonymous"
	if u, ok := auth.CurrentUser(r); ok {
		user = u.Name
	}
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("ip", ratelimit.ClientIP(r)),
		zap.String("user", user),
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}

// LogServerError logs at Error and renders a 500 page with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs at Warn and renders a 400 page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs at Warn and renders a 403 page with userMsg.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, nil)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogNotFound logs at Info and renders a 404 page with userMsg.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg, userMsg, backURL string) {
	e.Log.Info(logMsg, e.fields(r, nil)...)
	RenderNotFound(w, r, userMsg, backURL)
}

// RenderAppError translates a store error by its apperr kind: NotFound 404,
// Validation 400, Authorization 403, Authentication redirect to /login.
// Anything else is logged as a server error.
func (e *ErrorLogger) RenderAppError(w http.ResponseWriter, r *http.Request, logMsg string, err error, backURL string) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		e.LogNotFound(w, r, logMsg, apperr.Message(err, "Not found."), backURL)
	case apperr.KindValidation:
		e.LogBadRequest(w, r, logMsg, err, apperr.Message(err, "Invalid input."), backURL)
	case apperr.KindAuthorization:
		e.LogForbidden(w, r, logMsg, apperr.Message(err, "You do not have permission to do that."), backURL)
	case apperr.KindAuthentication:
		e.Log.Info(logMsg, e.fields(r, err)...)
		RenderUnauthorized(w, r)
	default:
		e.LogServerError(w, r, logMsg, err, "A server error occurred.", backURL)
	}
}
