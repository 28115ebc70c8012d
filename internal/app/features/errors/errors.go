// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"go.uber.org/zap"
)

// messageBody is the shape of every error response.
type messageBody struct {
	Message string `json:"message"`
}

// ErrorLogger turns workflow errors into JSON responses and logs them.
// Dependency failures are logged at error level with their cause; client
// errors are logged at debug level. The cause is never sent to the client.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Respond writes err as {"message": ...} with the status for its kind.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("kind", kind.String()),
		zap.Int("status", status),
	}
	if kind == apperr.KindDependency {
		e.Log.Error("request failed", append(fields, zap.Error(err))...)
	} else {
		e.Log.Debug("request rejected", append(fields, zap.String("message", apperr.MessageOf(err)))...)
	}

	WriteMessage(w, status, apperr.MessageOf(err))
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, messageBody{Message: msg})
}
