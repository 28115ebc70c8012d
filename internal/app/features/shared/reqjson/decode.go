// Package reqjson decodes JSON request bodies for the API handlers.
package reqjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/congregate/internal/app/system/apperr"
)

// MaxBodyBytes bounds a JSON request body.
const MaxBodyBytes int64 = 64 << 10

// Decode reads one JSON object from r into v. Malformed, oversized and
// empty bodies are reported as a validation error.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.Validation("Request body is too large.")
		case errors.Is(err, io.EOF):
			return apperr.Validation("Request body is required.")
		default:
			return apperr.Validation("Request body must be valid JSON.")
		}
	}
	return nil
}
