package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
)

// ErrorResponse is the uniform error envelope for both proxy endpoints.
// Details carries internal diagnostics (e.g. the raw upstream body) for
// development use; the buyer-facing UI only shows generic messaging.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondRaw passes an upstream body through unmodified.
func respondRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// decodeBody decodes an optional JSON body into dst. An empty body is fine
// (all init fields have defaults); a malformed one yields a field-specific
// message where the decoder can name the offending field.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func decodeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		switch typeErr.Type.Kind() {
		case reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64:
			return typeErr.Field + " must be a number"
		case reflect.String:
			return typeErr.Field + " must be a string"
		default:
			return typeErr.Field + " must be an object"
		}
	}
	return "Invalid JSON body"
}
