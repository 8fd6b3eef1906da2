// Package httpx provides HTTP response utilities and the shared error envelope.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the uniform JSON wrapper used for all error responses.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Method     string `json:"method"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

// Fail writes the error envelope for the given status and message.
func Fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, status, Envelope{
		Success:    false,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       r.URL.Path,
		Method:     r.Method,
		Message:    message,
		Error:      http.StatusText(status),
	})
}
