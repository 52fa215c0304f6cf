// Package httputil provides the response writers used by the mock server.
package httputil

import (
	"encoding/json"
	"net/http"
)

// ContentTypeJSON is the content type of every mock response.
const ContentTypeJSON = "application/json"

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response with the given status code.
// The error response includes an error code and a human-readable message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, errCode, message string) {
	WriteError(w, http.StatusInternalServerError, errCode, message)
}

// WriteBody writes raw bytes as the response body. Mock bodies are passed
// through untouched, valid JSON or not.
func WriteBody(w http.ResponseWriter, status int, body []byte) {
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// WriteEmpty writes a status with no body.
func WriteEmpty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
