package rest

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the JSON envelope returned by all API error paths.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes the payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// WriteError writes an ErrorResponse with the given status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteInternalError logs the underlying error and responds with a generic
// message so internals never leak to the caller.
func WriteInternalError(w http.ResponseWriter, err error) {
	log.Errorf("internal error: %v", err)
	WriteError(w, http.StatusInternalServerError, "internal server error")
}
