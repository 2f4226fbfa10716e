package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mossdale/dropforge/internal/domain"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string            `json:"error"`
	Kind  string            `json:"kind,omitempty"`
	Retry bool              `json:"retryable,omitempty"`
	Field map[string]string `json:"fields,omitempty"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError classifies a service error through the error taxonomy
// and sends the matching status. The retryable flag tells clients which
// conflicts are worth refreshing and resubmitting.
func respondServiceError(w http.ResponseWriter, err error) {
	kind := domain.Kind(err)
	respondJSON(w, statusForKind(kind), ErrorResponse{
		Error: userMessageForError(err, kind),
		Kind:  string(kind),
		Retry: domain.Retryable(err),
	})
}
