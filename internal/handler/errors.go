package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"postfeed/internal/common"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func WriteSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// statusOf maps a service error to its HTTP status and callable status code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "permission-denied"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "not-found"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "invalid-argument"
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, "already-exists"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

var messages = map[string]string{
	"unauthenticated":   "authentication required",
	"permission-denied": "permission denied",
	"not-found":         "not found",
	"already-exists":    "already exists",
	"internal":          "internal error",
}

// publicMessage keeps validation details and hides everything else.
func publicMessage(err error, code string) string {
	if code == "invalid-argument" {
		return err.Error()
	}
	return messages[code]
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger().Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	WriteError(w, publicMessage(err, code), status)
}
