package handlers

import (
	"net/http"
)

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"service": "postfeed", "status": "ok"}, http.StatusOK)
}

// Health pings the database and reports how many application tables exist.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, err := h.HealthService.Check(r.Context())
	if err != nil {
		h.logger().Error(r.Context(), "health check failed", "error", err)
		WriteSuccess(w, status, http.StatusServiceUnavailable)
		return
	}

	WriteSuccess(w, status, http.StatusOK)
}
