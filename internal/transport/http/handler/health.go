package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthHandler answers liveness probes and reports which account store is active.
type HealthHandler struct {
	storeBackend string
}

func NewHealthHandler(storeBackend string) *HealthHandler {
	return &HealthHandler{storeBackend: storeBackend}
}

// HealthEnvelope is the body of /health-check/status.
type HealthEnvelope struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "status":
		writeJSON(w, http.StatusOK, HealthEnvelope{Status: "ok", Store: h.storeBackend})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
