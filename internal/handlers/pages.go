package handlers

import (
	"net/http"
)

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Dashboard/Index", nil)
}

func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Reports/Index", nil)
}

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("health check", "err", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
