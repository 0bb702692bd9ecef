package handlers

import (
	"net/http"

	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/middleware"
	"github.com/evroutex/fleet-dispatch/internal/view"
)

// AdminHandler serves the admin summary view.
type AdminHandler struct {
	View *view.View
}

// Summary returns driver count and assignment coverage.
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := auth.AuthorizeAdmin(claims); err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.View.Summarize(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
