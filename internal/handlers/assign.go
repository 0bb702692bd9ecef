package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/evroutex/fleet-dispatch/internal/assign"
	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/middleware"
)

// AssignHandler runs an assignment batch from an uploaded order table.
type AssignHandler struct {
	Engine  *assign.Engine
	Timeout time.Duration
}

// Assign accepts an order table as a multipart "csv_file" part or a raw
// CSV body, clusters it against the registered driver pool and commits
// the resulting assignment. Admin-scoped.
func (h *AssignHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := auth.AuthorizeAdmin(claims); err != nil {
		writeError(w, err)
		return
	}

	body, err := orderTableBody(r)
	if err != nil {
		http.Error(w, "csv upload required", http.StatusBadRequest)
		return
	}
	defer body.Close()

	orders, err := assign.ParseCSV(body)
	if err != nil {
		writeError(w, err)
		return
	}

	// Clustering is CPU-bound; bound it so a huge table cannot stall the
	// request forever.
	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	assignment, err := h.Engine.Run(ctx, orders)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func orderTableBody(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("csv_file")
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	if r.Body == nil {
		return nil, http.ErrMissingFile
	}
	return r.Body, nil
}
