package handlers

import (
	"log/slog"
	"net/http"

	"github.com/crucial707/bookshelf/internal/middleware"
	"github.com/crucial707/bookshelf/internal/repo"
)

// ActivityRecorder writes catalog activity for the authenticated user.
// A nil recorder or repo records nothing.
type ActivityRecorder struct {
	Repo *repo.ActivityRepo
}

// Record never fails the request; write errors are logged.
func (a *ActivityRecorder) Record(r *http.Request, action, resource string, id int, detail string) {
	if a == nil || a.Repo == nil {
		return
	}
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		return
	}
	if err := a.Repo.Record(r.Context(), user.ID, action, resource, id, detail); err != nil {
		slog.WarnContext(r.Context(), "activity not recorded", "error", err, "action", action, "resource", resource)
	}
}

// ActivityHandler serves the catalog activity log.
type ActivityHandler struct {
	Repo *repo.ActivityRepo
}

// ListActivity returns recent entries, newest first. Query: skip, limit.
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)

	entries, err := h.Repo.List(r.Context(), skip, limit)
	if err != nil {
		internalError(w, r, "list activity", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
