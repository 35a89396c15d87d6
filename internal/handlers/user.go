package handlers

import (
	"net/http"

	"github.com/crucial707/bookshelf/internal/middleware"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct{}

// ==========================
// Me
// ==========================

// Me returns the authenticated user. Must run behind middleware.RequireUser.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONError(w, middleware.MsgCouldNotValidate, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
