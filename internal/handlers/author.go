package handlers

import (
	"net/http"

	"github.com/crucial707/bookshelf/internal/metrics"
	"github.com/crucial707/bookshelf/internal/repo"
)

type AuthorHandler struct {
	Repo     *repo.AuthorRepo
	Activity *ActivityRecorder
}

func (h *AuthorHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)

	authors, err := h.Repo.List(r.Context(), skip, limit)
	if err != nil {
		internalError(w, r, "list authors", err)
		return
	}
	writeJSON(w, http.StatusOK, authors)
}

func (h *AuthorHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FirstName string  `json:"first_name" validate:"required,max=255"`
		LastName  string  `json:"last_name" validate:"required,max=255"`
		Bio       *string `json:"bio"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	author, err := h.Repo.Create(r.Context(), input.FirstName, input.LastName, input.Bio)
	if err != nil {
		internalError(w, r, "create author", err)
		return
	}

	metrics.RecordMutation("author", "create")
	h.Activity.Record(r, "create", "author", author.ID, author.FirstName+" "+author.LastName)
	writeJSON(w, http.StatusOK, author)
}
