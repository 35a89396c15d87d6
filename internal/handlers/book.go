package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/bookshelf/internal/metrics"
	"github.com/crucial707/bookshelf/internal/models"
	"github.com/crucial707/bookshelf/internal/repo"
)

type BookHandler struct {
	Repo     *repo.BookRepo
	Activity *ActivityRecorder
}

//
// ==========================
// List Books
// ==========================
//

func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)

	books, err := h.Repo.ListWithAuthors(r.Context(), skip, limit)
	if err != nil {
		internalError(w, r, "list books", err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

//
// ==========================
// Create Book
// ==========================
//

func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string  `json:"name" validate:"required,max=255"`
		Description string  `json:"description"`
		Pages       int     `json:"pages" validate:"gte=0,max=2147483647"`
		Img         *string `json:"img"`
		AuthorID    int     `json:"author_id"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	book, err := h.Repo.Create(r.Context(), models.Book{
		Name:        input.Name,
		Description: input.Description,
		Pages:       input.Pages,
		Img:         input.Img,
		AuthorID:    input.AuthorID,
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		JSONError(w, MsgAuthorNotFound, http.StatusNotFound)
		return
	case errors.Is(err, repo.ErrDuplicateBook):
		JSONError(w, MsgBookExists, http.StatusBadRequest)
		return
	case err != nil:
		internalError(w, r, "create book", err)
		return
	}

	metrics.RecordMutation("book", "create")
	h.Activity.Record(r, "create", "book", book.ID, book.Name)
	writeJSON(w, http.StatusOK, book)
}

//
// ==========================
// Delete Book
// ==========================
//

func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if errors.Is(err, strconv.ErrRange) {
		JSONError(w, MsgBookNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, "invalid book id", http.StatusBadRequest)
		return
	}

	err = h.Repo.Delete(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, MsgBookNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "delete book", err)
		return
	}

	metrics.RecordMutation("book", "delete")
	h.Activity.Record(r, "delete", "book", id, "")
	slog.InfoContext(r.Context(), "book deleted", "book_id", id)
	w.WriteHeader(http.StatusNoContent)
}
