package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/bookshelf/internal/repo"
)

func TestAuthorHandler_CreateAuthor(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO authors`).
		WithArgs("Jane", "Austen", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "bio"}).AddRow(4, "Jane", "Austen", nil))

	h := &AuthorHandler{Repo: repo.NewAuthorRepo(db)}
	rr := httptest.NewRecorder()
	h.CreateAuthor(rr, httptest.NewRequest("POST", "/authors/create", strings.NewReader(`{"first_name":"Jane","last_name":"Austen"}`)))

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"bio":null`) {
		t.Errorf("expected null bio: %s", rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthorHandler_CreateAuthor_MissingLastName(t *testing.T) {
	h := &AuthorHandler{}
	rr := httptest.NewRecorder()
	h.CreateAuthor(rr, httptest.NewRequest("POST", "/authors/create", strings.NewReader(`{"first_name":"Jane"}`)))
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), `"last_name":"required"`) {
		t.Errorf("got %d %s", rr.Code, rr.Body.String())
	}
}

func TestAuthorHandler_ListAuthors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM authors`).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "bio"}).AddRow(2, "Iain", "Banks", "culture"))

	h := &AuthorHandler{Repo: repo.NewAuthorRepo(db)}
	rr := httptest.NewRecorder()
	h.ListAuthors(rr, httptest.NewRequest("GET", "/authors?skip=1&limit=2", nil))

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"last_name":"Banks"`) {
		t.Errorf("got %d %s", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
