package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/bookshelf/internal/auth"
	"github.com/crucial707/bookshelf/internal/repo"
)

var userCols = []string{"id", "username", "email", "password_hash"}

func newAuthHandler(t *testing.T, db *sql.DB) (*AuthHandler, *auth.PasswordHasher) {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(auth.SchemeBcrypt, auth.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}
	svc := auth.NewService(
		repo.NewUserRepo(db),
		hasher,
		auth.NewTokenIssuer("test-secret", 30*time.Minute),
		auth.NewTokenVerifier("test-secret", nil),
		nil,
	)
	return &AuthHandler{Auth: svc}, hasher
}

func formRequest(username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthHandler_Token(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h, hasher := newAuthHandler(t, db)
	hash, err := hasher.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	mock.ExpectQuery(`WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "a@x.io", hash))

	rr := httptest.NewRecorder()
	h.Token(rr, formRequest("alice", "pw1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("Token status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.AccessToken == "" || out.TokenType != "bearer" {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Token_InvalidCredentials(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h, hasher := newAuthHandler(t, db)
	hash, _ := hasher.Hash("pw1")

	mock.ExpectQuery(`WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "a@x.io", hash))
	mock.ExpectQuery(`WHERE username = \$1`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	wrong := httptest.NewRecorder()
	h.Token(wrong, formRequest("alice", "nope"))
	unknown := httptest.NewRecorder()
	h.Token(unknown, formRequest("nobody", "pw1"))

	for name, rr := range map[string]*httptest.ResponseRecorder{"wrong password": wrong, "unknown user": unknown} {
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: got %d, want 401", name, rr.Code)
		}
		if rr.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Errorf("%s: missing WWW-Authenticate", name)
		}
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}
	if !strings.Contains(wrong.Body.String(), MsgIncorrectLogin) {
		t.Errorf("unexpected body: %s", wrong.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Token_MissingFields(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h, _ := newAuthHandler(t, db)
	rr := httptest.NewRecorder()
	h.Token(rr, formRequest("alice", ""))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"password":"required"`) {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestAuthHandler_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE username = \$1`).WithArgs("alice").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`WHERE email = \$1`).WithArgs("a@x.io").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users \(username, email, password_hash\)`).
		WithArgs("alice", "a@x.io", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "a@x.io", "$2a$04$hash"))

	h, _ := newAuthHandler(t, db)
	body, _ := json.Marshal(map[string]string{"username": "alice", "email": "a@x.io", "password": "pw1"})
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest("POST", "/users", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("Register status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "password") || strings.Contains(rr.Body.String(), "$2a$") {
		t.Errorf("response leaks password material: %s", rr.Body.String())
	}
	var out map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["id"] != float64(1) || out["username"] != "alice" || out["email"] != "a@x.io" {
		t.Errorf("unexpected response: %v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_Duplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// username taken
	mock.ExpectQuery(`WHERE username = \$1`).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "a@x.io", "h"))
	// email taken
	mock.ExpectQuery(`WHERE username = \$1`).WithArgs("bob").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`WHERE email = \$1`).WithArgs("a@x.io").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "a@x.io", "h"))
	// lost race: pre-checks pass, insert hits the constraint
	mock.ExpectQuery(`WHERE username = \$1`).WithArgs("carol").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`WHERE email = \$1`).WithArgs("c@x.io").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	h, _ := newAuthHandler(t, db)
	cases := []struct {
		username, email, want string
	}{
		{"alice", "other@x.io", MsgUsernameTaken},
		{"bob", "a@x.io", MsgEmailTaken},
		{"carol", "c@x.io", MsgUsernameTaken},
	}
	for _, tc := range cases {
		body, _ := json.Marshal(map[string]string{"username": tc.username, "email": tc.email, "password": "pw"})
		rr := httptest.NewRecorder()
		h.Register(rr, httptest.NewRequest("POST", "/users", bytes.NewReader(body)))

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", tc.username, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), tc.want) {
			t.Errorf("%s: body %s, want %q", tc.username, rr.Body.String(), tc.want)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h, _ := newAuthHandler(t, db)
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest("POST", "/users", strings.NewReader("{")))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
}
