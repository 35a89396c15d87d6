package handlers

import (
	"errors"
	"net/http"

	"github.com/crucial707/bookshelf/internal/auth"
	"github.com/crucial707/bookshelf/internal/metrics"
	"github.com/crucial707/bookshelf/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Auth *auth.Service
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ==========================
// Token (form login)
// ==========================

// Token exchanges form fields username and password for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	input := struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if !validStruct(w, &input) {
		return
	}

	token, err := h.Auth.Login(r.Context(), input.Username, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		metrics.RecordAuth(metrics.FlowLogin, metrics.OutcomeRejected)
		w.Header().Set("WWW-Authenticate", "Bearer")
		JSONError(w, MsgIncorrectLogin, http.StatusUnauthorized)
		return
	}
	if err != nil {
		metrics.RecordAuth(metrics.FlowLogin, metrics.OutcomeError)
		internalError(w, r, "login", err)
		return
	}

	metrics.RecordAuth(metrics.FlowLogin, metrics.OutcomeSuccess)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,max=150"`
		Email    string `json:"email" validate:"required,max=254"`
		Password string `json:"password" validate:"required"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Auth.Register(r.Context(), input.Username, input.Email, input.Password)
	switch {
	case errors.Is(err, repo.ErrDuplicateUsername):
		metrics.RecordAuth(metrics.FlowRegister, metrics.OutcomeRejected)
		JSONError(w, MsgUsernameTaken, http.StatusBadRequest)
		return
	case errors.Is(err, repo.ErrDuplicateEmail):
		metrics.RecordAuth(metrics.FlowRegister, metrics.OutcomeRejected)
		JSONError(w, MsgEmailTaken, http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		metrics.RecordAuth(metrics.FlowRegister, metrics.OutcomeRejected)
		JSONValidationError(w, MsgValidationFailed, map[string]string{"password": "max=72"}, http.StatusBadRequest)
		return
	case err != nil:
		metrics.RecordAuth(metrics.FlowRegister, metrics.OutcomeError)
		internalError(w, r, "register", err)
		return
	}

	metrics.RecordAuth(metrics.FlowRegister, metrics.OutcomeSuccess)
	writeJSON(w, http.StatusOK, user)
}
