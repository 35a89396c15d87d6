package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/bookshelf/internal/auth"
	"github.com/crucial707/bookshelf/internal/metrics"
	"github.com/crucial707/bookshelf/internal/models"
)

// MsgCouldNotValidate is the body of every 401 produced by RequireUser.
const MsgCouldNotValidate = "Could not validate credentials"

type ctxKey int

const (
	userKey ctxKey = iota
	logFieldsKey
)

// Authenticator resolves a bearer token to a user. auth.Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireUser rejects requests without a valid bearer token with 401 and a
// WWW-Authenticate challenge. On success the user is available to the next
// handler through CurrentUser.
func RequireUser(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				metrics.RecordAuth(metrics.FlowBearer, metrics.OutcomeRejected)
				unauthorized(w)
				return
			}

			user, err := a.Authenticate(r.Context(), token)
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				metrics.RecordAuth(metrics.FlowBearer, metrics.OutcomeRejected)
				unauthorized(w)
				return
			case err != nil:
				metrics.RecordAuth(metrics.FlowBearer, metrics.OutcomeError)
				slog.ErrorContext(r.Context(), "authenticate", "error", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			metrics.RecordAuth(metrics.FlowBearer, metrics.OutcomeSuccess)
			if f, ok := r.Context().Value(logFieldsKey).(*logFields); ok {
				f.user = user.Username
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, MsgCouldNotValidate)
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the user placed in ctx by RequireUser.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
