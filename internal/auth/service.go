package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crucial707/bookshelf/internal/models"
	"github.com/crucial707/bookshelf/internal/repo"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// CredentialStore is the subset of the user repository the service needs.
// Lookups return repo.ErrNotFound on a miss; Create returns
// repo.ErrDuplicateUsername or repo.ErrDuplicateEmail on a uniqueness clash.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)
}

// Service runs the login, registration and token authentication flows.
type Service struct {
	store    CredentialStore
	hasher   *PasswordHasher
	issuer   *TokenIssuer
	verifier *TokenVerifier
	log      *slog.Logger

	// dummyHash is verified against when the username is unknown so a miss
	// costs about as much as a wrong password.
	dummyHash func() string
}

func NewService(store CredentialStore, hasher *PasswordHasher, issuer *TokenIssuer, verifier *TokenVerifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
		log:      log,
		dummyHash: sync.OnceValue(func() string {
			h, err := hasher.Hash("bookshelf-timing-guard")
			if err != nil {
				log.Warn("dummy hash unavailable", "error", err)
			}
			return h
		}),
	}
}

// Login verifies the password and returns a freshly signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		s.hasher.Verify(password, s.dummyHash())
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("login lookup: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.log.DebugContext(ctx, "password hash uses outdated scheme", "user_id", user.ID, "preferred", s.hasher.Scheme())
	}

	token, err := s.issuer.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Register creates a user. Username is checked before email, so a request
// clashing on both reports the username.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := s.ensureFree(ctx, s.store.GetByUsername, username, repo.ErrDuplicateUsername); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.store.GetByEmail, email, repo.ErrDuplicateEmail); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// A concurrent registration can still win the race; the store translates
	// the unique violation into the same duplicate errors.
	user, err := s.store.Create(ctx, username, email, hash)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ensureFree(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value string, taken error) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, repo.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("register lookup: %w", err)
	}
}

// Authenticate resolves a bearer token to its user. Every token problem and
// an unknown subject are ErrUnauthenticated; store failures are returned as is.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	subject, err := s.verifier.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.store.GetByUsername(ctx, subject)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate lookup: %w", err)
	}
	return user, nil
}
