package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/bookshelf/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================

// Create inserts a user with an already hashed password. A clash on username
// or email comes back as ErrDuplicateUsername or ErrDuplicateEmail.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash
	`

	user := &models.User{}
	err := r.DB.QueryRowContext(ctx, query, username, email, passwordHash).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", translate(err))
	}

	return user, nil
}

// ==========================
// Lookups
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

// column is one of the fixed names above, never user input.
func (r *UserRepo) getOne(ctx context.Context, column, value string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash
		FROM users
		WHERE ` + column + ` = $1
	`

	user := &models.User{}
	err := r.DB.QueryRowContext(ctx, query, value).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, translate(err))
	}

	return user, nil
}
