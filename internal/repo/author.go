package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/bookshelf/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type AuthorRepo struct {
	DB *sql.DB
}

func NewAuthorRepo(db *sql.DB) *AuthorRepo {
	return &AuthorRepo{DB: db}
}

// ========================
// CREATE AUTHOR
// ========================

func (r *AuthorRepo) Create(ctx context.Context, firstName, lastName string, bio *string) (*models.Author, error) {
	a := &models.Author{}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO authors (first_name, last_name, bio)
		 VALUES ($1, $2, $3)
		 RETURNING id, first_name, last_name, bio`,
		firstName, lastName, bio,
	).Scan(&a.ID, &a.FirstName, &a.LastName, &a.Bio)
	if err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return a, nil
}

// ========================
// LIST AUTHORS
// ========================

// List returns one offset/limit window ordered by id. An empty window is an
// empty slice, not nil.
func (r *AuthorRepo) List(ctx context.Context, skip, limit int) ([]models.Author, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, first_name, last_name, bio
		 FROM authors
		 ORDER BY id
		 LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	authors := []models.Author{}
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Bio); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}
