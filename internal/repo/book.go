package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/bookshelf/internal/db"
	"github.com/crucial707/bookshelf/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type BookRepo struct {
	DB *sql.DB
}

func NewBookRepo(conn *sql.DB) *BookRepo {
	return &BookRepo{DB: conn}
}

// ========================
// CREATE BOOK
// ========================

// Create checks the author and inserts the book in one transaction. A missing
// author is ErrNotFound; a taken name is ErrDuplicateBook.
func (r *BookRepo) Create(ctx context.Context, b models.Book) (*models.Book, error) {
	if !storedID(b.AuthorID) {
		return nil, fmt.Errorf("lookup author %d: %w", b.AuthorID, ErrNotFound)
	}
	out := &models.Book{}

	err := db.WithTx(ctx, r.DB, func(ctx context.Context, tx db.DBTX) error {
		var authorID int
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM authors WHERE id = $1 FOR SHARE`,
			b.AuthorID,
		).Scan(&authorID)
		if err != nil {
			return fmt.Errorf("lookup author %d: %w", b.AuthorID, translate(err))
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO books (name, description, pages, img, author_id)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, name, description, pages, img, author_id`,
			b.Name, b.Description, b.Pages, b.Img, b.AuthorID,
		).Scan(&out.ID, &out.Name, &out.Description, &out.Pages, &out.Img, &out.AuthorID)
		if err != nil {
			return fmt.Errorf("insert book: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================
// LIST BOOKS
// ========================

// ListWithAuthors returns one offset/limit window of books, each joined with
// its author.
func (r *BookRepo) ListWithAuthors(ctx context.Context, skip, limit int) ([]models.BookWithAuthor, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT b.id, b.name, b.description, b.pages, b.img, b.author_id,
		        a.id, a.first_name, a.last_name, a.bio
		 FROM books b
		 JOIN authors a ON a.id = b.author_id
		 ORDER BY b.id
		 LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []models.BookWithAuthor{}
	for rows.Next() {
		var b models.BookWithAuthor
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Description, &b.Pages, &b.Img, &b.AuthorID,
			&b.Author.ID, &b.Author.FirstName, &b.Author.LastName, &b.Author.Bio,
		); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ========================
// DELETE BOOK
// ========================

// Delete removes a book. An id that matches no row is ErrNotFound.
func (r *BookRepo) Delete(ctx context.Context, id int) error {
	if !storedID(id) {
		return ErrNotFound
	}
	result, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
