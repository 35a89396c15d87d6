package repo

import (
	"database/sql"
	"errors"
	"math"

	"github.com/lib/pq"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateBook     = errors.New("book already exists")
)

// postgres SQLSTATE codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// storedID reports whether id fits the SERIAL id columns. Anything outside
// that range cannot name a row and is answered with ErrNotFound without a query.
func storedID(id int) bool {
	return id > 0 && id <= math.MaxInt32
}

// translate maps driver errors onto the package sentinels. Errors it does not
// recognise are returned unchanged.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		switch pqErr.Constraint {
		case "users_username_key":
			return ErrDuplicateUsername
		case "users_email_key":
			return ErrDuplicateEmail
		case "books_name_key":
			return ErrDuplicateBook
		}
	case codeForeignKeyViolation:
		if pqErr.Constraint == "books_author_id_fkey" {
			return ErrNotFound
		}
	}
	return err
}
