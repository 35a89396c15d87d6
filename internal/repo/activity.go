package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crucial707/bookshelf/internal/models"
)

// ActivityRepo persists the catalog activity log: who created or deleted what.
type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Record stores one entry. action is create|delete; resource is book|author.
func (r *ActivityRepo) Record(ctx context.Context, userID int, action, resource string, resourceID int, detail string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_log (user_id, action, resource, resource_id, detail) VALUES ($1, $2, $3, $4, $5)`,
		userID, action, resource, resourceID, detail,
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// List returns entries newest first, with the acting username resolved.
func (r *ActivityRepo) List(ctx context.Context, skip, limit int) ([]models.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.user_id, u.username, l.action, l.resource, l.resource_id, l.detail, l.created_at
		 FROM activity_log l
		 JOIN users u ON u.id = l.user_id
		 ORDER BY l.created_at DESC, l.id DESC
		 LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	entries := []models.Activity{}
	for rows.Next() {
		var e models.Activity
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Action, &e.Resource, &e.ResourceID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries created before cutoff and reports how many went.
func (r *ActivityRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return res.RowsAffected()
}
