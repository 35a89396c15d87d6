package models

import "time"

// Activity is one catalog activity log row.
type Activity struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Username   string    `json:"username"`
	Action     string    `json:"action"`   // create, delete
	Resource   string    `json:"resource"` // book, author
	ResourceID int       `json:"resource_id"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
