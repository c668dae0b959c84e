package entity

import "time"

// Review is a post-event write-up by a participant. One per (UserID, EventID);
// never authored by the event's host.
type Review struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      int64 `gorm:"not null;uniqueIndex:idx_review_user_event"`
	EventID     int64 `gorm:"not null;uniqueIndex:idx_review_user_event"`
	Score       int   `gorm:"not null"`
	Title       string `gorm:"not null"`
	Description *string
}
