package entity

import "time"

type Club struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string `gorm:"not null;uniqueIndex"`
	Description string
	OwnerID     int64 `gorm:"not null"`
}

// MemberState is the closed set of membership states. Raw string literals
// must never be compared against; use the constants.
type MemberState string

const (
	MemberApplied  MemberState = "Applied"
	MemberAccepted MemberState = "Accepted"
)

// ClubMember is a user's relationship to a club. At most one row exists per
// (UserID, ClubID); the club owner's row is always Accepted.
type ClubMember struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	UserID    int64       `gorm:"not null;uniqueIndex:idx_club_member"`
	ClubID    int64       `gorm:"not null;uniqueIndex:idx_club_member"`
	State     MemberState `gorm:"not null"`
}
