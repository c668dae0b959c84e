package entity

import "time"

type Event struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	HostID      int64  `gorm:"not null"`
	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	CategoryID  int64  `gorm:"not null"`
	StartTime   time.Time `gorm:"not null"`
	EndTime     time.Time `gorm:"not null"`
	MaxPeople   int       `gorm:"not null"`
	ClubID      *int64
	IsArchived  bool `gorm:"not null;default:false"`
}

// EventState is the lifecycle tag derived from the event's time window and
// archival flag. Derive it once per read and branch on it instead of
// scattering time comparisons.
type EventState string

const (
	EventScheduled  EventState = "Scheduled"
	EventInProgress EventState = "InProgress"
	EventEnded      EventState = "Ended"
	EventArchived   EventState = "Archived"
)

// State reports the event's lifecycle state at the given instant.
func (e *Event) State(now time.Time) EventState {
	switch {
	case e.IsArchived:
		return EventArchived
	case now.Before(e.StartTime):
		return EventScheduled
	case now.Before(e.EndTime):
		return EventInProgress
	default:
		return EventEnded
	}
}

// EventCity links an event to one of its cities. Every event has at least one.
type EventCity struct {
	EventID int64 `gorm:"primaryKey"`
	CityID  int64 `gorm:"primaryKey"`
}

// EventParticipant is a user's enrollment in an event. The host always has a
// row while the event exists.
type EventParticipant struct {
	EventID   int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"primaryKey"`
	CreatedAt time.Time
}
