package dto

import (
	"time"

	"github.com/gatherhq/gather/internal/domain/entity"
)

type Event struct {
	ID          int64
	HostID      int64
	Title       string
	Description string
	CategoryID  int64
	CityIDs     []int64
	StartTime   time.Time
	EndTime     time.Time
	MaxPeople   int
	ClubID      *int64
	IsArchived  bool
	State       entity.EventState
}

func NewEventFromEntity(event entity.Event, cityIDs []int64, now time.Time) Event {
	return Event{
		ID:          event.ID,
		HostID:      event.HostID,
		Title:       event.Title,
		Description: event.Description,
		CategoryID:  event.CategoryID,
		CityIDs:     cityIDs,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		MaxPeople:   event.MaxPeople,
		ClubID:      event.ClubID,
		IsArchived:  event.IsArchived,
		State:       event.State(now),
	}
}

// CreateEvent is the host's event submission.
type CreateEvent struct {
	HostID      int64
	Title       string
	Description string
	CategoryID  int64
	CityIDs     []int64
	StartTime   time.Time
	EndTime     time.Time
	MaxPeople   int
	ClubID      *int64
}

// EventPatch carries pre-start edits; nil means unchanged. CityIDs replaces
// the full city set when non-nil.
type EventPatch struct {
	Title       *string
	Description *string
	CategoryID  *int64
	CityIDs     []int64
	StartTime   *time.Time
	EndTime     *time.Time
	MaxPeople   *int
}

// EventFilter narrows an event search. All fields are optional.
type EventFilter struct {
	HostID     *int64
	CityID     *int64
	CategoryID *int64
}
