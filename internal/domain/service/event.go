package service

import (
	"context"
	"errors"
	"time"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/dto"
	"github.com/gatherhq/gather/internal/domain/entity"
	"github.com/gatherhq/gather/pkg/logger/types"
)

type EventStorage interface {
	// Create persists the event, its city links and the host's participation
	// in one transaction.
	Create(ctx context.Context, event *entity.Event, cityIDs []int64) (*entity.Event, error)
	Get(ctx context.Context, id int64) (*entity.Event, error)
	Search(ctx context.Context, filter dto.EventFilter) ([]entity.Event, error)
	// Update saves the event and, when cityIDs is non-nil, replaces its city
	// links in the same transaction.
	Update(ctx context.Context, event *entity.Event, cityIDs []int64) (*entity.Event, error)
	// Delete removes participations, city links and the event row in one
	// transaction.
	Delete(ctx context.Context, id int64) error
	CityIDs(ctx context.Context, eventID int64) ([]int64, error)
}

// EventTxStorage re-reads guard state and mutates participations inside one
// store transaction, so concurrent joins cannot race past maxPeople.
type EventTxStorage interface {
	Transaction(ctx context.Context, fn func(EventTxStorage) error) error
	Event(ctx context.Context, id int64) (*entity.Event, error)
	HasParticipant(ctx context.Context, eventID, userID int64) (bool, error)
	CountParticipants(ctx context.Context, eventID int64) (int64, error)
	AddParticipant(ctx context.Context, participant *entity.EventParticipant) error
	RemoveParticipant(ctx context.Context, eventID, userID int64) error
}

// DirectoryStorage answers existence lookups for users, categories and
// cities.
type DirectoryStorage interface {
	User(ctx context.Context, id int64) (*entity.User, error)
	Category(ctx context.Context, id int64) (*entity.Category, error)
	City(ctx context.Context, id int64) (*entity.City, error)
}

type eventMemberStorage interface {
	Get(ctx context.Context, clubID, userID int64) (*entity.ClubMember, error)
}

// EventService governs event mutability and participation based on the
// event's time window and capacity.
type EventService struct {
	logger *types.Logger

	events       EventStorage
	participants EventTxStorage
	directory    DirectoryStorage
	members      eventMemberStorage
	visibility   *VisibilityResolver

	clock func() time.Time
}

func NewEventService(
	logger *types.Logger,
	events EventStorage,
	participants EventTxStorage,
	directory DirectoryStorage,
	members eventMemberStorage,
	visibility *VisibilityResolver,
) *EventService {
	return &EventService{
		logger:       logger,
		events:       events,
		participants: participants,
		directory:    directory,
		members:      members,
		visibility:   visibility,
		clock:        time.Now,
	}
}

func (s *EventService) Create(ctx context.Context, spec dto.CreateEvent) (*dto.Event, error) {
	if _, err := s.directory.User(ctx, spec.HostID); err != nil {
		return nil, err
	}
	if _, err := s.directory.Category(ctx, spec.CategoryID); err != nil {
		return nil, err
	}
	for _, cityID := range spec.CityIDs {
		if _, err := s.directory.City(ctx, cityID); err != nil {
			return nil, err
		}
	}

	now := s.clock()
	if !spec.StartTime.Before(spec.EndTime) {
		return nil, errorz.Wrapf(errorz.Conflict, "event must start before it ends")
	}
	if spec.StartTime.Before(now) {
		return nil, errorz.Wrapf(errorz.Conflict, "event cannot start in the past")
	}

	if spec.ClubID != nil {
		member, err := s.members.Get(ctx, *spec.ClubID, spec.HostID)
		if err != nil {
			if errors.Is(err, errorz.NotFound) {
				return nil, errorz.Wrapf(errorz.Conflict, "host %d is not a member of club %d", spec.HostID, *spec.ClubID)
			}
			return nil, err
		}
		if member.State != entity.MemberAccepted {
			return nil, errorz.Wrapf(errorz.Conflict, "host %d is not an accepted member of club %d", spec.HostID, *spec.ClubID)
		}
	}

	event, err := s.events.Create(ctx, &entity.Event{
		HostID:      spec.HostID,
		Title:       spec.Title,
		Description: spec.Description,
		CategoryID:  spec.CategoryID,
		StartTime:   spec.StartTime,
		EndTime:     spec.EndTime,
		MaxPeople:   spec.MaxPeople,
		ClubID:      spec.ClubID,
	}, spec.CityIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("event %d created by host %d", event.ID, spec.HostID)
	result := dto.NewEventFromEntity(*event, spec.CityIDs, now)
	return &result, nil
}

func (s *EventService) Get(ctx context.Context, viewerID, eventID int64) (*dto.Event, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	visible, err := s.visibility.CanViewEvent(ctx, viewerID, event)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errorz.Wrapf(errorz.Forbidden, "event %d is not visible to user %d", eventID, viewerID)
	}

	cityIDs, err := s.events.CityIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	result := dto.NewEventFromEntity(*event, cityIDs, s.clock())
	return &result, nil
}

func (s *EventService) Search(ctx context.Context, viewerID int64, filter dto.EventFilter) ([]dto.Event, error) {
	if filter.HostID != nil {
		if _, err := s.directory.User(ctx, *filter.HostID); err != nil {
			return nil, err
		}
	}
	if filter.CityID != nil {
		if _, err := s.directory.City(ctx, *filter.CityID); err != nil {
			return nil, err
		}
	}
	if filter.CategoryID != nil {
		if _, err := s.directory.Category(ctx, *filter.CategoryID); err != nil {
			return nil, err
		}
	}

	events, err := s.events.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	results := make([]dto.Event, 0, len(events))
	for i := range events {
		visible, visErr := s.visibility.CanViewEvent(ctx, viewerID, &events[i])
		if visErr != nil {
			return nil, visErr
		}
		if !visible {
			continue
		}
		cityIDs, cityErr := s.events.CityIDs(ctx, events[i].ID)
		if cityErr != nil {
			return nil, cityErr
		}
		results = append(results, dto.NewEventFromEntity(events[i], cityIDs, now))
	}
	return results, nil
}

func (s *EventService) Update(ctx context.Context, actorID, eventID int64, patch dto.EventPatch) (*dto.Event, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HostID != actorID {
		return nil, errorz.Wrapf(errorz.Forbidden, "only the host may edit event %d", eventID)
	}

	now := s.clock()
	if err = requireScheduled(event, now, "edit"); err != nil {
		return nil, err
	}

	if patch.CategoryID != nil {
		if _, err = s.directory.Category(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
		event.CategoryID = *patch.CategoryID
	}
	if patch.CityIDs != nil {
		for _, cityID := range patch.CityIDs {
			if _, err = s.directory.City(ctx, cityID); err != nil {
				return nil, err
			}
		}
	}

	start, end := event.StartTime, event.EndTime
	if patch.StartTime != nil {
		start = *patch.StartTime
	}
	if patch.EndTime != nil {
		end = *patch.EndTime
	}
	if !start.Before(end) {
		return nil, errorz.Wrapf(errorz.Conflict, "event must start before it ends")
	}
	if start.Before(now) {
		return nil, errorz.Wrapf(errorz.Conflict, "event cannot start in the past")
	}
	event.StartTime, event.EndTime = start, end

	if patch.MaxPeople != nil {
		count, countErr := s.participants.CountParticipants(ctx, eventID)
		if countErr != nil {
			return nil, countErr
		}
		if int64(*patch.MaxPeople) < count {
			return nil, errorz.Wrapf(errorz.Conflict, "event %d already has %d participants", eventID, count)
		}
		event.MaxPeople = *patch.MaxPeople
	}
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}

	event, err = s.events.Update(ctx, event, patch.CityIDs)
	if err != nil {
		return nil, err
	}
	cityIDs, err := s.events.CityIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	result := dto.NewEventFromEntity(*event, cityIDs, now)
	return &result, nil
}

func (s *EventService) Delete(ctx context.Context, actorID, eventID int64) error {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if event.HostID != actorID {
		return errorz.Wrapf(errorz.Forbidden, "only the host may delete event %d", eventID)
	}
	if err = requireScheduled(event, s.clock(), "delete"); err != nil {
		return err
	}

	if err = s.events.Delete(ctx, eventID); err != nil {
		return err
	}
	s.logger.Infof("event %d deleted by host %d", eventID, actorID)
	return nil
}

// Join enrolls the user. The window, the duplicate check and the capacity
// check are all re-read inside the participation transaction.
func (s *EventService) Join(ctx context.Context, userID, eventID int64) error {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return err
	}
	if _, err := s.directory.User(ctx, userID); err != nil {
		return err
	}

	return s.participants.Transaction(ctx, func(tx EventTxStorage) error {
		event, err := tx.Event(ctx, eventID)
		if err != nil {
			return err
		}

		joined, err := tx.HasParticipant(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if joined {
			return errorz.Wrapf(errorz.Conflict, "user %d already joined event %d", userID, eventID)
		}

		if err = requireScheduled(event, s.clock(), "join"); err != nil {
			return err
		}

		count, err := tx.CountParticipants(ctx, eventID)
		if err != nil {
			return err
		}
		if count >= int64(event.MaxPeople) {
			return errorz.Wrapf(errorz.Conflict, "event %d is full", eventID)
		}

		return tx.AddParticipant(ctx, &entity.EventParticipant{
			EventID: eventID,
			UserID:  userID,
		})
	})
}

// Leave withdraws the user. The host has no unilateral leave path; hosted
// events only go away through a club cascade or an explicit delete.
func (s *EventService) Leave(ctx context.Context, userID, eventID int64) error {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return err
	}
	if _, err := s.directory.User(ctx, userID); err != nil {
		return err
	}

	return s.participants.Transaction(ctx, func(tx EventTxStorage) error {
		event, err := tx.Event(ctx, eventID)
		if err != nil {
			return err
		}

		joined, err := tx.HasParticipant(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if !joined {
			return errorz.Wrapf(errorz.Conflict, "user %d has not joined event %d", userID, eventID)
		}

		if err = requireScheduled(event, s.clock(), "leave"); err != nil {
			return err
		}
		if event.HostID == userID {
			return errorz.Wrapf(errorz.Conflict, "the host cannot leave event %d", eventID)
		}

		return tx.RemoveParticipant(ctx, eventID, userID)
	})
}

func (s *EventService) HasJoined(ctx context.Context, userID, eventID int64) (bool, error) {
	if _, err := s.directory.User(ctx, userID); err != nil {
		return false, err
	}
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return false, err
	}
	return s.participants.HasParticipant(ctx, eventID, userID)
}

// requireScheduled rejects edit, delete, join and leave once the event has
// started. The ended check runs first so callers get the more specific error.
func requireScheduled(event *entity.Event, now time.Time, verb string) error {
	if !now.Before(event.EndTime) {
		return errorz.Wrapf(errorz.Conflict, "cannot %s event %d, it has already ended", verb, event.ID)
	}
	if !now.Before(event.StartTime) {
		return errorz.Wrapf(errorz.Conflict, "cannot %s event %d, it has already started", verb, event.ID)
	}
	return nil
}
