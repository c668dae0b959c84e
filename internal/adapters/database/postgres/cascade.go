package postgres

import (
	"context"

	"github.com/gatherhq/gather/internal/domain/entity"
	"github.com/gatherhq/gather/internal/domain/service"
	"gorm.io/gorm"
)

// CascadeStorage implements service.CascadeStorage. Inside Transaction every
// method runs on the transaction handle, so a failed cascade rolls back as a
// whole.
type CascadeStorage struct {
	db *gorm.DB
}

func NewCascadeStorage(db *gorm.DB) *CascadeStorage {
	return &CascadeStorage{
		db: db,
	}
}

func (s *CascadeStorage) Transaction(ctx context.Context, fn func(service.CascadeStorage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CascadeStorage{db: tx})
	})
}

// UserClubEvents returns the club's events the user participates in.
func (s *CascadeStorage) UserClubEvents(ctx context.Context, clubID, userID int64) ([]entity.Event, error) {
	var events []entity.Event
	err := s.db.WithContext(ctx).
		Joins("join event_participants on event_participants.event_id = events.id").
		Where("events.club_id = ? AND event_participants.user_id = ?", clubID, userID).
		Find(&events).Error
	return events, err
}

func (s *CascadeStorage) ClubEvents(ctx context.Context, clubID int64) ([]entity.Event, error) {
	var events []entity.Event
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).Find(&events).Error
	return events, err
}

func (s *CascadeStorage) DeleteEventParticipants(ctx context.Context, eventID int64) error {
	return s.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&entity.EventParticipant{}).Error
}

func (s *CascadeStorage) DeleteEventCities(ctx context.Context, eventID int64) error {
	return s.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&entity.EventCity{}).Error
}

func (s *CascadeStorage) DeleteEvent(ctx context.Context, eventID int64) error {
	return s.db.WithContext(ctx).Where("id = ?", eventID).Delete(&entity.Event{}).Error
}

func (s *CascadeStorage) DeleteParticipant(ctx context.Context, eventID, userID int64) error {
	return s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&entity.EventParticipant{}).Error
}

// ArchiveEvent severs the club link and marks the event archived, preserving
// its participations and reviews.
func (s *CascadeStorage) ArchiveEvent(ctx context.Context, eventID int64) error {
	return s.db.WithContext(ctx).
		Model(&entity.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{"club_id": nil, "is_archived": true}).Error
}

func (s *CascadeStorage) DeleteMember(ctx context.Context, clubID, userID int64) error {
	return s.db.WithContext(ctx).
		Where("club_id = ? AND user_id = ?", clubID, userID).
		Delete(&entity.ClubMember{}).Error
}

func (s *CascadeStorage) DeleteClubMembers(ctx context.Context, clubID int64) error {
	return s.db.WithContext(ctx).Where("club_id = ?", clubID).Delete(&entity.ClubMember{}).Error
}

func (s *CascadeStorage) DeleteClub(ctx context.Context, clubID int64) error {
	return s.db.WithContext(ctx).Where("id = ?", clubID).Delete(&entity.Club{}).Error
}
