package postgres

import (
	"context"
	"errors"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/entity"
	"github.com/gatherhq/gather/internal/domain/service"
	"gorm.io/gorm"
)

// EventParticipantStorage implements service.EventTxStorage: participation
// reads and writes, optionally bound to one store transaction.
type EventParticipantStorage struct {
	db *gorm.DB
}

func NewEventParticipantStorage(db *gorm.DB) *EventParticipantStorage {
	return &EventParticipantStorage{
		db: db,
	}
}

func (s *EventParticipantStorage) Transaction(ctx context.Context, fn func(service.EventTxStorage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&EventParticipantStorage{db: tx})
	})
}

func (s *EventParticipantStorage) Event(ctx context.Context, id int64) (*entity.Event, error) {
	var event entity.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "event %d", id)
	}
	return &event, err
}

func (s *EventParticipantStorage) HasParticipant(ctx context.Context, eventID, userID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *EventParticipantStorage) CountParticipants(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.EventParticipant{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (s *EventParticipantStorage) AddParticipant(ctx context.Context, participant *entity.EventParticipant) error {
	return s.db.WithContext(ctx).Create(participant).Error
}

func (s *EventParticipantStorage) RemoveParticipant(ctx context.Context, eventID, userID int64) error {
	return s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&entity.EventParticipant{}).Error
}
