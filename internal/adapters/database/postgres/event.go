package postgres

import (
	"context"
	"errors"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/dto"
	"github.com/gatherhq/gather/internal/domain/entity"
	"gorm.io/gorm"
)

type EventStorage struct {
	db *gorm.DB
}

func NewEventStorage(db *gorm.DB) *EventStorage {
	return &EventStorage{
		db: db,
	}
}

// Create persists the event, its city links and the host's participation in
// one transaction.
func (s *EventStorage) Create(ctx context.Context, event *entity.Event, cityIDs []int64) (*entity.Event, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		for _, cityID := range cityIDs {
			if err := tx.Create(&entity.EventCity{EventID: event.ID, CityID: cityID}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&entity.EventParticipant{
			EventID: event.ID,
			UserID:  event.HostID,
		}).Error
	})
	return event, err
}

func (s *EventStorage) Get(ctx context.Context, id int64) (*entity.Event, error) {
	var event entity.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "event %d", id)
	}
	return &event, err
}

func (s *EventStorage) Search(ctx context.Context, filter dto.EventFilter) ([]entity.Event, error) {
	query := s.db.WithContext(ctx).Model(&entity.Event{})
	if filter.HostID != nil {
		query = query.Where("host_id = ?", *filter.HostID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.CityID != nil {
		query = query.Joins("join event_cities on event_cities.event_id = events.id").
			Where("event_cities.city_id = ?", *filter.CityID)
	}

	var events []entity.Event
	err := query.Order("start_time asc").Find(&events).Error
	return events, err
}

// Update saves the event and, when cityIDs is non-nil, replaces its city
// links in the same transaction.
func (s *EventStorage) Update(ctx context.Context, event *entity.Event, cityIDs []int64) (*entity.Event, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		if cityIDs == nil {
			return nil
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&entity.EventCity{}).Error; err != nil {
			return err
		}
		for _, cityID := range cityIDs {
			if err := tx.Create(&entity.EventCity{EventID: event.ID, CityID: cityID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return event, err
}

// Delete removes participations and city links before the event row.
func (s *EventStorage) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&entity.EventParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&entity.EventCity{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Event{}).Error
	})
}

func (s *EventStorage) CityIDs(ctx context.Context, eventID int64) ([]int64, error) {
	var cityIDs []int64
	err := s.db.WithContext(ctx).
		Model(&entity.EventCity{}).
		Where("event_id = ?", eventID).
		Order("city_id asc").
		Pluck("city_id", &cityIDs).Error
	return cityIDs, err
}
