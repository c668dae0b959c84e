package postgres

import (
	"context"
	"errors"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/dto"
	"github.com/gatherhq/gather/internal/domain/entity"
	"gorm.io/gorm"
)

type ReviewStorage struct {
	db *gorm.DB
}

func NewReviewStorage(db *gorm.DB) *ReviewStorage {
	return &ReviewStorage{
		db: db,
	}
}

func (s *ReviewStorage) Create(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	err := s.db.WithContext(ctx).Create(&review).Error
	return review, err
}

func (s *ReviewStorage) Get(ctx context.Context, id int64) (*entity.Review, error) {
	var review entity.Review
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "review %d", id)
	}
	return &review, err
}

func (s *ReviewStorage) Exists(ctx context.Context, userID, eventID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	return count > 0, err
}

func (s *ReviewStorage) List(ctx context.Context, filter dto.ReviewFilter) ([]entity.Review, error) {
	query := s.db.WithContext(ctx).Model(&entity.Review{})
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var reviews []entity.Review
	err := query.Order("created_at asc").Find(&reviews).Error
	return reviews, err
}

func (s *ReviewStorage) Update(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	err := s.db.WithContext(ctx).Save(&review).Error
	return review, err
}

func (s *ReviewStorage) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Review{}).Error
}
