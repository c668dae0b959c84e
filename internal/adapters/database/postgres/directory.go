package postgres

import (
	"context"
	"errors"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/entity"
	"gorm.io/gorm"
)

// DirectoryStorage answers existence lookups for users, categories and
// cities.
type DirectoryStorage struct {
	db *gorm.DB
}

func NewDirectoryStorage(db *gorm.DB) *DirectoryStorage {
	return &DirectoryStorage{
		db: db,
	}
}

func (s *DirectoryStorage) User(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "user %d", id)
	}
	return &user, err
}

func (s *DirectoryStorage) Category(ctx context.Context, id int64) (*entity.Category, error) {
	var category entity.Category
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "category %d", id)
	}
	return &category, err
}

func (s *DirectoryStorage) City(ctx context.Context, id int64) (*entity.City, error) {
	var city entity.City
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&city).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "city %d", id)
	}
	return &city, err
}
