package postgres

import (
	"context"
	"errors"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/entity"
	"gorm.io/gorm"
)

type ClubStorage struct {
	db *gorm.DB
}

func NewClubStorage(db *gorm.DB) *ClubStorage {
	return &ClubStorage{
		db: db,
	}
}

// Create persists the club and the owner's Accepted membership in one
// transaction, so a club never exists without its owner on the roster.
func (s *ClubStorage) Create(ctx context.Context, club *entity.Club) (*entity.Club, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&club).Error; err != nil {
			return err
		}
		return tx.Create(&entity.ClubMember{
			UserID: club.OwnerID,
			ClubID: club.ID,
			State:  entity.MemberAccepted,
		}).Error
	})
	return club, err
}

func (s *ClubStorage) Get(ctx context.Context, id int64) (*entity.Club, error) {
	var club entity.Club
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "club %d", id)
	}
	return &club, err
}

func (s *ClubStorage) GetByTitle(ctx context.Context, title string) (*entity.Club, error) {
	var club entity.Club
	err := s.db.WithContext(ctx).Where("title = ?", title).First(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "club %q", title)
	}
	return &club, err
}

func (s *ClubStorage) Update(ctx context.Context, club *entity.Club) (*entity.Club, error) {
	err := s.db.WithContext(ctx).Save(&club).Error
	return club, err
}
