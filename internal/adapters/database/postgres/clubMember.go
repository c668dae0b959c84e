package postgres

import (
	"context"
	"errors"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/entity"
	"gorm.io/gorm"
)

type ClubMemberStorage struct {
	db *gorm.DB
}

func NewClubMemberStorage(db *gorm.DB) *ClubMemberStorage {
	return &ClubMemberStorage{
		db: db,
	}
}

func (s *ClubMemberStorage) Create(ctx context.Context, member *entity.ClubMember) (*entity.ClubMember, error) {
	err := s.db.WithContext(ctx).Create(&member).Error
	return member, err
}

func (s *ClubMemberStorage) Get(ctx context.Context, clubID, userID int64) (*entity.ClubMember, error) {
	var member entity.ClubMember
	err := s.db.WithContext(ctx).Where("club_id = ? AND user_id = ?", clubID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "membership of user %d in club %d", userID, clubID)
	}
	return &member, err
}

func (s *ClubMemberStorage) GetByID(ctx context.Context, id int64) (*entity.ClubMember, error) {
	var member entity.ClubMember
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.Wrapf(errorz.NotFound, "membership %d", id)
	}
	return &member, err
}

func (s *ClubMemberStorage) Update(ctx context.Context, member *entity.ClubMember) (*entity.ClubMember, error) {
	err := s.db.WithContext(ctx).Save(&member).Error
	return member, err
}

func (s *ClubMemberStorage) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ClubMember{}).Error
}

func (s *ClubMemberStorage) ListApplicants(ctx context.Context, clubID int64) ([]entity.ClubMember, error) {
	var members []entity.ClubMember
	err := s.db.WithContext(ctx).
		Where("club_id = ? AND state = ?", clubID, entity.MemberApplied).
		Order("created_at asc").
		Find(&members).Error
	return members, err
}
