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

type ClubStorage interface {
	// Create persists the club and the owner's Accepted membership in one
	// transaction.
	Create(ctx context.Context, club *entity.Club) (*entity.Club, error)
	Get(ctx context.Context, id int64) (*entity.Club, error)
	GetByTitle(ctx context.Context, title string) (*entity.Club, error)
	Update(ctx context.Context, club *entity.Club) (*entity.Club, error)
}

type ClubMemberStorage interface {
	Create(ctx context.Context, member *entity.ClubMember) (*entity.ClubMember, error)
	Get(ctx context.Context, clubID, userID int64) (*entity.ClubMember, error)
	GetByID(ctx context.Context, id int64) (*entity.ClubMember, error)
	Update(ctx context.Context, member *entity.ClubMember) (*entity.ClubMember, error)
	Delete(ctx context.Context, id int64) error
	ListApplicants(ctx context.Context, clubID int64) ([]entity.ClubMember, error)
}

// ClubService is the membership state machine plus the cascade executor for
// membership-ending operations.
type ClubService struct {
	logger *types.Logger

	clubs    ClubStorage
	members  ClubMemberStorage
	cascades CascadeStorage

	clock func() time.Time
}

func NewClubService(logger *types.Logger, clubs ClubStorage, members ClubMemberStorage, cascades CascadeStorage) *ClubService {
	return &ClubService{
		logger:   logger,
		clubs:    clubs,
		members:  members,
		cascades: cascades,
		clock:    time.Now,
	}
}

func (s *ClubService) Get(ctx context.Context, clubID int64) (*dto.ClubInfo, error) {
	club, err := s.clubs.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	info := dto.NewClubInfoFromEntity(*club)
	return &info, nil
}

func (s *ClubService) Create(ctx context.Context, ownerID int64, title, description string) (*dto.ClubInfo, error) {
	if _, err := s.clubs.GetByTitle(ctx, title); err == nil {
		return nil, errorz.Wrapf(errorz.Conflict, "club title %q already taken", title)
	} else if !errors.Is(err, errorz.NotFound) {
		return nil, err
	}

	club, err := s.clubs.Create(ctx, &entity.Club{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("club %d created by user %d", club.ID, ownerID)
	info := dto.NewClubInfoFromEntity(*club)
	return &info, nil
}

func (s *ClubService) Patch(ctx context.Context, actorID, clubID int64, patch dto.ClubPatch) (*dto.ClubInfo, error) {
	club, err := s.clubs.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club.OwnerID != actorID {
		return nil, errorz.Wrapf(errorz.Forbidden, "only the owner may edit club %d", clubID)
	}

	if patch.Title != nil && *patch.Title != club.Title {
		if _, err = s.clubs.GetByTitle(ctx, *patch.Title); err == nil {
			return nil, errorz.Wrapf(errorz.Conflict, "club title %q already taken", *patch.Title)
		} else if !errors.Is(err, errorz.NotFound) {
			return nil, err
		}
		club.Title = *patch.Title
	}
	if patch.Description != nil {
		club.Description = *patch.Description
	}

	club, err = s.clubs.Update(ctx, club)
	if err != nil {
		return nil, err
	}
	info := dto.NewClubInfoFromEntity(*club)
	return &info, nil
}

// Join files a membership application. A row in any state blocks a new one.
func (s *ClubService) Join(ctx context.Context, userID, clubID int64) error {
	if _, err := s.clubs.Get(ctx, clubID); err != nil {
		return err
	}

	member, err := s.members.Get(ctx, clubID, userID)
	if err == nil {
		if member.State == entity.MemberAccepted {
			return errorz.Wrapf(errorz.Conflict, "user %d is already a member of club %d", userID, clubID)
		}
		return errorz.Wrapf(errorz.Conflict, "user %d has already applied to club %d", userID, clubID)
	}
	if !errors.Is(err, errorz.NotFound) {
		return err
	}

	_, err = s.members.Create(ctx, &entity.ClubMember{
		UserID: userID,
		ClubID: clubID,
		State:  entity.MemberApplied,
	})
	return err
}

// RespondApplication lets the owner accept or reject a pending application.
// Rejection deletes the row, so a rejected user has to apply again.
func (s *ClubService) RespondApplication(ctx context.Context, actorID, clubID, membershipID int64, accept bool) error {
	club, err := s.clubs.Get(ctx, clubID)
	if err != nil {
		return err
	}
	if club.OwnerID != actorID {
		return errorz.Wrapf(errorz.Forbidden, "only the owner may respond to applications for club %d", clubID)
	}

	member, err := s.members.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if member.ClubID != clubID {
		return errorz.Wrapf(errorz.Conflict, "membership %d does not belong to club %d", membershipID, clubID)
	}
	if member.State == entity.MemberAccepted {
		return errorz.Wrapf(errorz.Conflict, "membership %d is already accepted", membershipID)
	}

	if !accept {
		return s.members.Delete(ctx, membershipID)
	}
	member.State = entity.MemberAccepted
	_, err = s.members.Update(ctx, member)
	return err
}

// DelegateOwner reassigns the club to an Accepted member. The ex-owner keeps
// an ordinary Accepted membership.
func (s *ClubService) DelegateOwner(ctx context.Context, actorID, clubID, targetID int64) error {
	club, err := s.clubs.Get(ctx, clubID)
	if err != nil {
		return err
	}
	if club.OwnerID != actorID {
		return errorz.Wrapf(errorz.Forbidden, "only the owner may delegate club %d", clubID)
	}

	target, err := s.members.Get(ctx, clubID, targetID)
	if err != nil {
		if errors.Is(err, errorz.NotFound) {
			return errorz.Wrapf(errorz.Conflict, "user %d is not a member of club %d", targetID, clubID)
		}
		return err
	}
	if target.State != entity.MemberAccepted {
		return errorz.Wrapf(errorz.Conflict, "user %d is not an accepted member of club %d", targetID, clubID)
	}

	club.OwnerID = targetID
	_, err = s.clubs.Update(ctx, club)
	return err
}

// Leave removes the user's membership together with their stake in the
// club's scheduled events, as one transaction. The membership row goes last
// so that an aborted cascade leaves the user a member.
func (s *ClubService) Leave(ctx context.Context, userID, clubID int64) error {
	club, err := s.clubs.Get(ctx, clubID)
	if err != nil {
		return err
	}

	member, err := s.members.Get(ctx, clubID, userID)
	if err != nil {
		if errors.Is(err, errorz.NotFound) {
			return errorz.Wrapf(errorz.Conflict, "user %d is not a member of club %d", userID, clubID)
		}
		return err
	}
	if member.State != entity.MemberAccepted {
		return errorz.Wrapf(errorz.Conflict, "user %d has not been accepted into club %d", userID, clubID)
	}
	if club.OwnerID == userID {
		return errorz.Wrapf(errorz.Conflict, "the owner cannot leave club %d, delegate or disband first", clubID)
	}

	now := s.clock()
	err = s.cascades.Transaction(ctx, func(tx CascadeStorage) error {
		events, txErr := tx.UserClubEvents(ctx, clubID, userID)
		if txErr != nil {
			return txErr
		}
		plan := PlanClubExit(events, userID, now)
		if txErr = applyCascade(ctx, tx, plan, userID); txErr != nil {
			return txErr
		}
		return tx.DeleteMember(ctx, clubID, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Infof("user %d left club %d", userID, clubID)
	return nil
}

// Disband tears the club down: scheduled events are deleted, started or
// ended ones are archived, then every membership and the club row go. All
// four steps are one transaction.
func (s *ClubService) Disband(ctx context.Context, actorID, clubID int64) error {
	club, err := s.clubs.Get(ctx, clubID)
	if err != nil {
		return err
	}
	if club.OwnerID != actorID {
		return errorz.Wrapf(errorz.Forbidden, "only the owner may disband club %d", clubID)
	}

	now := s.clock()
	err = s.cascades.Transaction(ctx, func(tx CascadeStorage) error {
		events, txErr := tx.ClubEvents(ctx, clubID)
		if txErr != nil {
			return txErr
		}
		plan := PlanClubDisband(events, now)
		if txErr = applyCascade(ctx, tx, plan, actorID); txErr != nil {
			return txErr
		}
		if txErr = tx.DeleteClubMembers(ctx, clubID); txErr != nil {
			return txErr
		}
		return tx.DeleteClub(ctx, clubID)
	})
	if err != nil {
		return err
	}

	s.logger.Infof("club %d disbanded by user %d", clubID, actorID)
	return nil
}

func (s *ClubService) ListApplicants(ctx context.Context, actorID, clubID int64) ([]dto.ClubApplicant, error) {
	club, err := s.clubs.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club.OwnerID != actorID {
		return nil, errorz.Wrapf(errorz.Forbidden, "only the owner may list applicants of club %d", clubID)
	}

	members, err := s.members.ListApplicants(ctx, clubID)
	if err != nil {
		return nil, err
	}
	applicants := make([]dto.ClubApplicant, 0, len(members))
	for _, member := range members {
		applicants = append(applicants, dto.NewClubApplicantFromEntity(member))
	}
	return applicants, nil
}
