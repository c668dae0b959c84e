package service

import (
	"context"
	"time"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/dto"
	"github.com/gatherhq/gather/internal/domain/entity"
	"github.com/gatherhq/gather/pkg/logger/types"
)

type ReviewStorage interface {
	Create(ctx context.Context, review *entity.Review) (*entity.Review, error)
	Get(ctx context.Context, id int64) (*entity.Review, error)
	Exists(ctx context.Context, userID, eventID int64) (bool, error)
	List(ctx context.Context, filter dto.ReviewFilter) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review) (*entity.Review, error)
	Delete(ctx context.Context, id int64) error
}

type reviewEventStorage interface {
	Get(ctx context.Context, id int64) (*entity.Event, error)
}

type reviewParticipantStorage interface {
	HasParticipant(ctx context.Context, eventID, userID int64) (bool, error)
}

type ReviewService struct {
	logger *types.Logger

	reviews      ReviewStorage
	events       reviewEventStorage
	participants reviewParticipantStorage
	visibility   *VisibilityResolver

	clock func() time.Time
}

func NewReviewService(
	logger *types.Logger,
	reviews ReviewStorage,
	events reviewEventStorage,
	participants reviewParticipantStorage,
	visibility *VisibilityResolver,
) *ReviewService {
	return &ReviewService{
		logger:       logger,
		reviews:      reviews,
		events:       events,
		participants: participants,
		visibility:   visibility,
		clock:        time.Now,
	}
}

// Create accepts a review from a participant who is not the host, once the
// event has ended. One review per (user, event).
func (s *ReviewService) Create(ctx context.Context, userID int64, spec dto.CreateReview) (*dto.Review, error) {
	exists, err := s.reviews.Exists(ctx, userID, spec.EventID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errorz.Wrapf(errorz.Conflict, "user %d already reviewed event %d", userID, spec.EventID)
	}

	joined, err := s.participants.HasParticipant(ctx, spec.EventID, userID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, errorz.Wrapf(errorz.Conflict, "user %d did not participate in event %d", userID, spec.EventID)
	}

	event, err := s.events.Get(ctx, spec.EventID)
	if err != nil {
		return nil, err
	}
	if s.clock().Before(event.EndTime) {
		return nil, errorz.Wrapf(errorz.Conflict, "event %d has not ended yet", spec.EventID)
	}
	if event.HostID == userID {
		return nil, errorz.Wrapf(errorz.Conflict, "the host cannot review their own event %d", spec.EventID)
	}

	review, err := s.reviews.Create(ctx, &entity.Review{
		UserID:      userID,
		EventID:     spec.EventID,
		Score:       spec.Score,
		Title:       spec.Title,
		Description: spec.Description,
	})
	if err != nil {
		return nil, err
	}
	result := dto.NewReviewFromEntity(*review)
	return &result, nil
}

// Get returns a review if its parent event is visible to the viewer.
func (s *ReviewService) Get(ctx context.Context, viewerID, reviewID int64) (*dto.Review, error) {
	review, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	event, err := s.events.Get(ctx, review.EventID)
	if err != nil {
		return nil, err
	}
	visible, err := s.visibility.CanViewEvent(ctx, viewerID, event)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errorz.Wrapf(errorz.Forbidden, "review %d is not visible to user %d", reviewID, viewerID)
	}

	result := dto.NewReviewFromEntity(*review)
	return &result, nil
}

// List returns reviews matching the filter, dropping any whose parent event
// the viewer may not see.
func (s *ReviewService) List(ctx context.Context, viewerID int64, filter dto.ReviewFilter) ([]dto.Review, error) {
	if filter.EventID != nil {
		if _, err := s.events.Get(ctx, *filter.EventID); err != nil {
			return nil, err
		}
	}

	reviews, err := s.reviews.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	visibleEvents := make(map[int64]bool)
	results := make([]dto.Review, 0, len(reviews))
	for _, review := range reviews {
		visible, known := visibleEvents[review.EventID]
		if !known {
			event, evErr := s.events.Get(ctx, review.EventID)
			if evErr != nil {
				return nil, evErr
			}
			visible, evErr = s.visibility.CanViewEvent(ctx, viewerID, event)
			if evErr != nil {
				return nil, evErr
			}
			visibleEvents[review.EventID] = visible
		}
		if visible {
			results = append(results, dto.NewReviewFromEntity(review))
		}
	}
	return results, nil
}

func (s *ReviewService) Update(ctx context.Context, actorID, reviewID int64, patch dto.ReviewPatch) (*dto.Review, error) {
	review, err := s.authorOnly(ctx, actorID, reviewID)
	if err != nil {
		return nil, err
	}

	if patch.Score != nil {
		review.Score = *patch.Score
	}
	if patch.Title != nil {
		review.Title = *patch.Title
	}
	if patch.Description != nil {
		review.Description = patch.Description
	}

	review, err = s.reviews.Update(ctx, review)
	if err != nil {
		return nil, err
	}
	result := dto.NewReviewFromEntity(*review)
	return &result, nil
}

func (s *ReviewService) Delete(ctx context.Context, actorID, reviewID int64) error {
	if _, err := s.authorOnly(ctx, actorID, reviewID); err != nil {
		return err
	}
	return s.reviews.Delete(ctx, reviewID)
}

func (s *ReviewService) authorOnly(ctx context.Context, actorID, reviewID int64) (*entity.Review, error) {
	review, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actorID {
		return nil, errorz.Wrapf(errorz.Forbidden, "user %d is not the author of review %d", actorID, reviewID)
	}
	return review, nil
}
