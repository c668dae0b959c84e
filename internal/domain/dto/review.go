package dto

import "github.com/gatherhq/gather/internal/domain/entity"

type Review struct {
	ID          int64
	UserID      int64
	EventID     int64
	Score       int
	Title       string
	Description *string
}

func NewReviewFromEntity(review entity.Review) Review {
	return Review{
		ID:          review.ID,
		UserID:      review.UserID,
		EventID:     review.EventID,
		Score:       review.Score,
		Title:       review.Title,
		Description: review.Description,
	}
}

type CreateReview struct {
	EventID     int64
	Score       int
	Title       string
	Description *string
}

// ReviewPatch carries author edits; nil means unchanged.
type ReviewPatch struct {
	Score       *int
	Title       *string
	Description *string
}

// ReviewFilter narrows a review listing. Both fields are optional.
type ReviewFilter struct {
	EventID *int64
	UserID  *int64
}
