package service

import (
	"context"
	"errors"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/entity"
)

type VisibilityMemberStorage interface {
	Get(ctx context.Context, clubID, userID int64) (*entity.ClubMember, error)
}

type VisibilityParticipantStorage interface {
	HasParticipant(ctx context.Context, eventID, userID int64) (bool, error)
}

// VisibilityResolver decides whether a viewer may read an event. Reviews
// inherit the visibility of their parent event.
type VisibilityResolver struct {
	members      VisibilityMemberStorage
	participants VisibilityParticipantStorage
}

func NewVisibilityResolver(members VisibilityMemberStorage, participants VisibilityParticipantStorage) *VisibilityResolver {
	return &VisibilityResolver{
		members:      members,
		participants: participants,
	}
}

// CanViewEvent applies the visibility predicate:
//   - archived events are visible only to recorded participants; the club
//     link is gone, so participation is the durable token
//   - club-scoped events are visible only to Accepted members of the club
//   - open events are visible to everyone
func (r *VisibilityResolver) CanViewEvent(ctx context.Context, viewerID int64, event *entity.Event) (bool, error) {
	if event.IsArchived {
		return r.participants.HasParticipant(ctx, event.ID, viewerID)
	}
	if event.ClubID != nil {
		member, err := r.members.Get(ctx, *event.ClubID, viewerID)
		if err != nil {
			if errors.Is(err, errorz.NotFound) {
				return false, nil
			}
			return false, err
		}
		return member.State == entity.MemberAccepted, nil
	}
	return true, nil
}
