package service

import (
	"context"
	"time"

	"github.com/gatherhq/gather/internal/domain/entity"
)

// CascadeActionKind names a per-event step of a membership-ending cascade.
type CascadeActionKind string

const (
	// LeaveEvent removes one user's participation from a scheduled event.
	LeaveEvent CascadeActionKind = "LeaveEvent"
	// DisbandEvent deletes a scheduled event with its participations and
	// city links.
	DisbandEvent CascadeActionKind = "DisbandEvent"
	// ArchiveEvent detaches a started or ended club event from its club and
	// marks it archived.
	ArchiveEvent CascadeActionKind = "ArchiveEvent"
)

type CascadeAction struct {
	Kind    CascadeActionKind
	EventID int64
}

// PlanClubExit computes the event actions for a user leaving a club. events
// holds the club's events the user participates in. Only scheduled events are
// touched; started and ended events keep their history. The membership
// removal itself is not part of the plan, it is always the executor's last
// step.
func PlanClubExit(events []entity.Event, userID int64, now time.Time) []CascadeAction {
	var plan []CascadeAction
	for _, event := range events {
		if event.State(now) != entity.EventScheduled {
			continue
		}
		if event.HostID == userID {
			plan = append(plan, CascadeAction{Kind: DisbandEvent, EventID: event.ID})
		} else {
			plan = append(plan, CascadeAction{Kind: LeaveEvent, EventID: event.ID})
		}
	}
	return plan
}

// PlanClubDisband computes the event actions for a club teardown: scheduled
// events are deleted, started or ended ones are archived in place.
func PlanClubDisband(events []entity.Event, now time.Time) []CascadeAction {
	var plan []CascadeAction
	for _, event := range events {
		if event.State(now) == entity.EventScheduled {
			plan = append(plan, CascadeAction{Kind: DisbandEvent, EventID: event.ID})
		} else {
			plan = append(plan, CascadeAction{Kind: ArchiveEvent, EventID: event.ID})
		}
	}
	return plan
}

// CascadeStorage is the transactional surface a cascade runs against. Every
// method called inside the Transaction callback operates on the same store
// transaction; either the whole cascade commits or none of it does.
type CascadeStorage interface {
	Transaction(ctx context.Context, fn func(CascadeStorage) error) error
	UserClubEvents(ctx context.Context, clubID, userID int64) ([]entity.Event, error)
	ClubEvents(ctx context.Context, clubID int64) ([]entity.Event, error)
	DeleteEventParticipants(ctx context.Context, eventID int64) error
	DeleteEventCities(ctx context.Context, eventID int64) error
	DeleteEvent(ctx context.Context, eventID int64) error
	DeleteParticipant(ctx context.Context, eventID, userID int64) error
	ArchiveEvent(ctx context.Context, eventID int64) error
	DeleteMember(ctx context.Context, clubID, userID int64) error
	DeleteClubMembers(ctx context.Context, clubID int64) error
	DeleteClub(ctx context.Context, clubID int64) error
}

// applyCascade executes the per-event actions of a plan. Child rows
// (participations, city links) go before their parent event row to satisfy
// referential constraints.
func applyCascade(ctx context.Context, tx CascadeStorage, plan []CascadeAction, userID int64) error {
	for _, action := range plan {
		switch action.Kind {
		case LeaveEvent:
			if err := tx.DeleteParticipant(ctx, action.EventID, userID); err != nil {
				return err
			}
		case DisbandEvent:
			if err := tx.DeleteEventParticipants(ctx, action.EventID); err != nil {
				return err
			}
			if err := tx.DeleteEventCities(ctx, action.EventID); err != nil {
				return err
			}
			if err := tx.DeleteEvent(ctx, action.EventID); err != nil {
				return err
			}
		case ArchiveEvent:
			if err := tx.ArchiveEvent(ctx, action.EventID); err != nil {
				return err
			}
		}
	}
	return nil
}
