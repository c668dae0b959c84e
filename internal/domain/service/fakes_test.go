package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gatherhq/gather/internal/domain/common/errorz"
	"github.com/gatherhq/gather/internal/domain/dto"
	"github.com/gatherhq/gather/internal/domain/entity"
	"github.com/gatherhq/gather/pkg/logger/types"
	"go.uber.org/zap"
)

type participantKey struct {
	eventID int64
	userID  int64
}

// fakeDB holds all tables behind the fake storages. failures injects an
// error for a named mutation so transaction rollback can be exercised.
type fakeDB struct {
	clubs        map[int64]*entity.Club
	members      map[int64]*entity.ClubMember
	events       map[int64]*entity.Event
	eventCities  map[int64][]int64
	participants map[participantKey]bool
	reviews      map[int64]*entity.Review
	users        map[int64]*entity.User
	categories   map[int64]*entity.Category
	cities       map[int64]*entity.City

	nextID   int64
	failures map[string]error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		clubs:        make(map[int64]*entity.Club),
		members:      make(map[int64]*entity.ClubMember),
		events:       make(map[int64]*entity.Event),
		eventCities:  make(map[int64][]int64),
		participants: make(map[participantKey]bool),
		reviews:      make(map[int64]*entity.Review),
		users:        make(map[int64]*entity.User),
		categories:   make(map[int64]*entity.Category),
		cities:       make(map[int64]*entity.City),
		nextID:       1000,
		failures:     make(map[string]error),
	}
}

func (db *fakeDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *fakeDB) snapshot() *fakeDB {
	copied := newFakeDB()
	copied.nextID = db.nextID
	for id, club := range db.clubs {
		c := *club
		copied.clubs[id] = &c
	}
	for id, member := range db.members {
		m := *member
		copied.members[id] = &m
	}
	for id, event := range db.events {
		e := *event
		copied.events[id] = &e
	}
	for id, cities := range db.eventCities {
		copied.eventCities[id] = append([]int64(nil), cities...)
	}
	for key := range db.participants {
		copied.participants[key] = true
	}
	for id, review := range db.reviews {
		r := *review
		copied.reviews[id] = &r
	}
	for id, user := range db.users {
		u := *user
		copied.users[id] = &u
	}
	for id, category := range db.categories {
		c := *category
		copied.categories[id] = &c
	}
	for id, city := range db.cities {
		c := *city
		copied.cities[id] = &c
	}
	return copied
}

func (db *fakeDB) restore(from *fakeDB) {
	db.clubs = from.clubs
	db.members = from.members
	db.events = from.events
	db.eventCities = from.eventCities
	db.participants = from.participants
	db.reviews = from.reviews
	db.users = from.users
	db.categories = from.categories
	db.cities = from.cities
	db.nextID = from.nextID
}

// Seeding helpers.

func (db *fakeDB) addUser(id int64) {
	db.users[id] = &entity.User{ID: id, Name: fmt.Sprintf("user-%d", id)}
}

func (db *fakeDB) addCategory(id int64) {
	db.categories[id] = &entity.Category{ID: id, Name: fmt.Sprintf("category-%d", id)}
}

func (db *fakeDB) addCity(id int64) {
	db.cities[id] = &entity.City{ID: id, Name: fmt.Sprintf("city-%d", id)}
}

func (db *fakeDB) addClub(id, ownerID int64) {
	db.clubs[id] = &entity.Club{ID: id, Title: fmt.Sprintf("club-%d", id), OwnerID: ownerID}
	db.addMember(id, ownerID, entity.MemberAccepted)
	db.addUser(ownerID)
}

func (db *fakeDB) addMember(clubID, userID int64, state entity.MemberState) int64 {
	id := db.id()
	db.members[id] = &entity.ClubMember{ID: id, UserID: userID, ClubID: clubID, State: state}
	db.addUser(userID)
	return id
}

func (db *fakeDB) addEvent(event entity.Event, cityIDs ...int64) {
	stored := event
	db.events[event.ID] = &stored
	db.eventCities[event.ID] = append([]int64(nil), cityIDs...)
	db.participants[participantKey{event.ID, event.HostID}] = true
	db.addUser(event.HostID)
}

func (db *fakeDB) addParticipant(eventID, userID int64) {
	db.participants[participantKey{eventID, userID}] = true
	db.addUser(userID)
}

func (db *fakeDB) memberOf(clubID, userID int64) *entity.ClubMember {
	for _, member := range db.members {
		if member.ClubID == clubID && member.UserID == userID {
			return member
		}
	}
	return nil
}

// fakeClubStorage implements ClubStorage.

type fakeClubStorage struct {
	db *fakeDB
}

func (s *fakeClubStorage) Create(ctx context.Context, club *entity.Club) (*entity.Club, error) {
	club.ID = s.db.id()
	s.db.clubs[club.ID] = club
	s.db.addMember(club.ID, club.OwnerID, entity.MemberAccepted)
	return club, nil
}

func (s *fakeClubStorage) Get(ctx context.Context, id int64) (*entity.Club, error) {
	club, ok := s.db.clubs[id]
	if !ok {
		return nil, errorz.Wrapf(errorz.NotFound, "club %d", id)
	}
	return club, nil
}

func (s *fakeClubStorage) GetByTitle(ctx context.Context, title string) (*entity.Club, error) {
	for _, club := range s.db.clubs {
		if club.Title == title {
			return club, nil
		}
	}
	return nil, errorz.Wrapf(errorz.NotFound, "club %q", title)
}

func (s *fakeClubStorage) Update(ctx context.Context, club *entity.Club) (*entity.Club, error) {
	s.db.clubs[club.ID] = club
	return club, nil
}

// fakeMemberStorage implements ClubMemberStorage, VisibilityMemberStorage and
// eventMemberStorage.

type fakeMemberStorage struct {
	db *fakeDB
}

func (s *fakeMemberStorage) Create(ctx context.Context, member *entity.ClubMember) (*entity.ClubMember, error) {
	member.ID = s.db.id()
	s.db.members[member.ID] = member
	return member, nil
}

func (s *fakeMemberStorage) Get(ctx context.Context, clubID, userID int64) (*entity.ClubMember, error) {
	if member := s.db.memberOf(clubID, userID); member != nil {
		return member, nil
	}
	return nil, errorz.Wrapf(errorz.NotFound, "membership of user %d in club %d", userID, clubID)
}

func (s *fakeMemberStorage) GetByID(ctx context.Context, id int64) (*entity.ClubMember, error) {
	member, ok := s.db.members[id]
	if !ok {
		return nil, errorz.Wrapf(errorz.NotFound, "membership %d", id)
	}
	return member, nil
}

func (s *fakeMemberStorage) Update(ctx context.Context, member *entity.ClubMember) (*entity.ClubMember, error) {
	s.db.members[member.ID] = member
	return member, nil
}

func (s *fakeMemberStorage) Delete(ctx context.Context, id int64) error {
	delete(s.db.members, id)
	return nil
}

func (s *fakeMemberStorage) ListApplicants(ctx context.Context, clubID int64) ([]entity.ClubMember, error) {
	var applicants []entity.ClubMember
	for _, member := range s.db.members {
		if member.ClubID == clubID && member.State == entity.MemberApplied {
			applicants = append(applicants, *member)
		}
	}
	return applicants, nil
}

// fakeCascadeStorage implements CascadeStorage with snapshot rollback.

type fakeCascadeStorage struct {
	db *fakeDB
}

func (s *fakeCascadeStorage) Transaction(ctx context.Context, fn func(CascadeStorage) error) error {
	before := s.db.snapshot()
	if err := fn(s); err != nil {
		s.db.restore(before)
		return err
	}
	return nil
}

func (s *fakeCascadeStorage) UserClubEvents(ctx context.Context, clubID, userID int64) ([]entity.Event, error) {
	var events []entity.Event
	for _, event := range s.db.events {
		if event.ClubID == nil || *event.ClubID != clubID {
			continue
		}
		if s.db.participants[participantKey{event.ID, userID}] {
			events = append(events, *event)
		}
	}
	return events, nil
}

func (s *fakeCascadeStorage) ClubEvents(ctx context.Context, clubID int64) ([]entity.Event, error) {
	var events []entity.Event
	for _, event := range s.db.events {
		if event.ClubID != nil && *event.ClubID == clubID {
			events = append(events, *event)
		}
	}
	return events, nil
}

func (s *fakeCascadeStorage) DeleteEventParticipants(ctx context.Context, eventID int64) error {
	if err := s.db.failures["DeleteEventParticipants"]; err != nil {
		return err
	}
	for key := range s.db.participants {
		if key.eventID == eventID {
			delete(s.db.participants, key)
		}
	}
	return nil
}

func (s *fakeCascadeStorage) DeleteEventCities(ctx context.Context, eventID int64) error {
	delete(s.db.eventCities, eventID)
	return nil
}

func (s *fakeCascadeStorage) DeleteEvent(ctx context.Context, eventID int64) error {
	if err := s.db.failures["DeleteEvent"]; err != nil {
		return err
	}
	delete(s.db.events, eventID)
	return nil
}

func (s *fakeCascadeStorage) DeleteParticipant(ctx context.Context, eventID, userID int64) error {
	if err := s.db.failures["DeleteParticipant"]; err != nil {
		return err
	}
	delete(s.db.participants, participantKey{eventID, userID})
	return nil
}

func (s *fakeCascadeStorage) ArchiveEvent(ctx context.Context, eventID int64) error {
	if err := s.db.failures["ArchiveEvent"]; err != nil {
		return err
	}
	event, ok := s.db.events[eventID]
	if !ok {
		return errorz.Wrapf(errorz.NotFound, "event %d", eventID)
	}
	event.ClubID = nil
	event.IsArchived = true
	return nil
}

func (s *fakeCascadeStorage) DeleteMember(ctx context.Context, clubID, userID int64) error {
	if err := s.db.failures["DeleteMember"]; err != nil {
		return err
	}
	if member := s.db.memberOf(clubID, userID); member != nil {
		delete(s.db.members, member.ID)
	}
	return nil
}

func (s *fakeCascadeStorage) DeleteClubMembers(ctx context.Context, clubID int64) error {
	if err := s.db.failures["DeleteClubMembers"]; err != nil {
		return err
	}
	for id, member := range s.db.members {
		if member.ClubID == clubID {
			delete(s.db.members, id)
		}
	}
	return nil
}

func (s *fakeCascadeStorage) DeleteClub(ctx context.Context, clubID int64) error {
	if err := s.db.failures["DeleteClub"]; err != nil {
		return err
	}
	delete(s.db.clubs, clubID)
	return nil
}

// fakeEventStorage implements EventStorage and reviewEventStorage.

type fakeEventStorage struct {
	db *fakeDB
}

func (s *fakeEventStorage) Create(ctx context.Context, event *entity.Event, cityIDs []int64) (*entity.Event, error) {
	event.ID = s.db.id()
	s.db.events[event.ID] = event
	s.db.eventCities[event.ID] = append([]int64(nil), cityIDs...)
	s.db.participants[participantKey{event.ID, event.HostID}] = true
	return event, nil
}

func (s *fakeEventStorage) Get(ctx context.Context, id int64) (*entity.Event, error) {
	event, ok := s.db.events[id]
	if !ok {
		return nil, errorz.Wrapf(errorz.NotFound, "event %d", id)
	}
	return event, nil
}

func (s *fakeEventStorage) Search(ctx context.Context, filter dto.EventFilter) ([]entity.Event, error) {
	var events []entity.Event
	for _, event := range s.db.events {
		if filter.HostID != nil && event.HostID != *filter.HostID {
			continue
		}
		if filter.CategoryID != nil && event.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.CityID != nil {
			linked := false
			for _, cityID := range s.db.eventCities[event.ID] {
				if cityID == *filter.CityID {
					linked = true
					break
				}
			}
			if !linked {
				continue
			}
		}
		events = append(events, *event)
	}
	return events, nil
}

func (s *fakeEventStorage) Update(ctx context.Context, event *entity.Event, cityIDs []int64) (*entity.Event, error) {
	s.db.events[event.ID] = event
	if cityIDs != nil {
		s.db.eventCities[event.ID] = append([]int64(nil), cityIDs...)
	}
	return event, nil
}

func (s *fakeEventStorage) Delete(ctx context.Context, id int64) error {
	for key := range s.db.participants {
		if key.eventID == id {
			delete(s.db.participants, key)
		}
	}
	delete(s.db.eventCities, id)
	delete(s.db.events, id)
	return nil
}

func (s *fakeEventStorage) CityIDs(ctx context.Context, eventID int64) ([]int64, error) {
	return append([]int64(nil), s.db.eventCities[eventID]...), nil
}

// fakeParticipantStorage implements EventTxStorage,
// VisibilityParticipantStorage and reviewParticipantStorage.

type fakeParticipantStorage struct {
	db *fakeDB
}

func (s *fakeParticipantStorage) Transaction(ctx context.Context, fn func(EventTxStorage) error) error {
	before := s.db.snapshot()
	if err := fn(s); err != nil {
		s.db.restore(before)
		return err
	}
	return nil
}

func (s *fakeParticipantStorage) Event(ctx context.Context, id int64) (*entity.Event, error) {
	event, ok := s.db.events[id]
	if !ok {
		return nil, errorz.Wrapf(errorz.NotFound, "event %d", id)
	}
	return event, nil
}

func (s *fakeParticipantStorage) HasParticipant(ctx context.Context, eventID, userID int64) (bool, error) {
	return s.db.participants[participantKey{eventID, userID}], nil
}

func (s *fakeParticipantStorage) CountParticipants(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	for key := range s.db.participants {
		if key.eventID == eventID {
			count++
		}
	}
	return count, nil
}

func (s *fakeParticipantStorage) AddParticipant(ctx context.Context, participant *entity.EventParticipant) error {
	s.db.participants[participantKey{participant.EventID, participant.UserID}] = true
	return nil
}

func (s *fakeParticipantStorage) RemoveParticipant(ctx context.Context, eventID, userID int64) error {
	delete(s.db.participants, participantKey{eventID, userID})
	return nil
}

// fakeDirectoryStorage implements DirectoryStorage.

type fakeDirectoryStorage struct {
	db *fakeDB
}

func (s *fakeDirectoryStorage) User(ctx context.Context, id int64) (*entity.User, error) {
	user, ok := s.db.users[id]
	if !ok {
		return nil, errorz.Wrapf(errorz.NotFound, "user %d", id)
	}
	return user, nil
}

func (s *fakeDirectoryStorage) Category(ctx context.Context, id int64) (*entity.Category, error) {
	category, ok := s.db.categories[id]
	if !ok {
		return nil, errorz.Wrapf(errorz.NotFound, "category %d", id)
	}
	return category, nil
}

func (s *fakeDirectoryStorage) City(ctx context.Context, id int64) (*entity.City, error) {
	city, ok := s.db.cities[id]
	if !ok {
		return nil, errorz.Wrapf(errorz.NotFound, "city %d", id)
	}
	return city, nil
}

// fakeReviewStorage implements ReviewStorage.

type fakeReviewStorage struct {
	db *fakeDB
}

func (s *fakeReviewStorage) Create(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	review.ID = s.db.id()
	s.db.reviews[review.ID] = review
	return review, nil
}

func (s *fakeReviewStorage) Get(ctx context.Context, id int64) (*entity.Review, error) {
	review, ok := s.db.reviews[id]
	if !ok {
		return nil, errorz.Wrapf(errorz.NotFound, "review %d", id)
	}
	return review, nil
}

func (s *fakeReviewStorage) Exists(ctx context.Context, userID, eventID int64) (bool, error) {
	for _, review := range s.db.reviews {
		if review.UserID == userID && review.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReviewStorage) List(ctx context.Context, filter dto.ReviewFilter) ([]entity.Review, error) {
	var reviews []entity.Review
	for _, review := range s.db.reviews {
		if filter.EventID != nil && review.EventID != *filter.EventID {
			continue
		}
		if filter.UserID != nil && review.UserID != *filter.UserID {
			continue
		}
		reviews = append(reviews, *review)
	}
	return reviews, nil
}

func (s *fakeReviewStorage) Update(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	s.db.reviews[review.ID] = review
	return review, nil
}

func (s *fakeReviewStorage) Delete(ctx context.Context, id int64) error {
	delete(s.db.reviews, id)
	return nil
}

func testLogger() *types.Logger {
	return &types.Logger{SugaredLogger: zap.NewNop().Sugar(), Name: "test"}
}

func ptr[T any](v T) *T {
	return &v
}

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("got nil error, want %v", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("got error %q, want kind %v", err, kind)
	}
}

func wantNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
