package postgres

import "github.com/gatherhq/gather/internal/domain/entity"

// Migrations is a list of all gorm migrations for the database.
var Migrations = []interface{}{
	&entity.User{},
	&entity.Category{},
	&entity.City{},
	&entity.Club{},
	&entity.ClubMember{},
	&entity.Event{},
	&entity.EventCity{},
	&entity.EventParticipant{},
	&entity.Review{},
}
