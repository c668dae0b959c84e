package app

import (
	"github.com/gatherhq/gather/internal/adapters/config"
	postgresStorage "github.com/gatherhq/gather/internal/adapters/database/postgres"
	redisStorage "github.com/gatherhq/gather/internal/adapters/database/redis"
	"github.com/gatherhq/gather/internal/domain/service"
	"github.com/gatherhq/gather/pkg/logger"
	"github.com/gatherhq/gather/pkg/logger/types"
	"gorm.io/gorm"
)

// App wires storages and services. The transport layer embeds it and calls
// the services in-process.
type App struct {
	DB     *gorm.DB
	Redis  *redisStorage.Client
	Logger *types.Logger

	Clubs   *service.ClubService
	Events  *service.EventService
	Reviews *service.ReviewService
}

func New(cfg *config.Config) (*App, error) {
	serviceLogger, err := logger.Named("service")
	if err != nil {
		return nil, err
	}

	if err = cfg.Database.AutoMigrate(postgresStorage.Migrations...); err != nil {
		return nil, err
	}

	clubStorage := postgresStorage.NewClubStorage(cfg.Database)
	memberStorage := postgresStorage.NewClubMemberStorage(cfg.Database)
	eventStorage := postgresStorage.NewEventStorage(cfg.Database)
	participantStorage := postgresStorage.NewEventParticipantStorage(cfg.Database)
	reviewStorage := postgresStorage.NewReviewStorage(cfg.Database)
	directoryStorage := postgresStorage.NewDirectoryStorage(cfg.Database)
	cascadeStorage := postgresStorage.NewCascadeStorage(cfg.Database)

	redisOpts := cfg.Redis
	redisOpts.Fallback = directoryStorage
	redisClient, err := redisStorage.New(redisOpts)
	if err != nil {
		return nil, err
	}

	visibility := service.NewVisibilityResolver(memberStorage, participantStorage)

	return &App{
		DB:     cfg.Database,
		Redis:  redisClient,
		Logger: serviceLogger,

		Clubs: service.NewClubService(serviceLogger, clubStorage, memberStorage, cascadeStorage),
		Events: service.NewEventService(
			serviceLogger,
			eventStorage,
			participantStorage,
			redisClient.Directory,
			memberStorage,
			visibility,
		),
		Reviews: service.NewReviewService(
			serviceLogger,
			reviewStorage,
			eventStorage,
			participantStorage,
			visibility,
		),
	}, nil
}
