package config

import (
	"fmt"
	"log"
	"os"
	"time"

	redisStorage "github.com/gatherhq/gather/internal/adapters/database/redis"
	"github.com/gatherhq/gather/pkg/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Config struct {
	Database *gorm.DB
	Redis    redisStorage.Options
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
}

func Get() *Config {
	initConfig()

	err := logger.Init(logger.Config{
		Debug:     viper.GetBool("settings.debug"),
		LogToFile: viper.GetBool("settings.log-to-file"),
		LogsDir:   viper.GetString("settings.logs-dir"),
	})
	if err != nil {
		panic(err)
	}

	var gormConfig *gorm.Config
	if viper.GetBool("settings.debug") {
		newLogger := gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
		gormConfig = &gorm.Config{
			Logger: newLogger,
		}
	} else {
		gormConfig = &gorm.Config{}
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=disable TimeZone=UTC",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	directoryTTL := viper.GetDuration("service.redis.directory-ttl")
	if directoryTTL == 0 {
		directoryTTL = time.Hour
	}

	return &Config{
		Database: database,
		Redis: redisStorage.Options{
			Host:         viper.GetString("service.redis.host"),
			Port:         viper.GetString("service.redis.port"),
			Password:     viper.GetString("service.redis.password"),
			DirectoryTTL: directoryTTL,
		},
	}
}
