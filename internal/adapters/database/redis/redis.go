package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherhq/gather/internal/adapters/database/redis/directory"
	"github.com/gatherhq/gather/internal/domain/service"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	Directory *directory.Cache
}

type Options struct {
	Host     string
	Port     string
	Password string

	// DirectoryTTL bounds how long category/city rows are served from cache.
	DirectoryTTL time.Duration

	// Fallback answers lookups on cache miss.
	Fallback service.DirectoryStorage
}

func New(opts Options) (*Client, error) {
	directoryStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       0,
	})
	if err := directoryStorage.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping directory storage: %w", err)
	}

	return &Client{
		Directory: directory.NewCache(directoryStorage, opts.Fallback, opts.DirectoryTTL),
	}, nil
}
