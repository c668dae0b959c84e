package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gatherhq/gather/internal/domain/entity"
	"github.com/gatherhq/gather/internal/domain/service"
	"github.com/redis/go-redis/v9"
)

// Cache is a read-through TTL cache over the directory storage. Categories
// and cities are stable reference data; users are never cached so a deleted
// user cannot pass an existence check. Guard conditions inside cascade
// transactions never read from here.
type Cache struct {
	redis    *redis.Client
	fallback service.DirectoryStorage
	ttl      time.Duration
}

func NewCache(client *redis.Client, fallback service.DirectoryStorage, ttl time.Duration) *Cache {
	return &Cache{
		redis:    client,
		fallback: fallback,
		ttl:      ttl,
	}
}

func (c *Cache) User(ctx context.Context, id int64) (*entity.User, error) {
	return c.fallback.User(ctx, id)
}

func (c *Cache) Category(ctx context.Context, id int64) (*entity.Category, error) {
	key := fmt.Sprintf("directory:category:%d", id)

	var category entity.Category
	if ok := c.get(ctx, key, &category); ok {
		return &category, nil
	}

	fetched, err := c.fallback.Category(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, fetched)
	return fetched, nil
}

func (c *Cache) City(ctx context.Context, id int64) (*entity.City, error) {
	key := fmt.Sprintf("directory:city:%d", id)

	var city entity.City
	if ok := c.get(ctx, key, &city); ok {
		return &city, nil
	}

	fetched, err := c.fallback.City(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, fetched)
	return fetched, nil
}

// get loads key into dest, reporting whether the cache had a usable value. A
// broken or missing redis never fails the lookup, it only skips the cache.
func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), dest) == nil
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.redis.Set(ctx, key, data, c.ttl)
}
