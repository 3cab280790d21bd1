package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss возвращается, когда ключа нет в кэше
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository кэширует разрешение алиаса в ссылку для редиректов.
// События кликов в кэш не попадают.
type CacheRepository interface {
	Get(ctx context.Context, alias string) (*models.ShortURL, error)
	Set(ctx context.Context, alias string, url *models.ShortURL, ttl time.Duration) error
	Delete(ctx context.Context, alias string) error
}

type cacheRepository struct {
	redis *RedisDB
}

func NewCacheRepository(redis *RedisDB) CacheRepository {
	return &cacheRepository{redis: redis}
}

func (r *cacheRepository) Get(ctx context.Context, alias string) (*models.ShortURL, error) {
	data, err := r.redis.Client.Get(ctx, r.key(alias)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var url models.ShortURL
	if err := json.Unmarshal(data, &url); err != nil {
		return nil, fmt.Errorf("failed to unmarshal url: %w", err)
	}

	return &url, nil
}

func (r *cacheRepository) Set(ctx context.Context, alias string, url *models.ShortURL, ttl time.Duration) error {
	data, err := json.Marshal(url)
	if err != nil {
		return fmt.Errorf("failed to marshal url: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(alias), data, ttl).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, alias string) error {
	return r.redis.Client.Del(ctx, r.key(alias)).Err()
}

func (r *cacheRepository) key(alias string) string {
	return "url:" + alias
}
