package redis

import (
	"context"
	"strconv"
	"time"
	"yatube/internal/config"
	pageCachePort "yatube/internal/ports/pagecache"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "pagecache:"

// PageCacheRedis keeps rendered pages in Redis hashes that expire on their own.
type PageCacheRedis struct {
	Client *redis.Client
}

func NewPageCacheRedis(client *redis.Client) *PageCacheRedis {
	return &PageCacheRedis{Client: client}
}

func (r *PageCacheRedis) Get(ctx context.Context, key string) (*pageCachePort.Page, error) {
	fields, err := r.Client.HGetAll(ctx, keyPrefix+key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	status, err := strconv.Atoi(fields["status"])
	if err != nil {
		config.Logger.Warn("Dropping malformed cache entry", zap.String("key", key))
		return nil, nil
	}
	return &pageCachePort.Page{
		Status:      status,
		ContentType: fields["content_type"],
		Body:        []byte(fields["body"]),
	}, nil
}

func (r *PageCacheRedis) Set(ctx context.Context, key string, page *pageCachePort.Page, ttl time.Duration) error {
	k := keyPrefix + key
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, map[string]interface{}{
			"status":       page.Status,
			"content_type": page.ContentType,
			"body":         page.Body,
		})
		pipe.Expire(ctx, k, ttl)
		return nil
	})
	return err
}

// Clear drops every cached page.
func (r *PageCacheRedis) Clear(ctx context.Context) error {
	iter := r.Client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.Client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	config.Logger.Info("Page cache cleared", zap.Int("keys", len(keys)))
	return nil
}
