package config

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisClient is the shared client used by the page cache.
var RedisClient *redis.Client

// InitRedis connects to Redis and verifies the connection with PING.
func InitRedis(ctx context.Context, cfg *Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	s, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return err
	}
	Logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr), zap.String("ping", s))
	return nil
}
