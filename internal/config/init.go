package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DefaultPostsPerPage  = 10
	DefaultIndexCacheTTL = 20 * time.Second
	DefaultMediaSweep    = time.Hour
)

type Config struct {
	AppPort       string
	AppEnv        string
	DBDriver      string
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	PostsPerPage  int
	IndexCacheTTL time.Duration
	MediaRoot     string
	// MediaSweep is how often orphaned uploads are removed; 0 turns it off.
	MediaSweep time.Duration
}

// Init loads .env (if any) and reads the configuration from the environment.
func Init() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		Logger.Info("No .env file found, using system environment variables")
	}
	return Load()
}

func Load() (*Config, error) {
	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "8000"),
		AppEnv:        getEnv("APP_ENV", "development"),
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBDSN:         os.Getenv("DB_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		MediaRoot:     getEnv("MEDIA_ROOT", "media"),
		PostsPerPage:  DefaultPostsPerPage,
		IndexCacheTTL: DefaultIndexCacheTTL,
		MediaSweep:    DefaultMediaSweep,
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ADDR is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0 // default Redis database
	}
	cfg.RedisDB = redisDB

	if v := os.Getenv("POSTS_PER_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid POSTS_PER_PAGE %q", v)
		}
		cfg.PostsPerPage = n
	}

	if v := os.Getenv("INDEX_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid INDEX_CACHE_TTL %q", v)
		}
		cfg.IndexCacheTTL = ttl
	}

	if v := os.Getenv("MEDIA_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid MEDIA_SWEEP_INTERVAL %q", v)
		}
		cfg.MediaSweep = d
	}

	Logger.Debug("Configuration loaded",
		zap.String("driver", cfg.DBDriver),
		zap.Int("postsPerPage", cfg.PostsPerPage),
		zap.Duration("indexCacheTTL", cfg.IndexCacheTTL))
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
