package main

import (
	"context"
	"os"
	"time"
	dbadapter "yatube/internal/adapters/database"
	"yatube/internal/adapters/httpapi"
	mediaadapter "yatube/internal/adapters/media"
	redisadapter "yatube/internal/adapters/redis"
	"yatube/internal/config"
	commentapp "yatube/internal/core/comment/service"
	followapp "yatube/internal/core/follow/service"
	groupapp "yatube/internal/core/group/service"
	postapp "yatube/internal/core/post/service"
	userapp "yatube/internal/core/user/service"
	"yatube/internal/workers"

	"go.uber.org/zap"
)

// uploads younger than this may still belong to a request in flight
const mediaGrace = time.Hour

func main() {
	config.InitLogger(os.Getenv("APP_ENV"))
	defer config.Logger.Sync()

	cfg, err := config.Init()
	if err != nil {
		config.Logger.Fatal("Invalid configuration", zap.Error(err))
	}

	if err := config.InitDB(cfg); err != nil {
		config.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := dbadapter.Migrate(config.DB); err != nil {
		config.Logger.Fatal("Error during migrations", zap.Error(err))
	}
	config.Logger.Info("Database migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.InitRedis(ctx, cfg); err != nil {
		config.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer config.Close()

	// outbound adapters
	userRepo := dbadapter.NewUserRepositoryDatabase(config.DB)
	groupRepo := dbadapter.NewGroupRepositoryDatabase(config.DB)
	postRepo := dbadapter.NewPostRepositoryDatabase(config.DB)
	commentRepo := dbadapter.NewCommentRepositoryDatabase(config.DB)
	followRepo := dbadapter.NewFollowRepositoryDatabase(config.DB)
	pageCache := redisadapter.NewPageCacheRedis(config.RedisClient)
	images := mediaadapter.NewImageStorageLocal(cfg.MediaRoot)

	// use cases
	userSvc := userapp.NewUserService(userRepo, []byte(cfg.JWTSecret))
	postSvc := postapp.NewPostService(postRepo, groupRepo, userRepo, images, cfg.PostsPerPage)
	groupSvc := groupapp.NewGroupService(groupRepo)
	commentSvc := commentapp.NewCommentService(commentRepo, postRepo)
	followSvc := followapp.NewFollowService(followRepo, userRepo)

	r := httpapi.SetupRoutes(userSvc, postSvc, groupSvc, commentSvc, followSvc, httpapi.Options{
		PageCache:     pageCache,
		IndexCacheTTL: cfg.IndexCacheTTL,
		MediaRoot:     cfg.MediaRoot,
	})

	if cfg.MediaSweep > 0 {
		janitor := workers.NewMediaJanitor(images, postRepo, mediaGrace, cfg.MediaSweep, config.Logger)
		go janitor.Run(ctx)
	}

	config.Logger.Info("App is running...", zap.String("port", cfg.AppPort))
	if err := r.Run(":" + cfg.AppPort); err != nil {
		config.Logger.Fatal("Server failed to start", zap.Error(err))
	}
}
