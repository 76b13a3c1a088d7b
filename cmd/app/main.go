package main

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	dbadapter "webcourse/internal/adapters/database"
	"webcourse/internal/adapters/httpapi"
	redisadapter "webcourse/internal/adapters/redis"
	"webcourse/internal/config"
	accountapp "webcourse/internal/core/account/service"
	groupapp "webcourse/internal/core/group/service"
	postapp "webcourse/internal/core/post/service"
	userapp "webcourse/internal/core/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	config.InitLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		config.Logger.Fatal("Invalid configuration", zap.Error(err))
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		config.Logger.Fatal("Database connection failed", zap.Error(err))
	}
	if err := dbadapter.AutoMigrate(db); err != nil {
		config.Logger.Fatal("Error during migrations", zap.Error(err))
	}
	config.Logger.Info("Database migrations completed")

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		config.Logger.Fatal("Redis connection failed", zap.Error(err))
	}

	defer closeResources(config.Logger)

	userRepo := dbadapter.NewUserRepositoryDatabase(db)
	postRepo := dbadapter.NewPostRepositoryDatabase(db)
	groupRepo := dbadapter.NewGroupRepositoryDatabase(db)
	accountRepo := dbadapter.NewAccountRepositoryDatabase(db)
	flashRepo := redisadapter.NewFlashRepositoryRedis(rdb, cfg.FlashTTL)

	userSvc := userapp.NewUserService(userRepo, postRepo)
	postSvc := postapp.NewPostService(postRepo, userRepo)
	groupSvc := groupapp.NewGroupService(groupRepo, userRepo)
	accountSvc := accountapp.NewAccountService(accountRepo, []byte(cfg.JWTSecret), cfg.SessionTTL)

	// staff login for the admin site
	if cfg.AdminUsername != "" {
		if err := accountSvc.EnsureAccount(context.Background(), cfg.AdminUsername, cfg.AdminPassword, true); err != nil {
			config.Logger.Fatal("Could not create admin account", zap.Error(err))
		}
	}

	r, err := httpapi.SetupRoutes(httpapi.Dependencies{
		Users:      userSvc,
		Posts:      postSvc,
		Groups:     groupSvc,
		Accounts:   accountSvc,
		Flash:      flashRepo,
		Logger:     config.Logger,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
		SessionTTL: cfg.SessionTTL,
	})
	if err != nil {
		config.Logger.Fatal("Could not build routes", zap.Error(err))
	}

	config.Logger.Info("App is running...", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		config.Logger.Error("Server stopped", zap.Error(err))
	}
}

// closeResources closes the Redis and database connections.
func closeResources(logger *zap.Logger) {
	if err := config.RedisClient.Close(); err != nil {
		logger.Error("Error closing Redis connection", zap.Error(err))
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		logger.Error("Error getting raw DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection", zap.Error(err))
	}
	_ = logger.Sync()
}
