package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"challenge_hub/config"
	"challenge_hub/handler"
	"challenge_hub/middleware"
	"challenge_hub/model"
	"challenge_hub/repository"
	"challenge_hub/service"
	"challenge_hub/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func init() {
	// the service stores and compares everything in UTC
	time.Local = time.UTC
}

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, !cfg.IsProduction())
	defer utils.SyncLogger()
	log := utils.Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	if err := utils.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer utils.CloseDB()

	db := utils.GetDB()
	if err := db.AutoMigrate(&model.User{}, &model.Friendship{}, &model.Notification{}, &model.NotificationTemplate{}); err != nil {
		log.Fatalw("failed to migrate database", "error", err)
	}

	// redis only backs the pair lock and the activity throttle
	var rdb *redis.Client
	if err := utils.InitRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Warnw("redis unavailable, running without pair lock", "error", err)
		_ = utils.CloseRedis()
	} else {
		rdb = utils.GetRedis()
		defer utils.CloseRedis()
	}

	middleware.InitAuth(cfg.JWTSecret)

	ctx := context.Background()
	notifTemplateSvc := service.NewNotificationTemplateService(db)
	if err := notifTemplateSvc.InitDefaultTemplates(ctx); err != nil {
		log.Warnw("failed to init default notification templates", "error", err)
	}

	users := repository.NewUserRepo(db)
	notifSvc := service.NewNotificationService(db)
	friendSvc := service.NewFriendshipService(users, repository.NewFriendshipRepo(db), notifSvc)
	if rdb != nil {
		friendSvc.SetPairLocker(service.NewRedisPairLocker(rdb, cfg.PairLockTTL))
	}

	friendHandler := handler.NewFriendshipHandler(friendSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)

	requestLimiter := middleware.NewRateLimiter(cfg.FriendRequestRate, cfg.FriendRequestBurst)
	stopCleanup := make(chan struct{})
	go requestLimiter.RunCleanup(stopCleanup)
	defer close(stopCleanup)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(middleware.MonitorMiddleware())

	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"status": "ok"})
	})
	if cfg.MetricsUser != "" {
		r.GET("/metrics", middleware.MetricsAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass), gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(users))
	api.Use(middleware.ActivityMiddleware(users, rdb))
	friendHandler.RegisterRoutes(api, requestLimiter.Middleware())
	notifHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("challenge_hub starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
