package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"vidhub/internal/auth"
	"vidhub/internal/cache"
	"vidhub/internal/config"
	apphttp "vidhub/internal/http"
	"vidhub/internal/metrics"
	"vidhub/internal/repository/sqlite"
	"vidhub/internal/service"
	"vidhub/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	channelRepo := sqlite.NewChannelRepository(db)
	videoRepo := sqlite.NewVideoRepository(db)
	engagementRepo := sqlite.NewEngagementRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := channelRepo.Init(ctx); err != nil {
		logger.Fatalf("init channel repository: %v", err)
	}
	if err := videoRepo.Init(ctx); err != nil {
		logger.Fatalf("init video repository: %v", err)
	}
	if err := engagementRepo.Init(ctx); err != nil {
		logger.Fatalf("init engagement repository: %v", err)
	}

	usernameCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup cache: %v", err)
	}
	media, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	collector := metrics.New(prometheus.DefaultRegisterer)
	usernames := service.NewUsernameDirectory(userRepo, usernameCache, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.Options{
		Users:      service.NewUserService(userRepo),
		Channels:   service.NewChannelService(channelRepo, usernames),
		Videos:     service.NewVideoService(videoRepo, channelRepo, usernames, collector),
		Engagement: service.NewEngagementService(videoRepo, engagementRepo, usernames, collector),
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		Media:      media,
		Metrics:    collector,
		Gatherer:   prometheus.DefaultGatherer,
		Logger:     logger,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildCache shares usernames through redis when an address is configured and keeps
// them in process otherwise.
func buildCache(ctx context.Context, cfg config.Config, logger *logrus.Logger) (cache.UsernameCache, error) {
	if cfg.Cache.RedisAddr == "" {
		return cache.NewMemory(cfg.CacheTTL()), nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if err != nil {
		return nil, err
	}
	logger.Infof("using redis username cache at %s", cfg.Cache.RedisAddr)
	return cache.NewRedis(client, cfg.CacheTTL()), nil
}

// buildStorage presigns s3:// media references when AWS configuration is available.
// Without it every reference is served as stored.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Resolver, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		if cfg.AWS.Profile != "" {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		logger.Warnf("aws config unavailable, serving media references as stored: %v", err)
		return storage.Passthrough{}, nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("presigning s3 media references (region %s)", cfg.Storage.Region)
	return storage.NewS3Resolver(client, cfg.PresignTTL()), nil
}
