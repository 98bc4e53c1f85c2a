package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/repository"
	"github.com/noah-isme/daycare-api/internal/service"
	"github.com/noah-isme/daycare-api/pkg/cache"
	"github.com/noah-isme/daycare-api/pkg/config"
	"github.com/noah-isme/daycare-api/pkg/database"
	"github.com/noah-isme/daycare-api/pkg/logger"
	"github.com/noah-isme/daycare-api/pkg/mqtt"
)

// @title Daycare API
// @version 1.0.0
// @description Child daily status, sleep, announcements and day summaries for parents and staff
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	validate := validator.New()
	loc := cfg.Location()

	var cacheRepo service.CacheRepository
	var pinger func(context.Context) error
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, announcement cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			redisCache := repository.NewCacheRepository(client, cfg.Cache.KeyPrefix, logr)
			cacheRepo = redisCache
			pinger = redisCache.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.AnnouncementTTL, logr, cfg.Cache.Enabled)
	// Drop announcement lists cached by a previous process.
	_ = cacheSvc.Invalidate(context.Background(), service.AnnouncementCachePattern)

	var publisher service.EventPublisher
	if cfg.Events.Enabled {
		client, err := mqtt.NewClient(cfg.Events, logr)
		if err != nil {
			logr.Warn("mqtt unavailable, update events disabled", zap.Error(err))
		} else {
			defer client.Close()
			publisher = client
		}
	}
	events := service.NewEventService(publisher, service.EventServiceConfig{
		TopicPrefix: cfg.Events.TopicPrefix,
		Workers:     cfg.Events.Workers,
		MaxRetries:  cfg.Events.Retries,
		RetryDelay:  cfg.Events.RetryDelay,
	}, metrics, logr)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	childRepo := repository.NewChildRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	summaryRepo := repository.NewDaySummaryRepository(db)
	metaRepo := repository.NewChildMetaRepository(db)

	authSvc := service.NewAuthService(userRepo, sessionRepo, auditRepo, childRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	userSvc := service.NewUserService(userRepo, auditRepo, auditRepo, validate, logr)
	childSvc := service.NewChildService(childRepo, userRepo, auditRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(childRepo, childSvc, events, metrics, service.AttendanceServiceConfig{
		Location:      loc,
		PhotoMaxBytes: cfg.Photos.MaxBytes,
	}, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, childRepo, cacheSvc, cfg.Cache.AnnouncementTTL, validate, logr)
	dayViewSvc := service.NewDayViewService(childSvc, announcementSvc, summaryRepo, metrics, loc, nil, logr)
	daySummarySvc := service.NewDaySummaryService(summaryRepo, childRepo, events, loc, cfg.Photos.MaxBytes, validate, logr)
	notificationSvc := service.NewNotificationService(metaRepo, childSvc, summaryRepo, loc, logr)
	reportSvc := service.NewReportService(childRepo, dayViewSvc, service.ReportServiceConfig{Enabled: cfg.Reports.Enabled}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events.Start(ctx)
	defer events.Stop()

	router := newRouter(routerDeps{
		cfg:           cfg,
		logger:        logr,
		metrics:       metrics,
		auditWriter:   auditRepo,
		auth:          authSvc,
		users:         userSvc,
		children:      childSvc,
		attendance:    attendanceSvc,
		announcements: announcementSvc,
		dayView:       dayViewSvc,
		daySummaries:  daySummarySvc,
		notifications: notificationSvc,
		reports:       reportSvc,
		ready: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if pinger != nil {
				if err := pinger(ctx); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
