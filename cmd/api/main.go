package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/auth"
	"github.com/justsurfingit/goodjob-api/internal/cache"
	"github.com/justsurfingit/goodjob-api/internal/config"
	"github.com/justsurfingit/goodjob-api/internal/database"
	"github.com/justsurfingit/goodjob-api/internal/database/memory"
	"github.com/justsurfingit/goodjob-api/internal/graph"
	"github.com/justsurfingit/goodjob-api/internal/handlers"
	"github.com/justsurfingit/goodjob-api/internal/logging"
	"github.com/justsurfingit/goodjob-api/internal/mailer"
	"github.com/justsurfingit/goodjob-api/internal/metrics"
	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/services"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

const (
	verifyEmailTokenTTL = 7 * 24 * time.Hour
	shutdownTimeout     = 15 * time.Second
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.Must(cfg.LogLevel, cfg.IsDevelopment())
	defer logger.Sync() //nolint:errcheck

	if err := cfg.ValidateAPI(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database connection
	db := openStore(cfg, logger)

	// 3. Redis cache for the catalog lists
	var redisCache *cache.Redis
	if cfg.RedisURL != "" {
		redisCache, err = cache.New(cfg.RedisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis is not reachable, serving from the database", zap.Error(err))
		}
	}

	// 4. Gmail integration
	client, clientErr := auth.GmailClient(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile)
	mail := mailer.FromGmailClient(ctx, client, clientErr, cfg.MailFrom, logger)

	// 5. Core services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, 0)
	matcher := services.NewCompanyMatcher(db)
	experienceService := services.NewExperienceService(db, matcher, logger)
	workingService := services.NewSalaryWorkTimeService(db, matcher, logger)
	catalogService := services.NewCatalogService(db, redisCache, logger)
	authService := services.NewAuthService(db,
		auth.NewFacebookVerifier(cfg.FacebookGraphURL),
		auth.NewGoogleVerifier(cfg.GoogleClientID),
		tokens,
		auth.NewTokenIssuer(cfg.VerifyEmailJWTSecret, verifyEmailTokenTTL),
		mail,
		logger,
	)

	// 6. Performance email job
	if cfg.PerformanceEmailSchedule != "" {
		notifications := services.NewNotificationService(db, mail, cfg.SiteURL, cfg.SurveyFormURL, logger)
		if _, err := notifications.StartScheduler(ctx, cfg.PerformanceEmailSchedule); err != nil {
			logger.Fatal("invalid PERFORMANCE_EMAIL_SCHEDULE", zap.Error(err))
		}
		logger.Info("performance email job scheduled", zap.String("schedule", cfg.PerformanceEmailSchedule))
	}

	// 7. GraphQL schema and REST handlers
	schema, err := graph.NewSchema(graph.Services{
		Experiences: experienceService,
		Workings:    workingService,
		Catalog:     catalogService,
		Auth:        authService,
	}, logger)
	if err != nil {
		logger.Fatal("graphql schema", zap.Error(err))
	}
	rest := &handlers.Set{
		Auth:        handlers.NewAuthHandler(authService, logger),
		Experiences: handlers.NewExperienceHandler(experienceService, logger),
		Workings:    handlers.NewWorkingHandler(workingService, logger),
		Jobs:        handlers.NewJobHandler(services.NewJobService(db), services.NewUserService(db), logger),
	}

	// 8. Router, CORS and middleware
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.RequestLogger(logger), metrics.Middleware())
	r.Use(middleware.Authenticate(tokens, db, logger))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	limiter.StartJanitor(ctx, time.Minute)

	// 9. Routes
	r.GET("/metrics", metrics.Handler())
	schema.Register(r, limiter.Handler())
	rest.Register(r, limiter.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore connects to Postgres, or keeps everything in memory when
// DATABASE_URL is memory:// (local development only).
func openStore(cfg *config.Config, logger *zap.Logger) store.Store {
	if strings.HasPrefix(cfg.DatabaseURL, "memory://") {
		logger.Warn("using the in-memory store, data is lost on restart")
		return memory.New()
	}
	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	return database.NewStore(db)
}
