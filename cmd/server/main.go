package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gamehub/station-server-go/internal/config"
	"github.com/gamehub/station-server-go/internal/database"
	"github.com/gamehub/station-server-go/internal/handler"
	"github.com/gamehub/station-server-go/internal/jobs"
	"github.com/gamehub/station-server-go/internal/metrics"
	"github.com/gamehub/station-server-go/internal/middleware"
	"github.com/gamehub/station-server-go/internal/redis"
	"github.com/gamehub/station-server-go/internal/repository"
	"github.com/gamehub/station-server-go/internal/service"
	"github.com/gamehub/station-server-go/internal/sse"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := cfg.IsProduction()
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load report timezone")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	if cfg.AutoMigrate {
		if err := db.Migrate(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		log.Info().Msg("database schema applied")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	userRepo := repository.NewUserRepository(db.DB)
	stationRepo := repository.NewStationRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	rateRepo := repository.NewRateRepository(db.DB)

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	userService := service.NewUserService(db, userRepo, sessionRepo, tokenService)
	rateService := service.NewRateService(rateRepo, cfg.DefaultRate())
	stationService := service.NewStationService(db, stationRepo, broker)
	sessionService := service.NewSessionService(db, userRepo, stationRepo, sessionRepo, rateService, broker)
	reportService := service.NewReportService(sessionRepo, loc)

	if cfg.AdminUsername != "" && cfg.AdminPasswordHash != "" {
		if err := userService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPasswordHash); err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap admin user")
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService, userService)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client, cfg.RateLimitPerMin)
	loginLimitMiddleware := middleware.NewLoginLimitMiddleware(redisClient.Client)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	healthHandler := handler.NewHealthHandler(db, config.DBPingTimeout)
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	eventsHandler := handler.NewEventsHandler(broker)
	stationHandler := handler.NewStationHandler(stationService)
	sessionHandler := handler.NewSessionHandler(sessionService, loc)
	rateHandler := handler.NewRateHandler(rateService)
	reportHandler := handler.NewReportHandler(reportService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeadersMiddleware.Handler)
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimitMiddleware.Handler).Post("/login", authHandler.Login)
			r.With(loginLimitMiddleware.Handler).Post("/register", authHandler.Register)
			r.With(authMiddleware.Handler).Get("/me", authHandler.Me)
		})

		// The event stream is long lived and must not be cut by the request timeout.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Use(rateLimitMiddleware.Handler)
			r.Get("/stations/events", eventsHandler.ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
			r.Use(authMiddleware.Handler)
			r.Use(rateLimitMiddleware.Handler)

			r.Mount("/users", userHandler.Routes())
			r.Mount("/stations", stationHandler.Routes())
			r.Mount("/sessions", sessionHandler.Routes())
			r.Mount("/rates", rateHandler.Routes())
			r.Mount("/reports", reportHandler.Routes())
		})
	})

	statsJob := jobs.NewStatsJob(stationRepo, sessionRepo, config.StatsJobInterval)
	statsJob.Start()
	defer statsJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
