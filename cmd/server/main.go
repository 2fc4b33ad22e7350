package main

import (
	"alcyxob/coaching-app/internal/api"
	"alcyxob/coaching-app/internal/config"
	"alcyxob/coaching-app/internal/logging"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository/memory"
	"alcyxob/coaching-app/internal/repository/mongo"
	"alcyxob/coaching-app/internal/service"
	"alcyxob/coaching-app/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// @title Coaching API
// @version 1.0
// @description API for coaches planning workouts and athletes logging sets.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.ToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Infof("starting coaching server, database driver: %s", cfg.Database.Driver)

	if err := run(cfg); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	log.Info("server exiting")
}

func run(cfg config.Config) error {
	ctx := context.Background()

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsManager := metrics.NewManager(cfg.Metrics.Namespace, "api", registry)

	// --- Repositories ---
	repos, closeRepos, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeRepos()

	// --- Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("init file storage: %w", err)
		}
	} else {
		log.Warn("s3 bucket not configured, video uploads are disabled")
	}

	// --- Services ---
	authService := service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration)
	exerciseService := service.NewExerciseService(repos.Exercises, repos.Uploads, fileStorage, cfg.S3.PresignExpiry)
	coachService := service.NewCoachService(repos, metricsManager, service.ScheduleOptions{
		MaxWeeks:        cfg.Schedule.MaxWeeks,
		CopyConcurrency: cfg.Schedule.CopyConcurrency,
	})
	athleteService := service.NewAthleteService(repos, exerciseService, metricsManager)

	// --- Router ---
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.LoggerMiddleware(), api.MetricsMiddleware(metricsManager))

	metricsEndpoint := api.MetricsEndpoint{Path: cfg.Metrics.Path}
	if cfg.Metrics.Enabled {
		metricsEndpoint.Handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}
	api.SetupRoutes(router, api.Services{
		Auth:     authService,
		Coach:    coachService,
		Athlete:  athleteService,
		Exercise: exerciseService,
	}, metricsEndpoint)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Infof("received %s, shutting down", sig)
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}

// openRepositories builds the stores for the configured driver. The returned
// func releases the underlying connection.
func openRepositories(ctx context.Context, cfg config.DatabaseConfig) (service.Repositories, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return service.Repositories{
			Users:       memory.NewUserRepository(),
			Teams:       memory.NewTeamRepository(),
			Workouts:    memory.NewWorkoutRepository(),
			Exercises:   memory.NewExerciseRepository(),
			Uploads:     memory.NewUploadRepository(),
			SetLogs:     memory.NewSetLogRepository(),
			Completions: memory.NewCompletionRepository(),
		}, func() {}, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return service.Repositories{}, nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		closeFn := func() {
			log.Info("disconnecting mongodb")
			if err := mongo.DisconnectDB(client); err != nil {
				log.WithError(err).Error("failed to disconnect mongodb")
			}
		}
		db := client.Database(cfg.Name)

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(indexCtx, db); err != nil {
			closeFn()
			return service.Repositories{}, nil, fmt.Errorf("ensure indexes: %w", err)
		}

		return service.Repositories{
			Users:       mongo.NewMongoUserRepository(db),
			Teams:       mongo.NewMongoTeamRepository(db),
			Workouts:    mongo.NewMongoWorkoutRepository(db),
			Exercises:   mongo.NewMongoExerciseRepository(db),
			Uploads:     mongo.NewMongoUploadRepository(db),
			SetLogs:     mongo.NewMongoSetLogRepository(db),
			Completions: mongo.NewMongoCompletionRepository(db),
		}, closeFn, nil
	}
	return service.Repositories{}, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
