package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/config"
	"github.com/sketchwork/assessment-service/internal/delivery/httpd"
	"github.com/sketchwork/assessment-service/internal/repository"
	"github.com/sketchwork/assessment-service/internal/service"
	"github.com/sketchwork/assessment-service/internal/service/integration"
	"github.com/sketchwork/assessment-service/internal/worker"
	"github.com/sketchwork/assessment-service/internal/worker/queue"
)

type App struct {
	server        *http.Server
	logger        zerolog.Logger
	config        *config.Config
	db            *sql.DB
	rabbitMQ      *integration.RabbitMQClient
	gradingWorker worker.GradingWorker
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	// The broker and object store are auxiliary: grading works without
	// them, so a connection failure degrades the service instead of
	// refusing to start.
	var events integration.EventPublisher
	rabbitMQ, err := integration.NewRabbitMQClient(cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, grading events disabled")
		rabbitMQ = nil
	} else {
		events = rabbitMQ
	}

	var imageStore repository.ImageStore
	minioStore, err := repository.NewMinioImageStore(
		cfg.Minio.Endpoint,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.Bucket,
		cfg.Minio.Region,
		cfg.Minio.UseSSL,
		log,
	)
	if err != nil {
		log.Warn().Err(err).Msg("MinIO unavailable, answer image archival disabled")
	} else {
		imageStore = minioStore
	}

	assignmentRepo := repository.NewAssignmentRepository(db, log)
	rubricRepo := repository.NewRubricRepository(db, log)
	studentRepo := repository.NewStudentRepository(db, log)
	submissionRepo := repository.NewSubmissionRepository(db, log)
	scoreRepo := repository.NewScoreRepository(db, log)

	llmClient := integration.NewOpenRouterClient(cfg.OpenRouter, log)
	generatorClient := integration.NewGeneratorClient(llmClient, log)
	graderClient := integration.NewGraderClient(llmClient, log)

	assignmentService := service.NewAssignmentService(
		assignmentRepo,
		rubricRepo,
		generatorClient,
		log,
	)

	studentService := service.NewStudentService(studentRepo, log)

	submissionService := service.NewSubmissionService(
		submissionRepo,
		scoreRepo,
		assignmentRepo,
		rubricRepo,
		graderClient,
		imageStore,
		events,
		log,
	)

	reportService := service.NewReportService(
		assignmentRepo,
		rubricRepo,
		submissionRepo,
		scoreRepo,
		log,
	)

	var gradingWorker worker.GradingWorker
	if rabbitMQ != nil {
		retryConsumer := queue.NewRabbitMQConsumer(
			rabbitMQ.Channel(),
			cfg.RabbitMQ.RetryQueue,
			cfg.RabbitMQ.ConsumerTag,
			log,
		)
		gradingWorker = worker.NewGradingWorker(retryConsumer, submissionService, log)
	}

	handler := httpd.NewHandler(
		assignmentService,
		studentService,
		submissionService,
		reportService,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(120 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:        server,
		logger:        log,
		config:        cfg,
		db:            db,
		rabbitMQ:      rabbitMQ,
		gradingWorker: gradingWorker,
	}, nil
}

func (a *App) Run() error {
	if a.gradingWorker != nil {
		if err := a.gradingWorker.Start(context.Background()); err != nil {
			a.logger.Error().Err(err).Msg("Failed to start grading retry worker")
			return err
		}
	}

	a.logger.Info().Msgf("Starting assessment service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down assessment service...")

	if a.gradingWorker != nil {
		if err := a.gradingWorker.Stop(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop grading retry worker")
		}
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Assessment service stopped")
	return nil
}
