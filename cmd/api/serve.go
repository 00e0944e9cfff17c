package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marketapi/internal/auth"
	"marketapi/internal/config"
	"marketapi/internal/database"
	"marketapi/internal/database/migration"
	"marketapi/internal/events"
	handlers "marketapi/internal/http/handler"
	"marketapi/internal/http/middleware"
	"marketapi/internal/logger"
	"marketapi/internal/otel"
	"marketapi/internal/repository/postgres"
	"marketapi/internal/service"
	"marketapi/internal/storage"
)

func serveCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Load(name))
		},
	}
}

func migrateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema of one service's database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(name)
			log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel, Service: name})

			db, err := database.NewPostgres(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer db.Close()

			return migration.EnsureMigrated(cmd.Context(), db, name, log)
		},
	}
	cmd.Flags().StringVarP(&name, "service", "s", config.ServiceUser, "service whose schema to migrate (user, product, media)")
	return cmd
}

// serve runs one service until SIGINT or SIGTERM.
func serve(ctx context.Context, cfg *config.AppConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel, Service: cfg.Service})

	shutdownTracing, err := otel.Init(ctx, cfg.Service+"-service", log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error().Err(err).Msg("tracer shutdown")
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Service, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return fmt.Errorf("init tokens: %w", err)
	}

	var producer events.Producer = events.NopProducer{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer = events.NewKafkaWriter(cfg.Kafka)
	}
	emitter, err := events.NewEmitter(producer, log, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init events: %w", err)
	}
	defer emitter.Close()

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "marketapi-" + cfg.Service,
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    bodyLimit(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(metrics.Handler())

	handlers.RegisterCommonRoutes(app, db, prometheus.DefaultGatherer)
	if err := mount(app, cfg, db, tokens, emitter, log); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.Info().Str("port", cfg.Port).Msg("service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	return nil
}

// mount wires the service-specific repository, service and routes.
func mount(app *fiber.App, cfg *config.AppConfig, db *sql.DB, tokens *auth.TokenIssuer, pub events.Publisher, log zerolog.Logger) error {
	switch cfg.Service {
	case config.ServiceUser:
		svc := service.NewUserService(postgres.NewUserPostgres(db), auth.BcryptHasher{}, tokens, pub, cfg.Kafka.UserTopic, log)
		handlers.RegisterUserRoutes(app, svc, tokens)

	case config.ServiceProduct:
		svc := service.NewProductService(postgres.NewProductPostgres(db), pub, cfg.Kafka.ProductTopic, log)
		handlers.RegisterProductRoutes(app, svc, tokens)

	case config.ServiceMedia:
		store, err := storage.New(cfg.Media, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		repo := postgres.NewMediaPostgres(db)
		coord := service.NewMediaCoordinator(store, repo, cfg.Media, log)
		svc := service.NewMediaService(repo, coord, pub, cfg.Kafka.MediaTopic, log)

		uploadDir := ""
		if !strings.EqualFold(cfg.Media.Driver, storage.DriverMinIO) {
			uploadDir = cfg.Media.UploadDir
		}
		handlers.RegisterMediaRoutes(app, svc, tokens, uploadDir)

	default:
		return fmt.Errorf("unknown service %q", cfg.Service)
	}
	return nil
}

// bodyLimit leaves room above the upload cap so oversized files reach the
// size check and get its message instead of a bare 413. Files up to twice the
// cap, plus multipart framing, are answered with that message.
func bodyLimit(cfg *config.AppConfig) int {
	if cfg.Service == config.ServiceMedia {
		return int(2*cfg.Media.MaxFileSize) + 1<<20
	}
	return fiber.DefaultBodyLimit
}
