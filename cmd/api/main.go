package main

import (
	"context"
	"database/sql"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"pollsapi/docs"
	"pollsapi/internal/config"
	"pollsapi/internal/database"
	"pollsapi/internal/database/migration"
	handlers "pollsapi/internal/http/handler"
	"pollsapi/internal/http/middleware"
	"pollsapi/internal/logger"
	appotel "pollsapi/internal/otel"
	"pollsapi/internal/repository"
	"pollsapi/internal/repository/memory"
	"pollsapi/internal/repository/postgres"
	"pollsapi/internal/service"
	"pollsapi/internal/storage"
)

// @title Polls API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.NewStdout(cfg.Location(), cfg.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	repo, db := openStore(ctx, cfg, log)
	if db != nil {
		defer db.Close()
	}

	// Exports stay disabled unless an object store is configured
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.Error(err))
		}
	} else {
		log.Info("results export disabled", zap.String("reason", "MINIO_ENDPOINT not set"))
	}

	pollSvc := service.NewPollService(repo, log.Named("polls"))
	adminSvc := service.NewAdminService(repo, objStore, cfg.ExportURLExpiry, log.Named("admin"))

	app := fiber.New(fiber.Config{
		AppName:      "pollsapi",
		ErrorHandler: handlers.ErrorHandler(),
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log.Named("http")))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(otelhttp.NewHandler(promhttp.Handler(), "metrics")))

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	handlers.RegisterRoutes(app, pinger, pollSvc, adminSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info("server_starting", zap.String("addr", addr), zap.String("store", cfg.StoreDriver))
		if err := app.Listen(addr); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown", zap.Error(err))
	}
}

// openStore selects the repository adapter named by STORE_DRIVER. The returned
// *sql.DB is nil for the in-memory store.
func openStore(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (repository.QuestionRepository, *sql.DB) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return memory.NewQuestionMemory(), nil
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			log.Fatal("failed to migrate database", zap.Error(err))
		}
		return postgres.NewQuestionPostgres(db), db
	default:
		log.Fatal("unknown STORE_DRIVER", zap.String("store_driver", cfg.StoreDriver))
		return nil, nil
	}
}
