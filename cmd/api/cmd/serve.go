package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "tabqa/docs"
	"tabqa/internal/config"
	handlers "tabqa/internal/http/handler"
	"tabqa/internal/http/middleware"
	"tabqa/internal/logging"
	"tabqa/internal/otel"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API for ingesting tables and answering questions.

The document store is chosen by STORE_BACKEND (postgres, elasticsearch or memory).
Original uploads are archived when MINIO_ENDPOINT is set.

Example:
  tabqa serve --config config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, syncLog := setupLogger(cfg, nil)
	defer syncLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, cfg.ServiceName, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error(err, "tracing_shutdown_failed")
		}
	}()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(log)

	server, err := newServer(cfg, a, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server_starting", "addr", addr, "store_backend", cfg.StoreBackend)
		if err := server.Listen(addr); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server_stopped")
	return nil
}

// newServer builds the Fiber app with middleware and routes.
func newServer(cfg *config.AppConfig, a *app, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*fiber.App, error) {
	server := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.Ingest.MaxUploadBytes,
		DisableStartupMessage: true,
	})

	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	server.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(logging.Logger()))
	server.Use(metrics.Handler())

	handlers.RegisterRoutes(server, a.repo, a.docs, a.queries)
	server.Get("/metrics", handlers.MetricsHandler(gatherer))

	// Swagger UI; the document leaves host and schemes empty so clients
	// resolve them against the URL the spec was fetched from.
	server.Get("/swagger/*", swagger.HandlerDefault)

	return server, nil
}
