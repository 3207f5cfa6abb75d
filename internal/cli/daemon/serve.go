package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/api/handlers"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/config"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/jobs"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/server"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the devdoc API server on the specified port",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, version)
		},
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().String("docs", "", "Documentation directory used by reload requests (default DEVDOC_DOCS_DIRECTORY)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.HasSentry() {
		// 10% sampling in production, everything in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	app, err := Build(ctx, cfg, BuildOptions{SkipMigrations: noMigrate})
	if err != nil {
		return err
	}
	defer app.Close()

	var saver handlers.SnapshotSaver
	var snapshotWorker *jobs.Worker
	if app.Snapshot != nil {
		saver = app.Snapshot
		snapshotWorker = jobs.NewWorker("snapshot", app.Snapshot, cfg.SnapshotInterval, true)
		go snapshotWorker.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		QueryHandler:  handlers.NewQueryHandler(app.Query),
		IngestHandler: handlers.NewIngestHandler(app.Ingest, cfg.DocsDirectory, saver),
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Stopping after the server drains lets the final flush see every ingest.
	if snapshotWorker != nil {
		snapshotWorker.Stop()
	}

	log.Println("server exited")
	return nil
}

// loadConfig reads the environment and applies any flags the user set
// explicitly before validating.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	if flags.Changed("docs") {
		cfg.DocsDirectory, _ = flags.GetString("docs")
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize, _ = flags.GetInt("chunk-size")
	}
	if flags.Changed("chunk-overlap") {
		cfg.ChunkOverlap, _ = flags.GetInt("chunk-overlap")
	}
	if flags.Changed("index-path") {
		cfg.IndexPath, _ = flags.GetString("index-path")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
