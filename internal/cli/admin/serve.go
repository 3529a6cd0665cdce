package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/novanote/novanote/internal/api/handlers"
	"github.com/novanote/novanote/internal/config"
	"github.com/novanote/novanote/internal/database"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/jobs"
	"github.com/novanote/novanote/internal/server"
	"github.com/novanote/novanote/internal/service"
	"github.com/novanote/novanote/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the NovaNote API server and the background index worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides NOVANOTE_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-worker", false, "Do not start the background index worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

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

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.InitUsername != "" {
		if err := bootstrapInitialUser(ctx, cfg, a.auth); err != nil {
			return fmt.Errorf("failed to bootstrap initial user: %w", err)
		}
	}

	var worker *jobs.Worker
	if noWorker, _ := cmd.Flags().GetBool("no-worker"); !noWorker {
		indexWorker, err := jobs.NewIndexWorker(a.jobRepo, a.itemSvc, cfg.IndexWorkers)
		if err != nil {
			return err
		}

		worker = jobs.NewWorker("index", indexWorker, cfg.IndexPollInterval)
		defer worker.Stop()
		go worker.Start(ctx)
		log.Printf("index worker started (%d workers)", cfg.IndexWorkers)
	}

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:     a.auth,
		AuthHandler:       handlers.NewAuthHandler(a.auth),
		CollectionHandler: handlers.NewCollectionHandler(a.collectSvc),
		ItemHandler:       handlers.NewItemHandler(a.itemSvc),
		ChatHandler:       handlers.NewChatHandler(a.chatSvc),
		LimitsHandler:     handlers.NewLimitsHandler(a.limitsSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("shutting down...")

	if worker != nil {
		worker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// bootstrapInitialUser creates the configured user and, when given, its API
// key. Both steps are idempotent across restarts.
func bootstrapInitialUser(ctx context.Context, cfg *config.Config, auth *service.AuthService) error {
	user, err := auth.GetUserByUsername(ctx, cfg.InitUsername)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	if user == nil {
		user, err = auth.CreateUser(ctx, cfg.InitUsername, true)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		log.Printf("bootstrap: created user '%s' (id: %s)", user.Username, user.ID)
	} else {
		log.Printf("bootstrap: user '%s' already exists (id: %s)", user.Username, user.ID)
	}

	if cfg.InitAPIKey == "" {
		return nil
	}
	if !service.IsValidAPIToken(cfg.InitAPIKey) {
		return fmt.Errorf("invalid NOVANOTE_INIT_API_KEY format (expected 'nn_<64 hex chars>')")
	}

	existing, err := auth.GetAPIKeyByToken(ctx, cfg.InitAPIKey)
	if err == nil && existing != nil {
		log.Printf("bootstrap: API key already exists (id: %s)", existing.ID)
		return nil
	}

	if err := auth.CreateAPIKeyWithToken(ctx, user.ID, "bootstrap", cfg.InitAPIKey); err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	log.Printf("bootstrap: created API key")
	return nil
}
