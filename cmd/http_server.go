package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/auth"
	authPostgres "github.com/frahmantamala/ewaste-management/internal/auth/postgres"
	"github.com/frahmantamala/ewaste-management/internal/autofill"
	"github.com/frahmantamala/ewaste-management/internal/batch"
	batchPostgres "github.com/frahmantamala/ewaste-management/internal/batch/postgres"
	"github.com/frahmantamala/ewaste-management/internal/core/events"
	"github.com/frahmantamala/ewaste-management/internal/transport/rest"
	"github.com/frahmantamala/ewaste-management/internal/transport/swagger"
	"github.com/frahmantamala/ewaste-management/internal/user"
	userPostgres "github.com/frahmantamala/ewaste-management/internal/user/postgres"
	"github.com/frahmantamala/ewaste-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	DB      *sqlx.DB
	Gorm    *gorm.DB
	Router  *chi.Mux
	Bus     *events.EventBus
	Logger  *slog.Logger
	closers []io.Closer
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.Bus.Drain(ctx); err != nil {
			deps.Logger.Warn("Event handlers still running at shutdown", "error", err)
		}
		deps.close()
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func (d *Dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			d.Logger.Error("close error", "error", err)
		}
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps := &Dependencies{
		Config:  config,
		DB:      db,
		Router:  chi.NewRouter(),
		Logger:  lg,
		closers: []io.Closer{db},
	}

	deps.Gorm, err = initGorm(db)
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	if _, err := swagger.LoadSpec(context.Background(), swagger.DefaultSpecPath); err != nil {
		lg.Warn("openapi document unavailable", "error", err)
	}

	identities, err := newIdentityProvider(config, deps.Gorm)
	if err != nil {
		deps.close()
		return nil, err
	}
	lg.Info("identity provider selected", "provider", identities.Name())

	bus := events.NewEventBus(lg)
	bus.SubscribeMany(events.BatchEventTypes, events.AuditLogger(lg))
	deps.Bus = bus
	if config.Events.Kafka.Enabled {
		sink := events.NewKafkaSink(events.NewKafkaWriter(config.Events.Kafka.BrokerList(), config.Events.Kafka.Topic), lg)
		sink.Register(bus)
		deps.closers = append(deps.closers, sink)
	}

	policy := auth.NewBatchPolicy(nil)
	tokens := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(identities, tokens, config.Security.BCryptCost, lg)

	userService := user.NewService(userPostgres.NewUserRepository(deps.Gorm), policy, config.Security.BCryptCost, lg)

	batchService := batch.NewService(
		batchPostgres.NewBatchRepository(deps.Gorm),
		batchPostgres.NewStatsRepository(db),
		batch.NewKeyGenerator(),
		policy,
		bus,
		batch.Options{
			MaxKeyAttempts:            config.Batch.KeyMaxAttempts,
			RequireItemsForCompletion: config.Batch.RequireItemsForCompletion,
		},
		lg,
	)

	collaborator := autofill.NewGeminiClient(autofill.ClientConfig{
		Enabled: config.Autofill.Enabled,
		BaseURL: config.Autofill.BaseURL,
		APIKey:  config.Autofill.APIKey,
		Model:   config.Autofill.Model,
		Timeout: config.Autofill.Timeout,
	}, lg)
	autofillService := autofill.NewService(collaborator, policy, lg)

	checks := map[string]rest.Check{"postgres": db.PingContext}
	checks["identity_"+identities.Name()] = identities.Ping
	health := rest.NewHealthHandler(checks)

	metricsPath := ""
	if config.Observability.Metrics.Enabled {
		metricsPath = config.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Auth:     auth.NewHandler(authService),
		User:     user.NewHandler(userService),
		Batch:    batch.NewHandler(batchService),
		Autofill: autofill.NewHandler(autofillService),
		RBAC:     auth.NewRBACAuthorization(auth.NewPermissionChecker(), lg),
		Health:   health,
	}, rest.Options{
		AllowedOrigins: config.Server.Origins(),
		MetricsPath:    metricsPath,
	}, lg)

	return deps, nil
}

func newIdentityProvider(cfg *internal.Config, db *gorm.DB) (auth.IdentityProvider, error) {
	switch cfg.Identity.Provider {
	case internal.IdentityProviderFixture:
		provider, err := auth.NewFixtureIdentityProvider(cfg.Identity.Fixtures, cfg.Security.BCryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to load identity fixtures: %w", err)
		}
		return provider, nil
	default:
		return authPostgres.NewIdentityRepository(db), nil
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx connection pool with gorm.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
