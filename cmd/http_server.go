package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/evaluation-criteria/api"
	"github.com/frahmantamala/evaluation-criteria/internal"
	"github.com/frahmantamala/evaluation-criteria/internal/auth"
	"github.com/frahmantamala/evaluation-criteria/internal/category"
	categoryPostgres "github.com/frahmantamala/evaluation-criteria/internal/category/postgres"
	"github.com/frahmantamala/evaluation-criteria/internal/core/events"
	"github.com/frahmantamala/evaluation-criteria/internal/criteria"
	criteriaPostgres "github.com/frahmantamala/evaluation-criteria/internal/criteria/postgres"
	"github.com/frahmantamala/evaluation-criteria/internal/notification"
	"github.com/frahmantamala/evaluation-criteria/internal/transport"
	"github.com/frahmantamala/evaluation-criteria/internal/transport/middleware"
	"github.com/frahmantamala/evaluation-criteria/internal/transport/rest"
	"github.com/frahmantamala/evaluation-criteria/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startHTTPServer(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Bus    *events.EventBus
	Redis  *goredis.Client
	Logger *slog.Logger
}

func startHTTPServer() error {
	// Signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.close()

	if err := setupRoutes(deps); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Logger.Info("starting HTTP server", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deps.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		// let in-flight event handlers finish before the redis client closes
		if err := deps.Bus.Wait(shutdownCtx); err != nil {
			deps.Logger.Warn("event handlers still running at shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	deps.Logger.Info("server stopped")
	return nil
}

func setupRoutes(deps *Dependencies) error {
	doc, err := middleware.LoadOpenAPI(api.OpenAPISpec)
	if err != nil {
		return err
	}
	validator, err := middleware.OpenAPIValidator(doc, deps.Logger)
	if err != nil {
		return err
	}

	checker := auth.NewPermissionChecker()
	authService := auth.NewService(auth.NewJWTValidator(deps.Config.Security.JWTSecret, deps.Config.Security.JWTIssuer), deps.Logger)
	base := transport.NewBaseHandler(deps.Logger)

	categoryRepo := categoryPostgres.NewCategoryRepository(deps.Gorm)
	categoryService := category.NewService(
		categoryRepo,
		categoryPostgres.NewSummaryRepository(deps.DB),
		checker,
		deps.Bus,
		deps.Logger,
	)
	criteriaService := criteria.NewService(
		criteriaPostgres.NewCriteriaRepository(deps.Gorm),
		categoryRepo,
		checker,
		deps.Logger,
	)

	rest.RegisterAllRoutes(deps.Router, deps.DB, rest.Handlers{
		Auth:     auth.NewHandler(authService),
		RBAC:     auth.NewRBACAuthorization(checker, deps.Logger),
		Category: category.NewHandler(base, categoryService),
		Criteria: criteria.NewHandler(base, criteriaService),
	}, api.OpenAPISpec, validator, deps.Logger)
	return nil
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(config.Database, db, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if config.Database.Driver == internal.DriverSQLite {
		if err := autoMigrate(gdb); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}

	deps := &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gdb,
		Router: chi.NewRouter(),
		Bus:    events.NewEventBus(lg),
		Logger: lg,
	}

	for _, eventType := range events.CategoryEventTypes {
		deps.Bus.Subscribe(eventType, events.LogHandler(lg))
	}

	if redisCfg := config.Notification.Redis; redisCfg.Enabled {
		rdb, err := notification.NewRedisClient(ctx, redisCfg.Addr, redisCfg.Password, redisCfg.DB)
		if err != nil {
			deps.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.Redis = rdb
		notification.NewRedisForwarder(rdb, redisCfg.Channel, lg).Register(deps.Bus)
		lg.Info("forwarding category events to redis", "addr", redisCfg.Addr, "channel", redisCfg.Channel)
	}

	return deps, nil
}

func (d *Dependencies) close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}
