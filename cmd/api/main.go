package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/document-tracking/internal/api/http"
	"github.com/spec-kit/document-tracking/internal/api/http/handlers"
	"github.com/spec-kit/document-tracking/internal/auth"
	"github.com/spec-kit/document-tracking/internal/config"
	"github.com/spec-kit/document-tracking/internal/events"
	"github.com/spec-kit/document-tracking/internal/lock"
	"github.com/spec-kit/document-tracking/internal/observability"
	"github.com/spec-kit/document-tracking/internal/persistence"
	"github.com/spec-kit/document-tracking/internal/repository"
	"github.com/spec-kit/document-tracking/internal/repository/memory"
	"github.com/spec-kit/document-tracking/internal/service"
	"github.com/spec-kit/document-tracking/internal/worker"
)

type repositories struct {
	documents repository.DocumentRepository
	tracking  repository.TrackingRepository
	areas     repository.AreaRepository
	employees repository.EmployeeRepository
	users     repository.UserRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	dependencies := map[string]handlers.Pinger{}
	repos := buildRepositories(pg.PoolHandle(), logger)
	if pg.PoolHandle() != nil {
		dependencies["postgres"] = pg
	}

	var locker lock.Locker = lock.NewLocal()
	if cfg.Lock.Backend == config.LockBackendRedis {
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis for the lock backend", zap.Error(err))
		}
		defer redis.Close()
		locker = redis.Locker()
		dependencies["redis"] = redis
	}
	guard := lock.NewGuard(locker, cfg.Lock.TTL(), cfg.Lock.Wait(), cfg.Lock.RetryInterval())

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger, metrics))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     repos.users,
		AreaRepo:     repos.areas,
		EmployeeRepo: repos.employees,
		Logger:       logger,
	})
	created, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	if err != nil {
		logger.Fatal("failed to bootstrap administrator", zap.Error(err))
	}
	if !created && cfg.Auth.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD not set; no bootstrap administrator provisioned")
	}

	routing := service.NewRoutingService(service.RoutingDependencies{
		Documents:     repos.documents,
		Tracking:      repos.tracking,
		Areas:         repos.areas,
		Employees:     repos.employees,
		Users:         repos.users,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Guard:         guard,
		StatusPolicy:  service.StatusPolicyByName(cfg.Routing.StatusPolicy),
		Location:      cfg.App.Location(),
		CascadeDelete: cfg.Routing.CascadeDelete,
	})
	permissions := service.NewPermissionValidator(repos.users, repos.documents, repos.tracking)
	organization := service.NewOrganizationService(service.OrgDependencies{
		AreaRepo:     repos.areas,
		EmployeeRepo: repos.employees,
		Logger:       logger,
	})

	watcher := worker.NewDeadlineWatcher(routing, logger, cfg.Routing.DeadlineWatchInterval(), cfg.Routing.DeadlineWatchDays)
	go watcher.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Documents:      handlers.NewDocumentsHandler(routing, permissions),
		Organization:   handlers.NewOrganizationHandler(organization),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// buildRepositories uses Postgres when a pool is available and the in-memory store otherwise.
func buildRepositories(pool *pgxpool.Pool, logger *zap.Logger) repositories {
	if pool == nil {
		logger.Warn("running with in-memory storage; data is lost on restart")
		store := memory.NewStore(nil)
		return repositories{
			documents: store.Documents(),
			tracking:  store.Tracking(),
			areas:     store.Areas(),
			employees: store.Employees(),
			users:     store.Users(),
		}
	}
	return repositories{
		documents: repository.NewDocumentRepository(pool),
		tracking:  repository.NewTrackingRepository(pool),
		areas:     repository.NewAreaRepository(pool),
		employees: repository.NewEmployeeRepository(pool),
		users:     repository.NewUserRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
