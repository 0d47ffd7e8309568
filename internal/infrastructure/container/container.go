// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	inventoryapp "github.com/planifia/planner/internal/application/inventory"
	mealapp "github.com/planifia/planner/internal/application/meal"
	"github.com/planifia/planner/internal/application/planning"
	shoppingapp "github.com/planifia/planner/internal/application/shopping"
	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/infrastructure/cache"
	"github.com/planifia/planner/internal/infrastructure/config"
	"github.com/planifia/planner/internal/infrastructure/http/apiserver"
	"github.com/planifia/planner/internal/infrastructure/monitoring"
	gormRepo "github.com/planifia/planner/internal/infrastructure/persistence/gorm"
	"github.com/planifia/planner/internal/infrastructure/persistence/memory"
	"github.com/planifia/planner/internal/infrastructure/persistence/migrations"
	"github.com/planifia/planner/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/planifia/planner/internal/infrastructure/persistence/redis"
	"github.com/planifia/planner/internal/infrastructure/persistence/sqlite"
	"github.com/planifia/planner/internal/ports/inbound"
	"github.com/planifia/planner/internal/ports/outbound"
	"github.com/planifia/planner/pkg/logger"
)

// ConfigPath is the optional config file handed to config.Load
type ConfigPath string

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,

	// Repository modules
	RepositoryModule,

	// Planning and service modules
	PlanningModule,
	ServiceModule,

	// HTTP modules
	MonitoringModule,
	HTTPModule,

	// Event modules
	EventModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration and the planner clock
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
	func(cfg *config.Config) (shared.Clock, error) {
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return shared.SystemClock(loc), nil
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			Development: cfg.App.Debug || cfg.IsDevelopment(),
			OutputPaths: cfg.Logging.OutputPaths,
		})
	},
)

// DatabaseModule provides the GORM handle for the configured driver
var DatabaseModule = fx.Provide(
	NewDatabase,
	func(d *Database) *gorm.DB { return d.DB },
)

// Database is the open store plus what the lifecycle needs to check and
// close it
type Database struct {
	DB    *gorm.DB
	Ping  apiserver.HealthChecker
	close func() error
}

// Close releases the connection pool
func (d *Database) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

// NewDatabase opens sqlite or postgres, brings the schema up to date and
// seeds the demo week when asked to
func NewDatabase(cfg *config.Config, log *zap.Logger, clock shared.Clock) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		database *Database
		err      error
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		database, err = openPostgres(ctx, cfg, log)
	default:
		database, err = openSQLite(cfg, log)
	}
	if err != nil {
		return nil, err
	}

	if cfg.App.SeedDemo {
		if err := sqlite.SeedDatabase(ctx, database.DB, cfg.App.DemoUserID, clock()); err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		}
	}
	return database, nil
}

func openSQLite(cfg *config.Config, log *zap.Logger) (*Database, error) {
	db, err := sqlite.SetupDatabase(cfg.Database.Path, gormLogLevel(cfg.Database.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
	return &Database{DB: db, Ping: sqlDB.PingContext, close: sqlDB.Close}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Database, error) {
	cm, err := postgres.NewConnectionManager(cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		err = cm.AutoMigrate()
	} else {
		err = runMigrations(ctx, cfg, log)
	}
	if err != nil {
		_ = cm.Close()
		return nil, err
	}

	return &Database{DB: cm.GetDB(), Ping: cm.HealthCheck, close: cm.Close}, nil
}

func runMigrations(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	m, err := migrations.Open(ctx, cfg.GetMigrationURL(), cfg.Database.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

func gormLogLevel(level string) gormLogger.LogLevel {
	switch level {
	case "debug", "info":
		return gormLogger.Info
	case "warn":
		return gormLogger.Warn
	case "error":
		return gormLogger.Error
	default:
		return gormLogger.Silent
	}
}

// CacheModule provides caching and, with redis enabled, the sync state store
var CacheModule = fx.Provide(
	NewRedisClient,
	NewCacheRepository,
)

// NewRedisClient connects when redis is enabled and returns nil otherwise
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (redis.UniversalClient, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := redisRepo.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	return client, nil
}

// NewCacheRepository picks redis when a client exists
func NewCacheRepository(client redis.UniversalClient, cfg *config.Config, log *zap.Logger) outbound.CacheRepository {
	if client == nil {
		log.Info("Using in-memory cache")
		return memory.NewCacheRepository()
	}
	return redisRepo.NewCacheRepository(client, cfg.Redis.KeyPrefix, log)
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewMealRepository,
	gormRepo.NewInventoryRepository,
	gormRepo.NewShoppingItemRepository,
	gormRepo.NewShoppingNotesRepository,
	func(client redis.UniversalClient, cfg *config.Config, db *gorm.DB) outbound.SyncStateRepository {
		if client != nil {
			return redisRepo.NewSyncStateRepository(client, cfg.Redis.KeyPrefix)
		}
		return gormRepo.NewSyncStateRepository(db)
	},
)

// PlanningModule provides dish resolution and the reconciliation engine
var PlanningModule = fx.Provide(
	func(store outbound.CacheRepository, cfg *config.Config, log *zap.Logger) outbound.DishIngredientLookup {
		return cache.NewResolutionCache(ingredient.NewResolver(nil), store, cfg.Redis.TTL, log)
	},
	func(lookup outbound.DishIngredientLookup) *planning.RequirementAggregator {
		return planning.NewRequirementAggregator(lookup, ingredient.NewWeightPolicy())
	},
	NewEngine,
	func(e *planning.Engine) inbound.ReconciliationService { return e },
)

// EngineParams groups the engine's dependencies
type EngineParams struct {
	fx.In

	Config     *config.Config
	Logger     *zap.Logger
	Meals      outbound.MealRepository
	Inventory  outbound.InventoryRepository
	Items      outbound.ShoppingItemRepository
	States     outbound.SyncStateRepository
	Aggregator *planning.RequirementAggregator
	Publisher  outbound.EventPublisher
	Metrics    *monitoring.Metrics `optional:"true"`
}

// NewEngine builds the reconciliation engine
func NewEngine(p EngineParams) *planning.Engine {
	var observer planning.Observer
	if p.Metrics != nil {
		observer = p.Metrics
	}
	return planning.NewEngine(p.Meals, p.Inventory, p.Items, p.States, p.Aggregator, p.Publisher, observer, p.Logger).
		WithPassTimeout(p.Config.Sync.PassTimeout)
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	mealapp.NewMealService,
	inventoryapp.NewInventoryService,
	shoppingapp.NewShoppingService,
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	func(cfg *config.Config) *monitoring.Metrics {
		if !cfg.Monitoring.EnableMetrics {
			return nil
		}
		return monitoring.NewMetrics()
	},
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
)

// HTTPModule provides the API server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		log *zap.Logger,
		db *Database,
		meals inbound.MealService,
		stock inbound.InventoryService,
		shopping inbound.ShoppingService,
		sync inbound.ReconciliationService,
		metrics *monitoring.Metrics,
		clock shared.Clock,
	) *apiserver.Server {
		return apiserver.NewServer(cfg, log, apiserver.Services{
			Meals:     meals,
			Inventory: stock,
			Shopping:  shopping,
			Sync:      sync,
		}, metrics, map[string]apiserver.HealthChecker{"database": db.Ping}, clock)
	},
)

// EventModule provides event handling
var EventModule = fx.Options(
	fx.Provide(
		NewEventDispatcher,
		func(d *EventDispatcher) outbound.EventPublisher { return d },
	),
	fx.Invoke(RegisterEventHandlers),
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	db *Database,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Planifia",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
			)

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Planifia")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			if err := db.Close(); err != nil {
				log.Error("Failed to close database connection", zap.Error(err))
			}

			_ = log.Sync()

			return nil
		},
	})
}
