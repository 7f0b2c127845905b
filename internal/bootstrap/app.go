package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tasktrack/internal/config"
	"tasktrack/internal/logging"
	"tasktrack/internal/platform/gormdb"
	mysqlClient "tasktrack/internal/platform/mysql"
	postgresClient "tasktrack/internal/platform/postgres"
	rabbitmqClient "tasktrack/internal/platform/rabbitmq"
	redisClient "tasktrack/internal/platform/redis"
	sqliteClient "tasktrack/internal/platform/sqlite"
	"tasktrack/internal/repository"
	"tasktrack/internal/worker"
)

// App holds the process-wide resources. Redis and MQConn are nil when the
// matching section is disabled in the config.
type App struct {
	Config          *config.Config
	Logger          *slog.Logger
	DB              *gorm.DB
	Redis           *redis.Client
	MQConn          *amqp.Connection
	AuthEventWorker *worker.AuthEventWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger := logging.New(cfg.App.LogLevel, cfg.App.LogFormat).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	app := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = db
	if err := repository.Migrate(db); err != nil {
		_ = app.Close()
		return nil, err
	}
	logger.Info("database ready", slog.String("driver", cfg.Database.Driver))

	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Redis = redisCli
		logger.Info("redis ready", slog.String("addr", cfg.Redis.Addr))
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.AuthEventQueue)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.MQConn = mqConn

		eventRepo := repository.NewAuthEventRepository(db)
		eventWorker := worker.NewAuthEventWorker(mqConn, eventRepo, cfg.RabbitMQ.AuthEventQueue, logger)
		if err := eventWorker.Start(ctx); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("start auth event worker failed: %w", err)
		}
		app.AuthEventWorker = eventWorker
	}

	return app, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	pool := gormdb.Pool{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	}
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return postgresClient.New(ctx, cfg.Database.Postgres.URL, pool)
	case config.DriverSQLite:
		return sqliteClient.New(ctx, cfg.Database.SQLite.Path)
	default:
		return mysqlClient.New(ctx, cfg.Database.MySQL, pool)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.AuthEventWorker != nil {
		a.AuthEventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
