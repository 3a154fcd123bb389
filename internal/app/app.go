package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/bibujohny/rentalAI/internal/config"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/repositories/memory"
	"github.com/bibujohny/rentalAI/internal/utils"
)

const (
	dbConnectAttempts = 5
	dbConnectTimeout  = 5 * time.Second
	dbInitialBackoff  = 500 * time.Millisecond
)

// App holds the process-wide handles: config, data backend and optional cache.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Repos  repositories.Set
}

// NewApp opens the configured data backend and, when REDIS_URL is set, the
// Redis client used for caching.
func NewApp(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.DataBackend == config.BackendPostgres {
		pool, err := ConnectDB(cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		a.DB = pool
		a.Repos = repositories.NewSet(pool)
	} else {
		utils.Logger.Warn("Using the in-memory data backend; data is lost on restart")
		a.Repos = memory.NewStore().Repositories()
	}

	if cfg.RedisURL == "" {
		return a, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	a.Redis = redis.NewClient(opts)
	return a, nil
}

// ConnectDB opens a Postgres pool. Postgres often comes up after the app in
// local setups, so failed attempts are retried with a doubling pause.
func ConnectDB(databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	poolCfg.MaxConnIdleTime = 2 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pause := dbInitialBackoff
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), dbConnectTimeout)
		pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
		if err == nil {
			err = pool.Ping(ctx)
			if err != nil {
				pool.Close()
			}
		}
		cancel()

		if err == nil {
			utils.Logger.WithField("attempt", attempt).Info("Connected to Postgres")
			return pool, nil
		}
		if attempt == dbConnectAttempts {
			return nil, fmt.Errorf("connect to postgres after %d attempts: %w", attempt, err)
		}
		utils.Logger.WithError(err).Warnf("Postgres not reachable (attempt %d/%d), retrying in %s",
			attempt, dbConnectAttempts, pause)
		time.Sleep(pause)
		pause *= 2
	}
}

// Ping reports whether the data backend is reachable. Redis is a cache and
// is not checked.
func (a *App) Ping(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Closing Redis client")
		}
		a.Redis = nil
	}
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
		utils.Logger.Info("Postgres pool closed")
	}
}
