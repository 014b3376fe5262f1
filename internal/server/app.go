// Package server wires storage, cache, archive and both network surfaces
// of the FocusTank backend and runs them until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/focustank/internal/logging"
	"github.com/dmitrijs2005/focustank/internal/server/archive"
	"github.com/dmitrijs2005/focustank/internal/server/cache"
	"github.com/dmitrijs2005/focustank/internal/server/config"
	"github.com/dmitrijs2005/focustank/internal/server/httpapi"
	"github.com/dmitrijs2005/focustank/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/focustank/internal/server/services"
	"github.com/dmitrijs2005/focustank/internal/timex"

	gs "github.com/dmitrijs2005/focustank/internal/server/grpc"
)

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	cache             cache.Cache
	userService       *services.UserService
	collectionService *services.CollectionService
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(c.LogLevel, true, os.Stdout)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	clock := timex.SystemClock()

	var ch cache.Cache
	if c.RedisAddr != "" {
		ch, err = cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.RedisAddr, Password: c.RedisPassword})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
	} else {
		ch = cache.NewMemoryCache(clock, time.Minute)
	}

	var arch archive.Archiver = archive.Nop{}
	if c.ArchiveEnabled() {
		arch, err = archive.NewS3Archiver(ctx, archive.S3Config{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			_ = ch.Close()
			_ = db.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
	}

	us := services.NewUserService(db, rm, c, clock, logger)
	cs := services.NewCollectionService(db, rm, ch, c.CacheTTL, arch, clock, logger)

	return &App{
		config:            c,
		logger:            logger,
		db:                db,
		cache:             ch,
		userService:       us,
		collectionService: cs,
	}, nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.collectionService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(httpapi.Config{
		Tokens:         app.userService,
		Collections:    app.collectionService,
		DB:             app.db,
		AllowedOrigins: app.config.AllowedOrigins,
		Logger:         app.logger,
	})
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or one of the servers fails, then
// releases the cache and the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.cache.Close(); err != nil {
		app.logger.Error(ctx, "cache close failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
}
