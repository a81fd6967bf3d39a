package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/library-backlog/internal/adapter/handler"
	"github.com/rl1809/library-backlog/internal/adapter/notify"
	"github.com/rl1809/library-backlog/internal/adapter/storage"
	"github.com/rl1809/library-backlog/internal/config"
	"github.com/rl1809/library-backlog/internal/core/service"
	"github.com/rl1809/library-backlog/internal/obs"
	"github.com/rl1809/library-backlog/internal/port"
)

func main() {
	cfg := config.Load()
	obs.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogue, closeCatalogue, err := openCatalogue(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.CatalogueBackend).Msg("failed to open catalogue")
	}
	defer closeCatalogue()
	log.Info().Str("backend", cfg.CatalogueBackend).Msg("catalogue ready")

	if cfg.Seed {
		if err := storage.Seed(ctx, catalogue, storage.SeedData()); err != nil {
			log.Fatal().Err(err).Msg("failed to seed catalogue")
		}
		log.Info().Int("books", len(storage.SeedData())).Msg("catalogue seeded")
	}

	publishers, closePublishers := openPublishers(ctx, cfg)
	defer closePublishers()

	opts := []service.Option{}
	if len(publishers) > 0 {
		opts = append(opts, service.WithPublisher(publishers))
	}
	svc := service.NewLibraryService(catalogue, cfg.QueueCapacity, cfg.StackCapacity, opts...)
	log.Info().
		Int("queue_capacity", cfg.QueueCapacity).
		Int("stack_capacity", cfg.StackCapacity).
		Msg("library service started")

	console := handler.NewConsoleHandler(svc, os.Stdin, os.Stdout)
	if err := console.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("library service stopped")
}

func openCatalogue(ctx context.Context, cfg config.Config) (port.CatalogueRepository, func(), error) {
	switch cfg.CatalogueBackend {
	case config.BackendSQLite, config.BackendMySQL:
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		open, dsn := storage.OpenSQLite, cfg.SQLiteDSN
		if cfg.CatalogueBackend == config.BackendMySQL {
			open, dsn = storage.OpenMySQL, cfg.MySQLDSN
		}
		db, err := open(openCtx, dsn)
		if err != nil {
			return nil, nil, err
		}

		repo := storage.NewSQLCatalogue(db)
		if err := repo.Migrate(openCtx); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := repo.Reset(openCtx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	default:
		return storage.NewMemoryCatalogue(), func() {}, nil
	}
}

// openPublishers connects the configured event sinks. A sink that cannot be
// reached is skipped so the library keeps working without it.
func openPublishers(ctx context.Context, cfg config.Config) (notify.Fanout, func()) {
	var publishers notify.Fanout
	var closers []func()

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, events not published there")
			rdb.Close()
		} else {
			publishers = append(publishers, notify.NewRedisPublisher(rdb, cfg.RedisChannel))
			closers = append(closers, func() { rdb.Close() })
			log.Info().Str("addr", cfg.RedisAddr).Str("channel", cfg.RedisChannel).Msg("connected to redis")
		}
	}

	if cfg.RabbitURL != "" {
		rabbit, err := notify.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, events not published there")
		} else {
			publishers = append(publishers, rabbit)
			closers = append(closers, func() { rabbit.Close() })
			log.Info().Str("exchange", cfg.RabbitExchange).Msg("connected to rabbitmq")
		}
	}

	return publishers, func() {
		for _, c := range closers {
			c()
		}
	}
}
