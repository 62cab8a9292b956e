package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/quissme/resonance/internal/catalog"
	"github.com/quissme/resonance/internal/config"
	"github.com/quissme/resonance/internal/database"
	"github.com/quissme/resonance/internal/handler/health"
	"github.com/quissme/resonance/internal/metrics"
	"github.com/quissme/resonance/internal/migrations"
	"github.com/quissme/resonance/internal/quissme"
	"github.com/quissme/resonance/internal/server"
	"github.com/quissme/resonance/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Catalog ---
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("catalog loaded", "quizzes", len(cat.Quizzes()), "path", cfg.CatalogPath)

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", applied)

	checks := map[string]health.Checker{"sqlite": health.DB(db)}
	broker := server.NewBroker()
	rec := metrics.New()
	opts := []server.ServiceOption{
		server.WithMetrics(rec),
		server.WithActivation(quissme.ActivationLimits{
			WeeklyPerPartner: cfg.WeeklyActivations,
			MaxActive:        cfg.MaxActiveQuizzes,
		}, cfg.RequireActivation),
	}

	// --- Redis (optional) ---
	var relay *server.Relay
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		checks["redis"] = health.Redis(rdb)
		relay = server.NewRelay(rdb, broker, logger)
		opts = append(opts, server.WithPublisher(relay))
	}

	svc := server.NewService(logger, store.NewDocStore(db), cat, broker, opts...)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, svc, rec, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	if relay != nil {
		g.Go(func() error {
			logger.Info("starting redis event relay")
			return relay.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
