package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"voteboard/internal/platform/config"
	"voteboard/internal/platform/db"
	"voteboard/internal/platform/httpserver"
	"voteboard/internal/platform/metrics"
	"voteboard/internal/platform/queue"
	"voteboard/vote"
	"voteboard/vote/adapters/amqpqueue"
	"voteboard/vote/adapters/hexid"
	postgresadapter "voteboard/vote/adapters/postgres"
	"voteboard/vote/adapters/redisqueue"
	"voteboard/vote/application/workers"
	"voteboard/vote/ports"
)

// Package bootstrap is the composition root. The storage backend is chosen
// once here from configuration; module code never branches on deployment kind.

type APIApp struct {
	server  *httpserver.Server
	closers []io.Closer
	logger  *slog.Logger
}

type WorkerApp struct {
	drainer workers.QueueDrainer
	closers []io.Closer
	logger  *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	logger.Info("vote options configured",
		"event", "bootstrap_options_loaded",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"option_a", cfg.OptionA,
		"option_b", cfg.OptionB,
		"backend", cfg.Backend,
	)

	app := &APIApp{logger: logger}
	store, err := buildStore(cfg, logger, app)
	if err != nil {
		app.closeAll()
		return nil, err
	}

	module := vote.NewModule(vote.Dependencies{
		Store:    store,
		IDGen:    hexid.Generator{},
		Observer: metrics.NewVoteMetrics(cfg.ServiceName),
		Logger:   logger,
	})

	app.server = httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	app := &WorkerApp{logger: logger}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, pg)
	sink := postgresadapter.NewRepository(pg.DB, logger)

	source, err := buildQueueSource(cfg, logger, app)
	if err != nil {
		app.closeAll()
		return nil, err
	}

	app.drainer = workers.QueueDrainer{
		Source: source,
		Store:  sink,
		Logger: logger,
	}
	return app, nil
}

func buildStore(cfg config.Config, logger *slog.Logger, app *APIApp) (ports.VoteStore, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, errors.New("POSTGRES_DSN is required")
		}
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, pg)
		return postgresadapter.NewRepository(pg.DB, logger), nil

	case config.BackendRedis:
		client, err := queue.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client)
		return redisqueue.NewQueue(client, cfg.QueueName, logger), nil

	case config.BackendAMQP:
		conn, err := queue.ConnectAMQP(cfg.AMQPURL, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, conn)
		channel, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, channel)
		return amqpqueue.NewQueue(channel, cfg.QueueName, logger)

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func buildQueueSource(cfg config.Config, logger *slog.Logger, app *WorkerApp) (ports.QueueSource, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client, err := queue.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client)
		return redisqueue.NewQueue(client, cfg.QueueName, logger), nil

	case config.BackendAMQP:
		conn, err := queue.ConnectAMQP(cfg.AMQPURL, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, conn)
		channel, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, channel)
		return amqpqueue.NewSource(channel, cfg.QueueName, logger)

	default:
		return nil, fmt.Errorf("worker needs a queue backend, got %q", cfg.Backend)
	}
}

func (a *APIApp) Run(_ context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	return a.closeAll()
}

func (a *APIApp) closeAll() error {
	return closeAll(a.closers)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return w.drainer.Run(ctx)
}

func (w *WorkerApp) Close() error {
	return w.closeAll()
}

func (w *WorkerApp) closeAll() error {
	return closeAll(w.closers)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
