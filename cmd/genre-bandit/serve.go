package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	simpleproducer "github.com/Fuchsoria/genre-bandit/internal/amqp/producer"
	"github.com/Fuchsoria/genre-bandit/internal/app"
	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/logger"
	internalhttp "github.com/Fuchsoria/genre-bandit/internal/server/http"
	memorystorage "github.com/Fuchsoria/genre-bandit/internal/storage/memory"
	sqlstorage "github.com/Fuchsoria/genre-bandit/internal/storage/sql"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for simulations and live sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := NewConfig(configFile)
			if err != nil {
				return err
			}

			return serve(config)
		},
	}
}

type closers []io.Closer

// Close releases resources in reverse order of acquisition, logging failures.
func (c closers) Close(logg *logger.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			logg.Error("failed to release resource: " + err.Error())
		}
	}
}

func serve(config Config) error {
	logg := logger.New(config.Logger.Level, config.Logger.File)
	defer logg.Sync() //nolint:errcheck

	kind, err := bandit.ParseKind(config.Live.Policy)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var resources closers
	defer func() { resources.Close(logg) }()

	storage, err := initStorage(ctx, config, &resources)
	if err != nil {
		logg.Error(err.Error())

		return err
	}

	producer, err := initProducer(config, &resources)
	if err != nil {
		logg.Error(err.Error())

		return err
	}

	gin.SetMode(gin.ReleaseMode)

	gbApp := app.New(logg, storage, producer,
		app.WithGenres(config.Live.Genres),
		app.WithDefaultPolicy(kind, bandit.Params{Epsilon: config.Live.Epsilon}),
		app.WithSimulationLimits(config.Simulation.MaxRounds, config.Simulation.MaxGenres))
	server := internalhttp.NewServer(gbApp, logg, config.HTTP.Host, config.HTTP.Port)

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)

		select {
		case <-ctx.Done():
			return
		case <-signals:
		}

		signal.Stop(signals)
		cancel()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logg.Error("failed to stop http server: " + err.Error())
		}
	}()

	logg.Info("genre bandit service is running...", "storage", config.DB.Type, "amqp", config.AMQP.Enabled)

	if err := server.Start(ctx); err != nil {
		logg.Error("failed to start http server: " + err.Error())

		return err
	}

	return nil
}

func initStorage(ctx context.Context, config Config, resources *closers) (app.Storage, error) {
	switch config.DB.Type {
	case "", "memory":
		return memorystorage.New(), nil
	case "sql", "postgres":
	default:
		return nil, fmt.Errorf("unknown storage type %q", config.DB.Type)
	}

	storage, err := sqlstorage.New(ctx, config.DB.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("can't create new storage instance, %w", err)
	}

	*resources = append(*resources, storage)

	if err := storage.Connect(ctx); err != nil {
		return nil, fmt.Errorf("can't connect to storage, %w", err)
	}

	if err := storage.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("can't migrate storage, %w", err)
	}

	return storage, nil
}

func initProducer(config Config, resources *closers) (app.Producer, error) {
	if !config.AMQP.Enabled {
		return simpleproducer.Discard{}, nil
	}

	conn, err := amqp.Dial(config.AMQP.DSN)
	if err != nil {
		return nil, fmt.Errorf("can't connect to amqp, %w", err)
	}

	*resources = append(*resources, conn)

	producer := simpleproducer.New(config.AMQP.Queue, conn)
	if err := producer.Connect(); err != nil {
		return nil, fmt.Errorf("can't start producer, %w", err)
	}

	*resources = append(*resources, producer)

	return producer, nil
}
