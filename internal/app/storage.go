package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/go-todo-attachments/internal/config"
	"github.com/adanyl0v/go-todo-attachments/internal/storage"
	"github.com/adanyl0v/go-todo-attachments/internal/storage/dynamo"
	"github.com/adanyl0v/go-todo-attachments/internal/storage/memory"
	"github.com/adanyl0v/go-todo-attachments/internal/storage/postgres"
)

var (
	globalTaskStore    storage.TaskStore
	globalPostgresPool *pgxpool.Pool
)

func MustInitTaskStore() {
	cfg := config.Global()
	logger := globalLogger.With().
		Str("store", cfg.Store.Driver).
		Logger()

	switch cfg.Store.Driver {
	case config.StoreDriverDynamo:
		dynamoCfg := cfg.Dynamo
		client := dynamodb.NewFromConfig(mustLoadAWSConfig(), func(o *dynamodb.Options) {
			if dynamoCfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(dynamoCfg.Endpoint)
			}
		})
		globalTaskStore = dynamo.NewStore(logger, client, dynamoCfg.Table)
		globalLogger.Info().
			Str("table", dynamoCfg.Table).
			Msg("initialized dynamodb task store")
	case config.StoreDriverPostgres:
		mustConnectPostgres()
		store := postgres.NewStore(logger, globalPostgresPool)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Postgres.PingTimeout)
		defer cancel()

		err := store.Migrate(ctx)
		if err != nil {
			panic(err)
		}
		globalTaskStore = store
	case config.StoreDriverMemory:
		globalTaskStore = memory.NewStore(logger)
		globalLogger.Warn().Msg("initialized in-memory task store")
	default:
		panic(fmt.Errorf("unknown store driver: %s", cfg.Store.Driver))
	}
}

func mustConnectPostgres() {
	cfg := config.Global().Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	globalPostgresPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = globalPostgresPool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")
}

// CloseTaskStore releases the connections held by the selected driver.
func CloseTaskStore() {
	if globalPostgresPool == nil {
		return
	}
	globalPostgresPool.Close()
	globalLogger.Info().Msg("disconnected from postgres")
}
