package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/http/handler"
	"github.com/iho/fintrack/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/fintrack/internal/adapter/repository/postgres"
	"github.com/iho/fintrack/internal/infrastructure/config"
	"github.com/iho/fintrack/internal/infrastructure/postgres"
	"github.com/iho/fintrack/internal/usecase"
)

// storage is the set of repositories one backend provides.
type storage struct {
	txManager    usecase.TransactionManager
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	entries      usecase.EntryRepository
	ledger       usecase.LedgerRepository
	outbox       usecase.OutboxRepository
	pinger       handler.Pinger
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, lg zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		lg.Warn().Msg("using in-memory storage, data is lost on restart")
		return memoryStorage(memory.NewStore()), nil
	case config.StoragePostgres:
		return postgresStorage(ctx, cfg, lg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func memoryStorage(store *memory.Store) *storage {
	return &storage{
		txManager:    store,
		accounts:     store.Accounts(),
		transactions: store.Transactions(),
		entries:      store.Entries(),
		ledger:       store.Ledger(),
		outbox:       store.Outbox(),
		pinger:       store,
		close:        func() {},
	}
}

func postgresStorage(ctx context.Context, cfg *config.Config, lg zerolog.Logger) (*storage, error) {
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseConnectTimeout,
		Logger:         lg,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	lg.Info().Msg("connected to postgres")

	if cfg.RunMigrations {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, lg).Up(); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return &storage{
		txManager:    postgresRepo.NewTxManager(pool),
		accounts:     postgresRepo.NewAccountRepository(pool),
		transactions: postgresRepo.NewTransactionRepository(pool),
		entries:      postgresRepo.NewEntryRepository(pool),
		ledger:       postgresRepo.NewLedgerRepository(pool),
		outbox:       postgresRepo.NewOutboxRepository(pool),
		pinger:       pool,
		close:        pool.Close,
	}, nil
}
