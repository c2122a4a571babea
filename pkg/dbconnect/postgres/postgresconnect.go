package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"gomarketplace_ingest/config"
	"gomarketplace_ingest/pkg/logger"
)

const maxRetries = 10
const retryDelay = 5 * time.Second

type PostgresDatabase struct {
	config.DbConfig
	maxConns int
	log      logger.Logger
	db       *sql.DB
	mu       sync.Mutex
}

func NewPgConnector(dbConfig config.DbConfig, maxConns int, log logger.Logger) *PostgresDatabase {
	return &PostgresDatabase{DbConfig: dbConfig, maxConns: maxConns, log: log}
}

// Connect открывает пул один раз и переиспользует его. Повторяет попытки, пока не истечет maxRetries или ctx.
func (pg *PostgresDatabase) Connect(ctx context.Context) (*sql.DB, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db != nil {
		return pg.db, nil
	}

	var err error
	conStr := pg.GetConnectionString()

	for i := 0; i < maxRetries; i++ {
		var db *sql.DB
		db, err = sql.Open("postgres", conStr)
		if err == nil {
			db.SetMaxOpenConns(pg.maxConns)
			if err = db.PingContext(ctx); err == nil {
				pg.log.Log("Successfully connected to Postgres")
				pg.db = db
				return db, nil
			}
			db.Close()
		}

		pg.log.Warn("Failed to connect to Postgres (attempt %d/%d): %v", i+1, maxRetries, err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect cancelled: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("connect to postgres after %d attempts: %w", maxRetries, err)
}

// Ping не держит мьютекс на время сетевого запроса, чтобы Close при остановке не ждал медленную базу.
func (pg *PostgresDatabase) Ping(ctx context.Context) error {
	pg.mu.Lock()
	db := pg.db
	pg.mu.Unlock()

	if db == nil {
		return fmt.Errorf("database connection is not established")
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (pg *PostgresDatabase) Close() error {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db == nil {
		return nil
	}
	err := pg.db.Close()
	pg.db = nil
	return err
}
