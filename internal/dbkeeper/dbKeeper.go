package dbkeeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drstein77/littlelemon/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

const schema = `
	CREATE TABLE IF NOT EXISTS menu (
		id          SERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		price       DOUBLE PRECISION NOT NULL DEFAULT 0,
		description TEXT,
		image       TEXT,
		category    TEXT
	);
	CREATE TABLE IF NOT EXISTS preferences (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
`

// DBKeeper owns the connection pool of the local menu cache and preferences.
type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

// NewDBKeeper returns nil when the DSN is empty or cannot be used.
func NewDBKeeper(ctx context.Context, dsn func() string, log Log) *DBKeeper {
	addr := dsn()
	if addr == "" {
		log.Info("database dsn is empty, running without local storage")
		return nil
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		log.Error("Unable to parse database DSN: ", zap.Error(err))
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		log.Error("Unable to connect to database: ", zap.Error(err))
		return nil
	}

	log.Info("Database pool created")

	return &DBKeeper{
		pool: pool,
		log:  log,
	}
}

// Init makes sure the menu and preferences tables exist.
func (kp *DBKeeper) Init(ctx context.Context) error {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	if _, err := kp.pool.Exec(ctx, schema); err != nil {
		kp.log.Error("Failed to create schema", zap.Error(err))
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// GetMenuItems returns every stored menu entry in insertion order. No rows is not an error.
func (kp *DBKeeper) GetMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	query := `
		SELECT id, name, price, COALESCE(description, ''), COALESCE(image, ''), COALESCE(category, '')
		FROM menu
		ORDER BY id
	`

	rows, err := kp.pool.Query(ctx, query)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	items := make([]models.MenuItem, 0)
	for rows.Next() {
		var (
			item  models.MenuItem
			price float64
		)
		if err := rows.Scan(&item.ID, &item.Name, &price, &item.Description, &item.Image, &item.Category); err != nil {
			kp.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		item.Price = models.Price(price)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		kp.log.Error("Error occurred during rows iteration", zap.Error(err))
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	kp.log.Info("Menu read from local storage", zap.Int("count", len(items)))
	return items, nil
}

// ReplaceMenuItems clears the menu table and writes items in one transaction.
// Either every row is stored or none is.
func (kp *DBKeeper) ReplaceMenuItems(ctx context.Context, items []models.MenuItem) (err error) {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		kp.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			} else {
				kp.log.Info("Transaction rolled back due to an error")
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM menu`); err != nil {
		err = fmt.Errorf("failed to clear menu: %w", err)
		return err
	}

	stmt := `INSERT INTO menu (name, price, description, image, category) VALUES ($1, $2, $3, $4, $5)`
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(stmt, item.Name, float64(item.Price), item.Description, item.Image, item.Category)
	}

	br := tx.SendBatch(ctx, batch)
	for range items {
		if _, execErr := br.Exec(); execErr != nil {
			br.Close()
			err = fmt.Errorf("failed to execute batch query: %w", execErr)
			return err
		}
	}
	if closeErr := br.Close(); closeErr != nil {
		err = fmt.Errorf("failed to close batch results: %w", closeErr)
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		return err
	}

	kp.log.Info("Menu stored in local storage", zap.Int("count", len(items)))
	return nil
}

// GetPreferences returns the stored values for keys. Missing keys are absent from the map.
func (kp *DBKeeper) GetPreferences(ctx context.Context, keys []string) (map[string]string, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	rows, err := kp.pool.Query(ctx, `SELECT key, value FROM preferences WHERE key = ANY($1)`, keys)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	return values, nil
}

// SetPreferences upserts every pair in one transaction.
func (kp *DBKeeper) SetPreferences(ctx context.Context, values map[string]string) (err error) {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	batch := &pgx.Batch{}
	for key, value := range values {
		batch.Queue(`
			INSERT INTO preferences (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		`, key, value)
	}

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		err = fmt.Errorf("failed to store preferences: %w", err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("failed to commit transaction: %w", err)
		return err
	}

	return nil
}

func (kp *DBKeeper) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		kp.log.Error("Database ping failed", zap.Error(err))
		return false
	}

	return true
}

func (kp *DBKeeper) Close() bool {
	if kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	kp.log.Info("Attempted to close a nil database connection pool")
	return false
}
