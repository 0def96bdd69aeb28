package migrations

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Up applies every pending migration found in dir to the database at dsn.
// It is a no-op when the schema is already current.
func Up(dsn, dir string, log Log) error {
	if dsn == "" {
		return errors.New("database dsn is empty")
	}

	sourceURL, err := sourceURL(dir)
	if err != nil {
		return err
	}

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("unable to parse connection string: %w", err)
	}

	sqlDB := stdlib.OpenDB(*connConfig)
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		log.Error("Error getting driver: ", zap.Error(err))
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		log.Error("Error creating migration instance: ", zap.Error(err))
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Schema is up to date")
			return nil
		}
		log.Error("Error while performing migration: ", zap.Error(err))
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("Migrations applied", zap.String("source", sourceURL))
	return nil
}

// sourceURL resolves dir to a file:// URL and checks that it exists.
func sourceURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("migrations path %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("migrations path %s is not a directory", abs)
	}

	return "file://" + filepath.ToSlash(abs), nil
}
