package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quorum-wallet/quorum-wallet/internal/logger"
)

func main() {
	var (
		dsn       = flag.String("dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of migrations to run (0 = all)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(context.Background(), *dsn, *direction, *steps); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn, direction string, steps int) error {
	if dsn == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got: %s", direction)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return err
	}

	files, suffix, err := migrationFiles(direction)
	if err != nil {
		return err
	}

	count := 0
	for _, file := range files {
		version := strings.TrimSuffix(filepath.Base(file), suffix)

		if direction == "up" && applied[version] {
			continue
		}
		if direction == "down" && !applied[version] {
			continue
		}
		if steps > 0 && count >= steps {
			break
		}

		if err := apply(ctx, pool, file, version, direction); err != nil {
			return err
		}
		slog.Info("applied migration", "version", version, "direction", direction)
		count++
	}

	slog.Info("migrations complete", "applied", count)
	return nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func migrationFiles(direction string) ([]string, string, error) {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Fall back to the directory next to the binary.
		execPath, _ := os.Executable()
		dir = filepath.Join(filepath.Dir(execPath), "migrations")
	}

	suffix := ".up.sql"
	if direction == "down" {
		suffix = ".down.sql"
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
	if err != nil {
		return nil, "", fmt.Errorf("failed to find migration files: %w", err)
	}

	sort.Strings(files)
	if direction == "down" {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	return files, suffix, nil
}

// apply runs one migration file and records it in schema_migrations inside
// the same transaction.
func apply(ctx context.Context, pool *pgxpool.Pool, file, version, direction string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", file, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", file, err)
	}

	if direction == "up" {
		_, err = tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version)
	} else {
		_, err = tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", version)
	}
	if err != nil {
		return fmt.Errorf("failed to update migrations table: %w", err)
	}

	return tx.Commit(ctx)
}
