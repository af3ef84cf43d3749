package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/university-recommender/internal/dataset"
	"github.com/actuallystonmai/university-recommender/internal/logging"
	"github.com/actuallystonmai/university-recommender/internal/repository"
	"github.com/actuallystonmai/university-recommender/seeds"
)

const migrationsDir = "migrations"

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := waitForDB(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logging.Info().Msg("connected to PostgreSQL")
	return pool, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logging.Info().Int("attempt", i+1).Msg("waiting for database")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, name string) error {
	sql, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration %s: %w", name, err)
	}
	logging.Info().Str("file", name).Msg("migration applied")
	return nil
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	return runMigration(ctx, pool, "create_tables.up.sql")
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	return runMigration(ctx, pool, "create_tables.down.sql")
}

// checkSeed fills an empty universities table, from the configured CSV when
// there is one and from generated rows otherwise.
func checkSeed(ctx context.Context, repo *repository.Repository) error {
	count, err := repo.CountUniversities(ctx)
	if err != nil {
		return fmt.Errorf("check universities count: %w", err)
	}
	if count > 0 {
		logging.Info().Int("universities", count).Msg("database already seeded, skipping")
		return nil
	}
	if cfg.DatasetPath != "" {
		return importCSV(ctx, repo, cfg.DatasetPath)
	}
	return seeds.Setup(ctx, repo, seeds.DefaultCount)
}

func importCSV(ctx context.Context, repo *repository.Repository, path string) error {
	rows, err := dataset.LoadFile(path)
	if err != nil {
		return err
	}
	if err := repo.TruncateUniversities(ctx); err != nil {
		return err
	}
	if err := repo.InsertUniversities(ctx, rows); err != nil {
		return err
	}
	logging.Info().Str("path", path).Int("universities", len(rows)).Msg("dataset imported")
	return nil
}

// withRepo opens the database, applies migrations and hands a repository to fn.
func withRepo(ctx context.Context, fn func(*repository.Repository) error) error {
	pool, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrateUp(ctx, pool); err != nil {
		return err
	}
	return fn(repository.New(pool))
}

func createMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or drop the database schema",
	}
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Create tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			return migrateUp(cmd.Context(), pool)
		},
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Drop tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			return migrateDown(cmd.Context(), pool)
		},
	})
	return migrateCmd
}

func createSeedCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the universities table with generated rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(repo *repository.Repository) error {
				return seeds.Setup(cmd.Context(), repo, count)
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", seeds.DefaultCount, "number of universities to generate")
	return cmd
}

func createImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [filename]",
		Short: "Replace the universities table with a QS-style CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(repo *repository.Repository) error {
				return importCSV(cmd.Context(), repo, args[0])
			})
		},
	}
}
