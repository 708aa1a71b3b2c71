// init_db creates the stand lead database if it does not exist, applies the
// schema and optionally seeds builders from BUILDERS_CSV.
//
//	go run ./scripts
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"stand-lead-engine/internal/config"
	"stand-lead-engine/internal/services/database"
	"stand-lead-engine/internal/utils"
)

func main() {
	if err := utils.InitLogger("info"); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()
	log := utils.Component("init-db")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := ensureDatabase(ctx, cfg, log); err != nil {
		log.Fatal("Failed to create database", zap.Error(err))
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect", zap.String("database", cfg.DBName), zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Failed to apply schema", zap.Error(err))
	}
	log.Info("Schema applied", zap.String("database", cfg.DBName))

	if cfg.BuildersCSV == "" {
		return
	}

	content, err := os.ReadFile(cfg.BuildersCSV)
	if err != nil {
		log.Fatal("Failed to read builder file", zap.String("path", cfg.BuildersCSV), zap.Error(err))
	}

	builders, parseErrors := utils.NewCSVParser().ParseBuilders(string(content))
	for _, e := range parseErrors {
		log.Warn("Skipped builder row", zap.Error(e))
	}

	res, err := database.NewBuilderRepository(db).BulkUpsert(ctx, builders)
	if err != nil {
		log.Fatal("Failed to seed builders", zap.Error(err))
	}
	log.Info("Builders seeded",
		zap.Int("upserted", res.UpsertedCount),
		zap.Int("failed", res.FailedCount),
	)
}

// ensureDatabase connects to the maintenance database on the same server and
// creates cfg.DBName when it is missing.
func ensureDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	admin := *cfg
	admin.DBName = "postgres"

	conn, err := pgx.Connect(ctx, admin.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		log.Info("Database already exists", zap.String("database", cfg.DBName))
		return nil
	}

	ident := pgx.Identifier{strings.TrimSpace(cfg.DBName)}.Sanitize()
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return err
	}
	log.Info("Database created", zap.String("database", cfg.DBName))
	return nil
}
