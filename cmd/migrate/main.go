package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hirehub/server/pkg/config"
	"github.com/hirehub/server/pkg/database"
	"github.com/hirehub/server/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := runMigrations(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	if err := seedAdminIfEnabled(ctx, db, cfg); err != nil {
		log.Fatal("admin seed failed", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, "migrations completed")
}
