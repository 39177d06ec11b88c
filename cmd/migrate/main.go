package main

import (
	"context"
	"flag"

	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/logging"
	"storefront-cart/internal/migrate"
)

func main() {
	down := flag.Int("down", 0, "roll back N migrations (-1 for all) instead of migrating up")
	flag.Parse()

	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel).Named("migrate")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if *down != 0 {
		if err := migrate.Down(ctx, pool, *down); err != nil {
			logger.Fatalf("roll back migrations: %v", err)
		}
	} else if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		logger.Fatalf("read schema version: %v", err)
	}
	logger.Infow("migrations applied", "version", version, "dirty", dirty)
}
