// Command seed loads a YAML product catalog into the configured store.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"shophub/internal/catalog"
	"shophub/internal/config"
	"shophub/internal/database"
	"shophub/internal/logger"
)

func main() {
	file := flag.String("file", "cmd/seed/catalog.yaml", "catalog YAML file")
	flag.Parse()

	if err := config.Load(); err != nil {
		log.Fatal(err)
	}
	cfg := config.AppEnv

	appLogger, err := logger.New(logger.Config{Development: cfg.IsDevelopment(), Level: cfg.LogLevel})
	if err != nil {
		log.Fatal(err)
	}
	defer appLogger.Sync()

	if cfg.StoreDriver != "mongo" {
		appLogger.Fatal("seeding needs STORE_DRIVER=mongo", zap.String("driver", cfg.StoreDriver))
	}

	f, err := catalog.LoadFile(*file)
	if err != nil {
		appLogger.Fatal("could not load catalog", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := database.Open(ctx, cfg.MongoURI, cfg.DBName, appLogger.Named("mongo"))
	if err != nil {
		appLogger.Fatal("could not open store", zap.Error(err))
	}
	defer st.Close(context.Background())

	res, err := catalog.Seed(ctx, st, f, filepath.Dir(*file), appLogger.Named("seed"))
	if err != nil {
		appLogger.Fatal("seed failed", zap.Error(err))
	}
	appLogger.Info("seed finished",
		zap.Bool("ownerCreated", res.OwnerCreated),
		zap.Int("inserted", res.Inserted),
		zap.Int("skipped", res.Skipped),
	)
}
