package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"bistro/internal/cache"
	"bistro/internal/config"
	"bistro/internal/db"
	"bistro/internal/logger"
	"bistro/internal/repository"
	"bistro/internal/service"
)

// Replaces all menu data with the default catalogue. Refuses to run in
// production unless ALLOW_SEED is set or -force is given.
func main() {
	force := flag.Bool("force", false, "seed even when ALLOW_SEED is off")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		zl.Fatal("connect to database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("run migrations", zap.Error(err))
	}

	var cacheClient *cache.Client
	if cfg.RedisEnabled {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cacheClient.Close()
	}

	menuService := service.NewMenuService(repository.NewMenuRepository(gormDB), cacheClient, zl, *force || cfg.SeedAllowed())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := menuService.Seed(ctx)
	if err != nil {
		zl.Fatal("seed menu", zap.Error(err))
	}
	zl.Info("seed completed", zap.Int("categories", res.Categories), zap.Int("items", res.Items))
}
