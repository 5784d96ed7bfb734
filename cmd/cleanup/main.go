package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/db"
	"bistro/internal/logger"
	"bistro/internal/repository"
	"bistro/internal/service"
)

// Purges temporary addresses and payment methods older than -days.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	days := flag.Int("days", cfg.CleanupDays, "delete temporary entries created more than this many days ago")
	flag.Parse()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		zl.Fatal("connect to database", zap.Error(err))
	}

	cleanup := service.NewCleanupService(
		repository.NewAddressRepository(gormDB),
		repository.NewPaymentMethodRepository(gormDB),
		zl,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := cleanup.PurgeTemporary(ctx, *days)
	if err != nil {
		zl.Fatal("cleanup failed", zap.Error(err))
	}
	zl.Info("cleanup completed",
		zap.Int64("addresses", res.Addresses),
		zap.Int64("payment_methods", res.PaymentMethods),
		zap.Time("cutoff", res.Cutoff))
}
