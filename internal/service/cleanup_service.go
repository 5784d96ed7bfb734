package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bistro/internal/repository"
)

// DefaultCleanupDays is the retention for temporary checkout data.
const DefaultCleanupDays = 30

// CleanupResult counts purged rows.
type CleanupResult struct {
	Addresses      int64     `json:"addresses"`
	PaymentMethods int64     `json:"paymentMethods"`
	Cutoff         time.Time `json:"cutoff"`
}

// CleanupService purges stale temporary data.
type CleanupService interface {
	PurgeTemporary(ctx context.Context, olderThanDays int) (*CleanupResult, error)
}

type cleanupService struct {
	addressRepo       repository.AddressRepository
	paymentMethodRepo repository.PaymentMethodRepository
	log               *zap.Logger
	now               func() time.Time
}

// NewCleanupService creates a new cleanup service.
func NewCleanupService(addressRepo repository.AddressRepository, paymentMethodRepo repository.PaymentMethodRepository, log *zap.Logger) CleanupService {
	return &cleanupService{
		addressRepo:       addressRepo,
		paymentMethodRepo: paymentMethodRepo,
		log:               log,
		now:               time.Now,
	}
}

// PurgeTemporary deletes temporary addresses and payment methods created
// more than olderThanDays ago. Non-positive values use DefaultCleanupDays.
func (s *cleanupService) PurgeTemporary(ctx context.Context, olderThanDays int) (*CleanupResult, error) {
	if olderThanDays <= 0 {
		olderThanDays = DefaultCleanupDays
	}
	cutoff := s.now().AddDate(0, 0, -olderThanDays)

	addresses, err := s.addressRepo.DeleteTemporaryBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purge temporary addresses: %w", err)
	}
	methods, err := s.paymentMethodRepo.DeleteTemporaryBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purge temporary payment methods: %w", err)
	}

	s.log.Info("temporary data purged",
		zap.Int64("addresses", addresses),
		zap.Int64("payment_methods", methods),
		zap.Time("cutoff", cutoff))
	return &CleanupResult{Addresses: addresses, PaymentMethods: methods, Cutoff: cutoff}, nil
}

// RunCleanupLoop purges on every tick until ctx is done.
func RunCleanupLoop(ctx context.Context, svc CleanupService, interval time.Duration, days int, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.PurgeTemporary(ctx, days); err != nil {
				log.Error("cleanup run failed", zap.Error(err))
			}
		}
	}
}
