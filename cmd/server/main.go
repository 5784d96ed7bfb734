package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "bistro/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bistro/internal/auth"
	"bistro/internal/cache"
	"bistro/internal/config"
	"bistro/internal/db"
	"bistro/internal/events"
	"bistro/internal/gateway"
	"bistro/internal/handler"
	"bistro/internal/logger"
	"bistro/internal/mailer"
	"bistro/internal/repository"
	"bistro/internal/router"
	"bistro/internal/service"
)

// @title Restaurant Ordering API
// @version 1.0
// @description Menu browsing, order placement and tracking, addresses, payment methods and authentication for a restaurant.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		return err
	}
	if cfg.ResetDB {
		zl.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	var cacheClient *cache.Client
	if cfg.RedisEnabled {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			zl.Warn("redis unreachable, continuing without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancel()
		defer cacheClient.Close()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			zl.Warn("amqp unavailable, order events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	var sender mailer.Sender = mailer.NewLogSender(zl)
	if cfg.SMTPUser != "" {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom())
	}
	mail := mailer.NewAsync(sender, zl)

	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	addressRepo := repository.NewAddressRepository(gormDB)
	paymentMethodRepo := repository.NewPaymentMethodRepository(gormDB)
	paymentRepo := repository.NewPaymentRepository(gormDB)
	menuRepo := repository.NewMenuRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.RefreshSecret(), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	google := auth.NewIDTokenVerifier(cfg.GoogleClientID)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, hasher, mail, google, cfg.FrontendURL, zl)
	menuService := service.NewMenuService(menuRepo, cacheClient, zl, cfg.SeedAllowed())
	orderService := service.NewOrderService(orderRepo, menuRepo, addressRepo, userRepo, publisher, zl)
	addressService := service.NewAddressService(addressRepo)
	paymentMethodService := service.NewPaymentMethodService(paymentMethodRepo)
	paymentService := service.NewPaymentService(gw, paymentRepo, orderRepo, zl)
	cleanupService := service.NewCleanupService(addressRepo, paymentMethodRepo, zl)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	router.Register(e, cfg, zl, cacheClient, jwtService, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Menu:    handler.NewMenuHandler(menuService),
		Order:   handler.NewOrderHandler(orderService),
		Address: handler.NewAddressHandler(addressService),
		Payment: handler.NewPaymentHandler(paymentMethodService, paymentService),
		Health:  handler.NewHealthHandler(cfg.AppEnv),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.CleanupInterval > 0 {
		go service.RunCleanupLoop(ctx, cleanupService, cfg.CleanupInterval, cfg.CleanupDays, zl)
	}

	zl.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server listening", zap.String("port", cfg.ServerPort), zap.String("env", cfg.AppEnv))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutdown signal received, shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	shutdownErr := e.Shutdown(shutdownCtx)
	if err := mail.Close(shutdownCtx); err != nil {
		zl.Warn("pending emails dropped on shutdown", zap.Error(err))
	}
	return shutdownErr
}

func newGateway(cfg *config.Config) (gateway.IntentCreator, error) {
	if cfg.PaymentProvider == "omise" {
		return gateway.NewOmise(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.OmiseSourceType)
	}
	return gateway.NewStripe(cfg.StripeSecretKey), nil
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
