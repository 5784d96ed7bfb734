package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"mysql"`
	MySQLDSN   string `envconfig:"MYSQL_DSN" default:"user:password@tcp(localhost:3306)/restaurant?charset=utf8mb4&parseTime=True&loc=Local"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"restaurant.db"`
	ResetDB    bool   `envconfig:"RESET_DB" default:"false"`

	RedisEnabled bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass    string `envconfig:"REDIS_PASSWORD"`
	RedisDB      int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret        string        `envconfig:"JWT_SECRET" default:"change-me"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"168h"`
	RefreshTokenTTL  time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`
	BcryptCost       int           `envconfig:"BCRYPT_COST" default:"12"`
	GoogleClientID   string        `envconfig:"GOOGLE_CLIENT_ID"`

	SMTPHost    string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort    int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser    string `envconfig:"SMTP_USER"`
	SMTPPass    string `envconfig:"SMTP_PASS"`
	SMTPFrom    string `envconfig:"SMTP_FROM"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	AllowedOrigins   []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:19006"`
	RateLimitWindow  time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
	RateLimitMax     int           `envconfig:"RATE_LIMIT_MAX" default:"100"`
	AuthRateLimitMax int           `envconfig:"AUTH_RATE_LIMIT_MAX" default:"5"`
	SQLGuard         bool          `envconfig:"SQL_GUARD" default:"true"`

	PaymentProvider string `envconfig:"PAYMENT_PROVIDER" default:"stripe"`
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	OmisePublicKey  string `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey  string `envconfig:"OMISE_SECRET_KEY"`
	OmiseSourceType string `envconfig:"OMISE_SOURCE_TYPE" default:"promptpay"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"restaurant.orders"`

	AllowSeed       *bool         `envconfig:"ALLOW_SEED"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"0"`
	CleanupDays     int           `envconfig:"CLEANUP_DAYS" default:"30"`

	SwaggerHost string `envconfig:"SWAGGER_HOST"`
}

// Load builds Config from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.PaymentProvider {
	case "stripe", "omise":
	default:
		return fmt.Errorf("unsupported PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	if c.IsProduction() && c.JWTSecret == "change-me" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimitWindow)
	}
	if c.RateLimitMax <= 0 || c.AuthRateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX and AUTH_RATE_LIMIT_MAX must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST out of range: %d", c.BcryptCost)
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// RefreshSecret falls back to JWTSecret when no dedicated refresh secret is set.
func (c *Config) RefreshSecret() string {
	if c.JWTRefreshSecret != "" {
		return c.JWTRefreshSecret
	}
	return c.JWTSecret
}

// SeedAllowed reports whether the destructive menu seed endpoint is enabled.
// Defaults to enabled everywhere except production.
func (c *Config) SeedAllowed() bool {
	if c.AllowSeed != nil {
		return *c.AllowSeed
	}
	return !c.IsProduction()
}

// MailFrom is the sender address for transactional email.
func (c *Config) MailFrom() string {
	if c.SMTPFrom != "" {
		return c.SMTPFrom
	}
	return c.SMTPUser
}
