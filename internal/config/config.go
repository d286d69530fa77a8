package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT issued by the external auth provider
	JWTSecret string

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string

	// Payments
	PaymentProvider   string
	PaystackSecretKey string
	PaystackBaseURL   string
	StripeSecretKey   string
	GatewayTimeout    time.Duration
	Currency          string

	// Jobs
	CronSecret        string
	ReconcileWorkers  int
	PendingTxnTimeout time.Duration

	// Observability
	LogLevel         string
	LogRetentionDays int
	SentryDSN        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "parcel_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),

		PaymentProvider:   strings.ToLower(getEnv("PAYMENT_PROVIDER", "paystack")),
		PaystackSecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		GatewayTimeout:    parseDuration(getEnv("GATEWAY_TIMEOUT", "10s"), 10*time.Second),
		Currency:          strings.ToUpper(getEnv("PAYMENT_CURRENCY", "NGN")),

		CronSecret:        getEnv("CRON_SECRET", ""),
		ReconcileWorkers:  parseInt(getEnv("RECONCILE_WORKERS", "4"), 4),
		PendingTxnTimeout: parseDuration(getEnv("PENDING_TXN_TIMEOUT", "15m"), 15*time.Minute),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
