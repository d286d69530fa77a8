package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PAYMENT_PROVIDER", "PAYMENT_CURRENCY", "RECONCILE_WORKERS", "PENDING_TXN_TIMEOUT", "GATEWAY_TIMEOUT", "DB_NAME"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "paystack", cfg.PaymentProvider)
	assert.Equal(t, "NGN", cfg.Currency)
	assert.Equal(t, 4, cfg.ReconcileWorkers)
	assert.Equal(t, 15*time.Minute, cfg.PendingTxnTimeout)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "parcel_db", cfg.DBName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAYMENT_PROVIDER", "Stripe")
	t.Setenv("PAYMENT_CURRENCY", "usd")
	t.Setenv("RECONCILE_WORKERS", "12")
	t.Setenv("PENDING_TXN_TIMEOUT", "1h")
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	assert.Equal(t, "stripe", cfg.PaymentProvider)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 12, cfg.ReconcileWorkers)
	assert.Equal(t, time.Hour, cfg.PendingTxnTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 3, parseInt("nope", 3))
	assert.Equal(t, 3, parseInt("-1", 3))
	assert.Equal(t, 7, parseInt("7", 3))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
