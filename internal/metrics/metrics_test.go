package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector()
	c.RecordPayment("boost", "success")
	c.RecordPayment("boost", "success")
	c.RecordPayment("subscription", "amount_mismatch")
	c.RecordReconcile(2, 5, 1)
	c.RecordStale(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Payments.WithLabelValues("boost", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Payments.WithLabelValues("subscription", "amount_mismatch")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.TenantsDowngraded))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.ListingsDemoted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ReconcileFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.StaleTransactions))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordPayment("boost", "success")
		c.RecordActivation("active")
		c.RecordReconcile(1, 1, 1)
		c.RecordStale(1)
		c.ObserveGateway("paystack", 0.1)
	})
}
