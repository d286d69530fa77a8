package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuotaFor(t *testing.T) {
	tests := []struct {
		tier Tier
		want int
	}{
		{Starter, 1},
		{Pro, 30},
		{Premium, 30},
		{Agency, Unlimited},
		{Tier("gold"), 1},
		{Tier(""), 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, QuotaFor(tt.tier))
			assert.Equal(t, tt.want, QuotaFor(tt.tier), "same input, same output")
		})
	}
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, Starter, ParseTier("free"))
	assert.Equal(t, Pro, ParseTier(" PRO "))
	assert.Equal(t, Starter, ParseTier("enterprise"))
	assert.Equal(t, Starter, ParseTier(""))
	assert.True(t, Known("agency"))
	assert.False(t, Known("gold"))
}

func TestEffectiveTier(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	for _, stored := range []string{"starter", "pro", "premium", "agency", "bogus", ""} {
		assert.Equal(t, Starter, EffectiveTier(stored, &past, now), "expired %q", stored)
	}

	assert.Equal(t, Pro, EffectiveTier("pro", &future, now))
	assert.Equal(t, Agency, EffectiveTier("agency", nil, now))
	assert.Equal(t, Starter, EffectiveTier("", nil, now))
	// expiry equal to now is not strictly before now
	assert.Equal(t, Premium, EffectiveTier("premium", &now, now))
}

func TestUsageBand(t *testing.T) {
	tests := []struct {
		count, quota int
		want         Band
	}{
		{0, 30, BandSafe},
		{22, 30, BandSafe},
		{23, 30, BandWarning},
		{27, 30, BandDanger},
		{30, 30, BandDanger},
		{1, 1, BandDanger},
		{500, Unlimited, BandSafe},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UsageBand(tt.count, tt.quota), "%d/%d", tt.count, tt.quota)
	}
}

func TestPrices(t *testing.T) {
	p, ok := BoostPrice(14)
	assert.True(t, ok)
	assert.Equal(t, int64(5000), MinorUnits(p))

	_, ok = BoostPrice(10)
	assert.False(t, ok)

	_, ok = SubscriptionPrice(Starter, Monthly)
	assert.False(t, ok)

	p, ok = SubscriptionPrice(Pro, Annual)
	assert.True(t, ok)
	assert.Equal(t, int64(150_000), p)
}

func TestCycleExtend(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(30*24*time.Hour), Monthly.Extend(now))
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), Annual.Extend(now))

	c, ok := ParseCycle("yearly")
	assert.True(t, ok)
	assert.Equal(t, Annual, c)
	_, ok = ParseCycle("weekly")
	assert.False(t, ok)
}
