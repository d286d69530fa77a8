package plans

import "time"

// BillingCycle is the length of a paid subscription period.
type BillingCycle string

const (
	Monthly BillingCycle = "monthly"
	Annual  BillingCycle = "annual"
)

// ParseCycle accepts "monthly" and "annual" ("yearly" as an alias).
func ParseCycle(s string) (BillingCycle, bool) {
	switch s {
	case "monthly":
		return Monthly, true
	case "annual", "yearly":
		return Annual, true
	}
	return "", false
}

// Extend returns the expiry of a period bought at now. Renewals do not stack.
func (c BillingCycle) Extend(now time.Time) time.Time {
	if c == Annual {
		return now.AddDate(1, 0, 0)
	}
	return now.AddDate(0, 0, 30)
}

// Prices are whole major currency units.
var subscriptionPrices = map[Tier]map[BillingCycle]int64{
	Pro:     {Monthly: 15_000, Annual: 150_000},
	Premium: {Monthly: 35_000, Annual: 350_000},
	Agency:  {Monthly: 75_000, Annual: 750_000},
}

var boostPrices = map[int]int64{
	7:  30,
	14: 50,
	30: 90,
}

// SubscriptionPrice returns the price of tier for one cycle. Starter is not
// purchasable.
func SubscriptionPrice(t Tier, c BillingCycle) (int64, bool) {
	byCycle, ok := subscriptionPrices[t]
	if !ok {
		return 0, false
	}
	p, ok := byCycle[c]
	return p, ok
}

// BoostPrice returns the price of a featured boost lasting days.
func BoostPrice(days int) (int64, bool) {
	p, ok := boostPrices[days]
	return p, ok
}

// BoostDurations lists the purchasable boost lengths in days.
func BoostDurations() []int {
	return []int{7, 14, 30}
}

// MinorUnits converts a major-unit price to the gateway's minor unit.
func MinorUnits(major int64) int64 {
	return major * 100
}
