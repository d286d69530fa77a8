// Package plans holds the subscription tier rules: listing quotas, effective
// tier after expiry, usage banding and the fixed price table. Nothing here
// does I/O.
package plans

import (
	"strings"
	"time"
)

// Tier is a subscription tier as stored on a profile.
type Tier string

const (
	Starter Tier = "starter"
	Pro     Tier = "pro"
	Premium Tier = "premium"
	Agency  Tier = "agency"
)

// Unlimited is the quota sentinel for tiers without a listing cap.
const Unlimited = -1

var quotas = map[Tier]int{
	Starter: 1,
	Pro:     30,
	Premium: 30,
	Agency:  Unlimited,
}

var names = map[Tier]string{
	Starter: "Starter",
	Pro:     "Pro",
	Premium: "Premium",
	Agency:  "Agency",
}

// ParseTier normalises a stored or requested tier string. Unknown and empty
// values become Starter; "free" is accepted as a legacy alias.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t == "free" {
		return Starter
	}
	if _, ok := quotas[t]; ok {
		return t
	}
	return Starter
}

// Known reports whether s names a tier exactly (no fallback).
func Known(s string) bool {
	_, ok := quotas[Tier(strings.ToLower(strings.TrimSpace(s)))]
	return ok
}

// QuotaFor returns the maximum number of simultaneously active listings for
// the tier, or Unlimited. Unknown tiers get the starter quota.
func QuotaFor(t Tier) int {
	if q, ok := quotas[t]; ok {
		return q
	}
	return quotas[Starter]
}

// EffectiveTier is the tier used for every quota and feature decision: a
// subscription whose expiry is strictly before now counts as Starter.
func EffectiveTier(stored string, expiry *time.Time, now time.Time) Tier {
	if expiry != nil && expiry.Before(now) {
		return Starter
	}
	return ParseTier(stored)
}

// IsPaid reports whether the tier is a paid plan.
func IsPaid(t Tier) bool {
	return t == Pro || t == Premium || t == Agency
}

// PlanName returns the display name for the tier.
func PlanName(t Tier) string {
	if n, ok := names[t]; ok {
		return n
	}
	return names[Starter]
}

// Band classifies quota usage for display.
type Band string

const (
	BandSafe    Band = "safe"
	BandWarning Band = "warning"
	BandDanger  Band = "danger"
)

// UsageBand bands count/quota at 90% (danger) and 75% (warning). It carries
// no enforcement meaning.
func UsageBand(count, quota int) Band {
	if quota == Unlimited {
		return BandSafe
	}
	if quota <= 0 {
		return BandDanger
	}
	pct := count * 100
	switch {
	case pct >= 90*quota:
		return BandDanger
	case pct >= 75*quota:
		return BandWarning
	default:
		return BandSafe
	}
}
