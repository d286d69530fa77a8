package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StatusSuccess is the only gateway status that counts as a paid transaction.
const StatusSuccess = "success"

// ErrUnreachable covers transport failures, timeouts, non-2xx answers and
// unreadable bodies. Callers must not retry within the same attempt.
var ErrUnreachable = errors.New("payment gateway unreachable")

// Verification is the gateway's view of a transaction.
type Verification struct {
	Reference string
	Status    string
	Amount    int64 // minor units
	Currency  string
	Raw       json.RawMessage
}

// Paid reports whether the gateway reported a completed payment.
func (v *Verification) Paid() bool {
	return v != nil && v.Status == StatusSuccess
}

// Verifier looks up a transaction at the payment gateway by the
// client-supplied reference.
type Verifier interface {
	Verify(ctx context.Context, reference string) (*Verification, error)
	Name() string
}

// ErrUnknownProvider is returned by New for a provider name it does not know.
var ErrUnknownProvider = errors.New("unknown payment provider")

// New picks the verifier for the configured provider. The matching secret
// key must be set.
func New(provider, paystackBaseURL, paystackKey, stripeKey string, timeout time.Duration) (Verifier, error) {
	switch provider {
	case "", "paystack":
		if paystackKey == "" {
			return nil, errors.New("PAYSTACK_SECRET_KEY is required")
		}
		return NewPaystackClient(paystackBaseURL, paystackKey, timeout), nil
	case "stripe":
		if stripeKey == "" {
			return nil, errors.New("STRIPE_SECRET_KEY is required")
		}
		return NewStripeClient(stripeKey, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}
