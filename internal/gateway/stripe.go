package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeClient treats the payment reference as a PaymentIntent id.
type StripeClient struct {
	retrieve func(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

// NewStripeClient configures the global stripe key and an API backend with
// the given timeout and no automatic network retries.
func NewStripeClient(secretKey string, timeout time.Duration) *StripeClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	stripe.Key = secretKey
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
	}))
	return &StripeClient{
		retrieve: func(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
			return paymentintent.Get(id, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
		},
	}
}

func (c *StripeClient) Name() string { return "stripe" }

func (c *StripeClient) Verify(ctx context.Context, reference string) (*Verification, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	pi, err := c.retrieve(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve payment intent: %v", ErrUnreachable, err)
	}

	raw, err := json.Marshal(pi)
	if err != nil {
		raw = nil
	}

	status := string(pi.Status)
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		status = StatusSuccess
	}

	return &Verification{
		Reference: pi.ID,
		Status:    status,
		Amount:    pi.AmountReceived,
		Currency:  strings.ToUpper(string(pi.Currency)),
		Raw:       raw,
	}, nil
}
