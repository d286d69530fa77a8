package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultPaystackURL = "https://api.paystack.co"

// PaystackClient verifies transactions with Paystack's verify endpoint.
type PaystackClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Reference string `json:"reference"`
	} `json:"data"`
}

func NewPaystackClient(baseURL, secretKey string, timeout time.Duration) *PaystackClient {
	if baseURL == "" {
		baseURL = defaultPaystackURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaystackClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *PaystackClient) Name() string { return "paystack" }

func (c *PaystackClient) Verify(ctx context.Context, reference string) (*Verification, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnreachable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var parsed paystackVerifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrUnreachable, err)
	}

	v := &Verification{
		Reference: reference,
		Raw:       json.RawMessage(body),
	}
	// status=false is a well-formed refusal, not a transport failure.
	if !parsed.Status || parsed.Data == nil {
		v.Status = "failed"
		return v, nil
	}

	v.Status = parsed.Data.Status
	v.Amount = parsed.Data.Amount
	v.Currency = strings.ToUpper(parsed.Data.Currency)
	if parsed.Data.Reference != "" {
		v.Reference = parsed.Data.Reference
	}
	return v, nil
}
