package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrVerificationFailed is returned when the gateway rejects the token/amount pair.
var ErrVerificationFailed = errors.New("payment verification failed")

// Verifier is the payment-gateway round trip. The gateway itself is a
// black box; only the verify call is modeled.
type Verifier interface {
	// Verify confirms a client-side payment token against the gateway.
	// amount is in paisa, as the gateway expects.
	Verify(ctx context.Context, token string, amount int64) (transactionID string, err error)
}

// KhaltiClient verifies payments against the Khalti API.
type KhaltiClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewKhaltiClient builds a verifier for the given API base URL and secret key.
func NewKhaltiClient(baseURL, secretKey string) *KhaltiClient {
	return &KhaltiClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type khaltiVerifyResponse struct {
	IDX    string `json:"idx"`
	Detail string `json:"detail"`
}

// Verify posts the token/amount pair to /payment/verify with the
// merchant key and returns the gateway transaction id on success.
func (c *KhaltiClient) Verify(ctx context.Context, token string, amount int64) (string, error) {
	form := url.Values{}
	form.Set("token", token)
	form.Set("amount", fmt.Sprintf("%d", amount))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/payment/verify", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	var body khaltiVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrVerificationFailed, body.Detail)
	}

	return body.IDX, nil
}

var _ Verifier = (*KhaltiClient)(nil)
