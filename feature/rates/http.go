package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// HTTPGateway fetches rates from an HTTP rate provider.
//
// The provider contract is a GET on /rate with from/to query parameters
// returning {"rate": "1.0842"}. Transport and provider failures both map to
// ErrUnavailable so callers need no knowledge of the wire layer.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway creates a gateway against cfg.Endpoint.
func NewHTTPGateway(cfg Config) *HTTPGateway {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	return &HTTPGateway{
		baseURL: cfg.Endpoint,
		apiKey:  cfg.ApiKey,
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

func (g *HTTPGateway) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/rate?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: building request for %s/%s: %v", ErrUnavailable, from, to, err)
	}
	if g.apiKey != "" {
		req.Header.Set("X-Api-Key", g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: fetching %s/%s: %v", ErrUnavailable, from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: provider returned %d for %s/%s", ErrUnavailable, resp.StatusCode, from, to)
	}

	var body struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decoding rate for %s/%s: %v", ErrUnavailable, from, to, err)
	}
	if body.Rate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: provider returned non-positive rate for %s/%s", ErrUnavailable, from, to)
	}

	return body.Rate, nil
}

func (g *HTTPGateway) TestConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

var _ Gateway = (*HTTPGateway)(nil)
