package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iho/fundledger/internal/domain"
)

const maxResponseBytes = 1 << 16

// HTTPFeed reads the latest quote from a JSON endpoint answering
// {"price": "200000000000", "decimals": 8}.
type HTTPFeed struct {
	url     string
	address string
	client  *http.Client
}

// HTTPFeedConfig configures an HTTPFeed.
type HTTPFeedConfig struct {
	URL     string
	Address string // Defaults to URL
	Timeout time.Duration
	Client  *http.Client
}

// NewHTTPFeed creates a new HTTPFeed.
func NewHTTPFeed(cfg HTTPFeedConfig) *HTTPFeed {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	if strings.TrimSpace(cfg.Address) == "" {
		cfg.Address = cfg.URL
	}

	return &HTTPFeed{
		url:     cfg.URL,
		address: cfg.Address,
		client:  cfg.Client,
	}
}

// LatestQuote fetches the quote. Every failure wraps domain.ErrOracleUnavailable.
func (f *HTTPFeed) LatestQuote(ctx context.Context) (domain.PriceQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("%w: read body: %v", domain.ErrOracleUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.PriceQuote{}, fmt.Errorf("%w: status %d: %s", domain.ErrOracleUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	quote, err := decodeQuote(body)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}

	return quote, nil
}

// Address returns the feed reference.
func (f *HTTPFeed) Address() string {
	return f.address
}
