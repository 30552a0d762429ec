// Package oracle fetches reference fiat prices for display. Nothing here
// feeds a transaction: oracle prices decorate the UI and are allowed to be a
// little stale, hence the validity-window cache.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"swapdeck/internal/fixedpoint"
)

// Client reads spot prices from a price API and caches them for a validity
// window.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
	validPeriod time.Duration

	mu     sync.Mutex
	cached map[string]cachedPrice
}

type cachedPrice struct {
	price   fixedpoint.FixedPoint
	fetched time.Time
}

// New builds an oracle client. validPeriod bounds cache staleness; zero
// means 30 seconds.
func New(baseURL string, logger *zap.Logger, validPeriod time.Duration) *Client {
	if validPeriod <= 0 {
		validPeriod = 30 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger.Named("oracle"),
		validPeriod: validPeriod,
		cached:      make(map[string]cachedPrice),
	}
}

type priceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// USDPrice returns the cached or freshly fetched USD price for a symbol.
func (c *Client) USDPrice(ctx context.Context, symbol string) (fixedpoint.FixedPoint, error) {
	c.mu.Lock()
	if hit, ok := c.cached[symbol]; ok && time.Since(hit.fetched) < c.validPeriod {
		c.mu.Unlock()
		return hit.price, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/price?symbol=%s", c.baseURL, symbol), nil)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("fetch price for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fixedpoint.Zero, fmt.Errorf("price api status %d for %s", resp.StatusCode, symbol)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("read price response: %w", err)
	}

	var body priceResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return fixedpoint.Zero, fmt.Errorf("decode price response: %w", err)
	}
	price, err := fixedpoint.FromString(body.Price)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("parse price %q: %w", body.Price, err)
	}

	c.mu.Lock()
	c.cached[symbol] = cachedPrice{price: price, fetched: time.Now()}
	c.mu.Unlock()

	c.logger.Debug("price refreshed",
		zap.String("symbol", symbol),
		zap.String("price", price.String()))
	return price, nil
}
