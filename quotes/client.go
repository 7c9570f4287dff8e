package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocks-trader/config"
	"stocks-trader/errs"
)

var ErrUnknownSymbol = fmt.Errorf("%w: unknown symbol", errs.ErrNotFound)

// Match is the best symbol-search hit. The zero Match encodes as {}.
type Match struct {
	Symbol      string `json:"symbol,omitempty"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Region      string `json:"region,omitempty"`
	MarketOpen  string `json:"market_open,omitempty"`
	MarketClose string `json:"market_close,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Currency    string `json:"currency,omitempty"`
	MatchScore  string `json:"match_score,omitempty"`
}

type PricePoint struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}

type PriceRecorder interface {
	RecordPrice(ctx context.Context, symbol string, price decimal.Decimal, at time.Time) error
	PriceHistory(ctx context.Context, symbol string, limit int) ([]PricePoint, error)
}

type cachedPrice struct {
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type cachedMatch struct {
	Match     Match     `json:"match"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Client talks to Alpha Vantage. Each upstream call is a single attempt
// bounded by the configured timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      Cache
	ttl        time.Duration
	history    PriceRecorder
	log        *zap.Logger
	now        func() time.Time
}

func NewClient(cfg config.QuotesConfig, cache Cache, log *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
		ttl:        cfg.CacheTTL,
		log:        log,
		now:        time.Now,
	}
}

// WithHistory makes the client append every fresh price to r.
func (c *Client) WithHistory(r PriceRecorder) *Client {
	c.history = r
	return c
}

func (c *Client) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	const op = "quotes.Price"

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := "quote:price:" + symbol

	var cached cachedPrice
	if c.fromCache(ctx, key, &cached) && c.fresh(cached.FetchedAt) {
		return cached.Price, nil
	}

	var resp globalQuoteResponse
	if err := c.call(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}}, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	if msg := resp.message(); msg != "" {
		return decimal.Zero, fmt.Errorf("%s: %w: %s", op, errs.ErrUnavailable, msg)
	}

	if resp.GlobalQuote.Price == "" {
		return decimal.Zero, fmt.Errorf("%s: %w: %s", op, ErrUnknownSymbol, symbol)
	}

	price, err := decimal.NewFromString(resp.GlobalQuote.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w: bad price %q", op, errs.ErrUnavailable, resp.GlobalQuote.Price)
	}

	now := c.now()
	c.toCache(ctx, key, cachedPrice{Price: price, FetchedAt: now})

	if c.history != nil {
		if err := c.history.RecordPrice(ctx, symbol, price, now); err != nil {
			c.log.Warn("failed to record price", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	return price, nil
}

// Lookup returns the best search match for query, or a zero Match when there is none.
func (c *Client) Lookup(ctx context.Context, query string) (Match, error) {
	const op = "quotes.Lookup"

	query = strings.ToUpper(strings.TrimSpace(query))
	key := "quote:lookup:" + query

	var cached cachedMatch
	if c.fromCache(ctx, key, &cached) && c.fresh(cached.FetchedAt) {
		return cached.Match, nil
	}

	var resp symbolSearchResponse
	if err := c.call(ctx, url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {query}}, &resp); err != nil {
		return Match{}, fmt.Errorf("%s: %w", op, err)
	}

	if msg := resp.message(); msg != "" {
		return Match{}, fmt.Errorf("%s: %w: %s", op, errs.ErrUnavailable, msg)
	}

	var m Match
	if len(resp.BestMatches) > 0 {
		best := resp.BestMatches[0]
		m = Match{
			Symbol:      best.Symbol,
			Name:        best.Name,
			Type:        best.Type,
			Region:      best.Region,
			MarketOpen:  best.MarketOpen,
			MarketClose: best.MarketClose,
			Timezone:    best.Timezone,
			Currency:    best.Currency,
			MatchScore:  best.MatchScore,
		}
	}

	c.toCache(ctx, key, cachedMatch{Match: m, FetchedAt: c.now()})

	return m, nil
}

// History returns recorded prices for symbol, newest first.
func (c *Client) History(ctx context.Context, symbol string, limit int) ([]PricePoint, error) {
	if c.history == nil {
		return []PricePoint{}, nil
	}

	points, err := c.history.PriceHistory(ctx, strings.ToUpper(strings.TrimSpace(symbol)), limit)
	if err != nil {
		return nil, fmt.Errorf("quotes.History: %w", err)
	}

	return points, nil
}

func (c *Client) call(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: external API request failed: %v", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: external API returned %s", errs.ErrUnavailable, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to parse external API response: %v", errs.ErrUnavailable, err)
	}

	return nil
}

func (c *Client) fresh(fetchedAt time.Time) bool {
	return c.ttl > 0 && c.now().Sub(fetchedAt) <= c.ttl
}

func (c *Client) fromCache(ctx context.Context, key string, out interface{}) bool {
	if c.ttl <= 0 {
		return false
	}

	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("quote cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("quote cache entry is corrupted", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

func (c *Client) toCache(ctx context.Context, key string, v interface{}) {
	if c.ttl <= 0 {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("failed to encode quote cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("quote cache write failed", zap.String("key", key), zap.Error(err))
	}
}
