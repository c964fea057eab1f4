package oracle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/basinlabs/baseswap/utils/metrics"
)

// HTTPFeedConfig configures an HTTPFeed client.
type HTTPFeedConfig struct {
	// BaseURL of the quote provider, e.g. "https://feeds.example.com".
	BaseURL string
	// RequestsPerSecond and Burst bound the request rate.
	RequestsPerSecond float64
	Burst             int
	// CacheSize is the number of assets whose quotes are cached.
	CacheSize int
	// MaxQuoteAge is how long a cached quote may be served.
	MaxQuoteAge time.Duration
	// Timeout for a single request.
	Timeout time.Duration
}

type cachedQuote struct {
	quote   *Quote
	fetched time.Time
}

// HTTPFeed fetches quotes from a REST price provider. Requests are rate
// limited and recent quotes are served from an LRU cache. Failed
// requests are not retried; callers own retry semantics.
type HTTPFeed struct {
	client  *resty.Client
	limiter *rate.Limiter
	cache   *lru.Cache
	maxAge  time.Duration
	log     *zap.Logger
	metrics *metrics.OracleMetrics
}

// NewHTTPFeed creates a feed client for the given provider.
func NewHTTPFeed(cfg HTTPFeedConfig, log *zap.Logger, m *metrics.OracleMetrics) (*HTTPFeed, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("feed base URL is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote cache: %w", err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	client := resty.New().SetBaseURL(cfg.BaseURL)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &HTTPFeed{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		cache:   cache,
		maxAge:  cfg.MaxQuoteAge,
		log:     log,
		metrics: m,
	}, nil
}

type quoteResponse struct {
	Price     string `json:"price"`
	Decimals  uint8  `json:"decimals"`
	Timestamp int64  `json:"timestamp"`
}

// LatestQuote returns the provider's most recent quote for asset. The
// zero asset address addresses the provider's base (settlement asset)
// quote endpoint.
func (f *HTTPFeed) LatestQuote(ctx context.Context, asset common.Address) (*Quote, error) {
	if f.maxAge > 0 {
		if entry, ok := f.cache.Get(asset); ok {
			cached := entry.(cachedQuote)
			if time.Since(cached.fetched) < f.maxAge {
				if f.metrics != nil {
					f.metrics.CacheHits.Inc()
				}
				return cached.quote, nil
			}
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	path := "/v1/prices/base"
	if asset != (common.Address{}) {
		path = "/v1/prices/" + asset.Hex()
	}

	f.log.Debug("fetching quote", zap.String("path", path))
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&quoteResponse{}).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote request failed: status %d", resp.StatusCode())
	}

	body := resp.Result().(*quoteResponse)
	price, ok := new(big.Int).SetString(body.Price, 10)
	if !ok {
		return nil, fmt.Errorf("%w: unparseable price %q", ErrInvalidPrice, body.Price)
	}

	quote := &Quote{
		Price:     price,
		Decimals:  body.Decimals,
		Timestamp: time.Unix(body.Timestamp, 0),
	}
	f.cache.Add(asset, cachedQuote{quote: quote, fetched: time.Now()})
	return quote, nil
}
