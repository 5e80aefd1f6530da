package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client is the upstream feed interface, kept small for testability.
type Client interface {
	FetchStocks(ctx context.Context) ([]StockQuote, error)
	FetchOptions(ctx context.Context) ([]OptionQuote, error)
}

// HTTPClient talks to the live BYMA data provider. Requests pass through a
// token-bucket limiter sized to the provider's published rate limit and
// retry transient failures with exponential backoff.
type HTTPClient struct {
	httpClient      *http.Client
	baseURL         string
	stocksEndpoint  string
	optionsEndpoint string
	limiter         *rate.Limiter
	retryCount      int
	retryDelay      time.Duration
	logger          *zap.Logger
}

func NewHTTPClient(baseURL, stocksEndpoint, optionsEndpoint string, ratePerSec int, timeout, retryDelay time.Duration, retryCount int, logger *zap.Logger) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:    100,
		MaxConnsPerHost: 10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL:         baseURL,
		stocksEndpoint:  stocksEndpoint,
		optionsEndpoint: optionsEndpoint,
		limiter:         rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec*2),
		retryCount:      retryCount,
		retryDelay:      retryDelay,
		logger:          logger,
	}
}

func (c *HTTPClient) FetchStocks(ctx context.Context) ([]StockQuote, error) {
	var stocks []StockQuote
	if err := c.getJSON(ctx, c.baseURL+c.stocksEndpoint, &stocks); err != nil {
		return nil, fmt.Errorf("fetching stocks: %w", err)
	}
	return stocks, nil
}

func (c *HTTPClient) FetchOptions(ctx context.Context) ([]OptionQuote, error) {
	var options []OptionQuote
	if err := c.getJSON(ctx, c.baseURL+c.optionsEndpoint, &options); err != nil {
		return nil, fmt.Errorf("fetching options: %w", err)
	}
	return options, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	c.logger.Debug("requesting", zap.String("url", url))

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // Exponential backoff
			c.logger.Debug("retrying request", zap.Int("attempt", attempt), zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = ErrRateLimited
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("%w: %v", ErrUpstream, lastErr)
}
