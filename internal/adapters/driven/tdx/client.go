package tdx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

const (
	// DefaultBaseURL is the TDX basic API root for TRA rail data.
	DefaultBaseURL = "https://tdx.transportdata.tw/api/basic/v3/Rail/TRA"

	// DefaultTokenURL is the TDX OAuth2 client-credentials endpoint.
	DefaultTokenURL = "https://tdx.transportdata.tw/auth/realms/TDXConnect/protocol/openid-connect/token"

	// DefaultRequestsPerSecond matches the TDX free-tier quota of 50
	// requests per second; the limiter keeps a busy session from ever
	// tripping the upstream 429.
	DefaultRequestsPerSecond = 50

	// DefaultMaxRetries bounds retry attempts for 429/5xx responses.
	DefaultMaxRetries = 3

	requestTimeout = 30 * time.Second
)

// Config holds TDX API credentials and tuning knobs. Zero values fall
// back to the defaults above.
type Config struct {
	ClientID          string
	ClientSecret      string
	BaseURL           string
	TokenURL          string
	RequestsPerSecond float64
	MaxRetries        int
}

// Client is an authenticated, rate-limited TDX API client. It
// implements the station and timetable driven ports through the files
// alongside this one.
type Client struct {
	http       *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

// New creates a TDX client. The returned client owns token acquisition
// and refresh; callers never see credentials again after construction.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("tdx: client id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	oauth := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	httpClient := oauth.Client(context.Background())
	httpClient.Timeout = requestTimeout

	return &Client{
		http:       httpClient,
		baseURL:    cfg.BaseURL,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		maxRetries: cfg.MaxRetries,
	}, nil
}

// getJSON performs a rate-limited GET of baseURL+path and decodes the
// JSON body into out. 429 and 5xx responses are retried with backoff,
// honoring Retry-After when the server sends one.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("tdx request %s: %w", path, err)
			if ctx.Err() != nil {
				return lastErr
			}
			logger.Warn("tdx request failed (attempt %d/%d): %v", attempt+1, c.maxRetries+1, err)
			continue
		}

		if retryable(resp.StatusCode) {
			delay := retryDelay(resp, attempt)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("tdx request %s: status %d", path, resp.StatusCode)
			logger.Warn("tdx status %d on %s, retrying in %s (attempt %d/%d)",
				resp.StatusCode, path, delay, attempt+1, c.maxRetries+1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("tdx request %s: status %d: %s", path, resp.StatusCode, body)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode tdx response %s: %w", path, err)
		}
		return nil
	}
	return lastErr
}

// retryable reports whether a status code warrants another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// retryDelay picks the wait before the next attempt: the server's
// Retry-After if present, else exponential starting at one second.
func retryDelay(resp *http.Response, attempt int) time.Duration {
	if after := resp.Header.Get("Retry-After"); after != "" {
		if seconds, err := strconv.Atoi(after); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Duration(1<<attempt) * time.Second
}
