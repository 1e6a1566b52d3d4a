package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

const (
	// maxPageSize is the largest page Reddit serves for a listing request
	maxPageSize = 100

	maxAttempts  = 3
	maxBodyBytes = 4 << 20
)

// ClientConfig holds Reddit API credentials and endpoints
type ClientConfig struct {
	ClientID          string
	ClientSecret      string
	UserAgent         string
	BaseURL           string
	AuthURL           string
	RequestsPerMinute int
}

// Client fetches hot post titles from subreddits through the Reddit OAuth API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	log         *logger.Logger
}

// NewClient creates a Reddit client that authenticates with the client-credentials grant
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 5)

	// Reddit rejects requests without a descriptive User-Agent, token requests included
	base := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &userAgentTransport{userAgent: cfg.UserAgent, base: http.DefaultTransport},
	}
	oauthCfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.AuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	httpClient := oauthCfg.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	httpClient.Timeout = 30 * time.Second

	return &Client{
		httpClient:  httpClient,
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
		log:         log.With("component", "RedditClient"),
	}
}

// FetchTitles returns up to limit titles from the hot listing of a subreddit,
// following pagination cursors until the limit or the end of the listing
func (c *Client) FetchTitles(ctx context.Context, source string, limit int) ([]string, error) {
	if source == "" || limit <= 0 {
		return nil, domain.ErrInvalidRequest
	}

	titles := make([]string, 0, limit)
	after := ""
	for len(titles) < limit {
		pageSize := limit - len(titles)
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		listing, err := c.fetchHotPage(ctx, source, pageSize, after)
		if err != nil {
			return nil, err
		}

		page := MapListingTitles(listing)
		titles = append(titles, page...)

		after = listing.Data.After
		if after == "" || len(listing.Data.Children) == 0 {
			break
		}
	}

	if len(titles) > limit {
		titles = titles[:limit]
	}
	c.log.Debug("fetched hot titles", "source", source, "titles", len(titles))
	return titles, nil
}

// fetchHotPage requests one listing page, retrying rate limits and server errors
func (c *Client) fetchHotPage(ctx context.Context, source string, pageSize int, after string) (*Listing, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("raw_json", "1")
	if after != "" {
		params.Set("after", after)
	}
	reqURL := fmt.Sprintf("%s/r/%s/hot?%s", c.baseURL, url.PathEscape(source), params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.log.Warn("feed request error", "source", source, "attempt", attempt, "error", err)
			lastErr = err
			if waitErr := c.wait(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%w: reading body: %v", domain.ErrFeedFailure, readErr)
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: %s returned status %d", domain.ErrFeedFailure, source, resp.StatusCode)
			if !isRetryableStatus(resp.StatusCode) {
				return nil, lastErr
			}
			c.log.Warn("feed API error", "source", source, "attempt", attempt, "status", resp.StatusCode)
			if waitErr := c.wait(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		var listing Listing
		if err := json.Unmarshal(body, &listing); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &listing, nil
	}

	c.log.Error("all feed retries failed", "source", source)
	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedFailure, err)
	}
	return resp, nil
}

// wait sleeps for the backoff of the given attempt unless ctx ends first
func (c *Client) wait(ctx context.Context, attempt int) error {
	if attempt >= maxAttempts {
		return nil
	}
	timer := time.NewTimer(c.backoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableStatus reports whether a status is worth another attempt
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// userAgentTransport stamps every outgoing request with a User-Agent
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
