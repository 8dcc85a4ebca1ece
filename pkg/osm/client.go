package osm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NERVsystems/geocodemcp/pkg/version"
	"golang.org/x/time/rate"
)

var (
	// ErrMalformedResponse marks a response body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrClientClosed is returned by Search after Close.
	ErrClientClosed = errors.New("client closed")
)

// HTTPError is returned when Nominatim answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Reason     string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("Nominatim API error: %d %s", e.StatusCode, e.Reason)
}

// Degrees is a coordinate as Nominatim sends it. The public API uses
// strings but numeric values are accepted too.
type Degrees string

// UnmarshalJSON accepts a JSON string or number.
func (d *Degrees) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Degrees(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("coordinate must be a string or number: %w", err)
	}
	*d = Degrees(n.String())
	return nil
}

// Place is one record of a Nominatim /search response. Optional fields are
// pointers so callers can tell a missing value from a zero one.
type Place struct {
	PlaceID     *int64          `json:"place_id"`
	Lat         Degrees         `json:"lat"`
	Lon         Degrees         `json:"lon"`
	DisplayName *string         `json:"display_name"`
	Type        string          `json:"type"`
	Class       string          `json:"class"`
	Importance  *float64        `json:"importance"`
	BoundingBox []Degrees       `json:"boundingbox"`
	Address     json.RawMessage `json:"address,omitempty"`
}

// SearchParams are the inputs of a forward geocoding search.
type SearchParams struct {
	Query string
	Limit int
}

// Options configures a Client. An empty BaseURL selects NominatimBaseURL,
// an empty UserAgent selects version.UserAgent() and a zero Timeout selects
// DefaultTimeout. RequestsPerSecond <= 0 disables the limiter; config.Load
// fills in DefaultRequestsPerSecond for the server.
type Options struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            *slog.Logger
}

// Client performs Nominatim searches over a single pooled connection
// resource that is created on first use and shared by all callers.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger

	mu        sync.Mutex
	httpc     *http.Client
	transport *http.Transport
	closed    bool
}

// NewClient creates a new Nominatim client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = NominatimBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		limiter:   NewLimiter(opts.RequestsPerSecond, opts.Burst),
		logger:    opts.Logger.With("service", "nominatim"),
	}
}

// httpClient returns the shared HTTP client, creating it on first use.
func (c *Client) httpClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.httpc == nil {
		c.httpc, c.transport = newHTTPClient(c.timeout)
		c.logger.Debug("created HTTP client", "timeout", c.httpc.Timeout)
	}
	return c.httpc, nil
}

// Close releases pooled connections. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.transport != nil {
		c.transport.CloseIdleConnections()
		c.logger.Debug("released HTTP connections")
	}
	return nil
}

// SearchURL builds the /search URL for the given parameters. The query text
// is percent-encoded with spaces as %20.
func (c *Client) SearchURL(params SearchParams) string {
	q := strings.ReplaceAll(url.QueryEscape(params.Query), "+", "%20")
	return fmt.Sprintf("%s/search?format=json&q=%s&limit=%d&addressdetails=1",
		c.baseURL, q, params.Limit)
}

// Search issues exactly one GET to the Nominatim search endpoint. It does
// not retry. A non-2xx status yields *HTTPError; an undecodable body yields
// an error wrapping ErrMalformedResponse; anything else is a transport error.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Place, error) {
	client, err := c.httpClient()
	if err != nil {
		return nil, err
	}

	if err := waitForRateLimit(ctx, c.limiter, c.logger); err != nil {
		return nil, fmt.Errorf("waiting for rate limit: %w", err)
	}

	reqURL := c.SearchURL(params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Error("failed to execute request", "error", err)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("search completed",
		"status", resp.StatusCode,
		"limit", params.Limit,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("geocoding service returned error", "status", resp.StatusCode)
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Reason:     statusReason(resp),
		}
	}

	var places []Place
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&places); err != nil {
		c.logger.Error("failed to decode response", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return places, nil
}

// statusReason extracts the reason phrase from the status line, falling
// back to the standard text for the code.
func statusReason(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
