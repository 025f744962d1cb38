// Package codacy is a client for the parts of the Codacy REST API v3 used to
// manage coding standards.
package codacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JNZader/eslintsync/internal/logger"
	"github.com/JNZader/eslintsync/internal/metrics"
)

// Common HTTP constants
const (
	DefaultBaseURL  = "https://app.codacy.com/api/v3"
	ContentTypeJSON = "application/json"
	TokenHeader     = "api-token"
)

// Common error format strings (SonarQube S1192)
const (
	errMarshalRequest = "marshal request: %w"
	errCreateRequest  = "create request: %w"
)

// Config holds the connection settings of a Client.
type Config struct {
	BaseURL      string
	APIToken     string
	Provider     string
	Organization string
	Timeout      time.Duration
	RateLimitRPS int
}

// Client talks to the Codacy API on behalf of one organization.
type Client struct {
	baseURL      string
	token        string
	provider     string
	organization string
	http         *http.Client
	retry        RetryConfig
	limiter      *RateLimiter
	log          *logger.Logger
	metrics      *metrics.Collector
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryConfig replaces the retry configuration.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics sets the collector receiving request metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for the given organization.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("codacy API token required")
	}
	switch cfg.Provider {
	case ProviderGitHub, ProviderGitLab, ProviderBitbucket:
	default:
		return nil, fmt.Errorf("unknown git provider %q (want gh, gl or bb)", cfg.Provider)
	}
	if cfg.Organization == "" {
		return nil, fmt.Errorf("organization required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        cfg.APIToken,
		provider:     cfg.Provider,
		organization: cfg.Organization,
		http:         &http.Client{Timeout: timeout},
		retry:        DefaultRetryConfig(),
		limiter:      NewRateLimiter(cfg.RateLimitRPS),
		log:          logger.Nop(),
		metrics:      metrics.NewCollector(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log.RegisterSecret(c.token)
	return c, nil
}

func (c *Client) standardPath(standardID int64) string {
	return fmt.Sprintf("/organizations/%s/%s/coding-standards/%d",
		url.PathEscape(c.provider), url.PathEscape(c.organization), standardID)
}

// CreateCodingStandard creates a new draft coding standard.
func (c *Client) CreateCodingStandard(ctx context.Context, name string, languages []string) (*CodingStandard, error) {
	path := fmt.Sprintf("/organizations/%s/%s/coding-standards",
		url.PathEscape(c.provider), url.PathEscape(c.organization))

	var resp createStandardResponse
	body := createStandardRequest{Name: name, Languages: languages}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("create coding standard %q: %w", name, err)
	}
	if resp.Data.ID == 0 {
		return nil, fmt.Errorf("create coding standard %q: response carries no id", name)
	}
	if resp.Data.Name == "" {
		resp.Data.Name = name
	}
	return &resp.Data, nil
}

// ListTools returns the tools of a coding standard.
func (c *Client) ListTools(ctx context.Context, standardID int64) ([]Tool, error) {
	var resp listToolsResponse
	if err := c.do(ctx, http.MethodGet, c.standardPath(standardID)+"/tools", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("list tools of standard %d: %w", standardID, err)
	}
	return resp.Data, nil
}

// ListPatterns drains the paginated pattern catalog of a tool.
func (c *Client) ListPatterns(ctx context.Context, standardID int64, toolUUID string, pageSize int) ([]CatalogPattern, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	path := c.standardPath(standardID) + "/tools/" + url.PathEscape(toolUUID) + "/patterns"

	var all []CatalogPattern
	seen := make(map[string]bool)
	cursor := ""
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var resp listPatternsResponse
		if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
			return nil, fmt.Errorf("list patterns of tool %s (page %d): %w", toolUUID, page, err)
		}
		all = append(all, resp.Data...)
		c.log.Debug("fetched pattern page %d with %d patterns", page, len(resp.Data))

		if resp.Pagination == nil || resp.Pagination.Cursor == "" {
			break
		}
		cursor = resp.Pagination.Cursor
		if seen[cursor] {
			return nil, fmt.Errorf("list patterns of tool %s: %w: %q", toolUUID, ErrCursorLoop, cursor)
		}
		seen[cursor] = true
	}

	c.metrics.Gauge(metrics.MetricCatalogSize).Set(float64(len(all)))
	return all, nil
}

// UpdateTool enables or disables a tool and sets the given patterns.
func (c *Client) UpdateTool(ctx context.Context, standardID int64, toolUUID string, update ToolUpdate) error {
	update.Patterns = normalizeUpdates(update.Patterns)
	path := c.standardPath(standardID) + "/tools/" + url.PathEscape(toolUUID)
	if err := c.do(ctx, http.MethodPatch, path, nil, update, nil); err != nil {
		return fmt.Errorf("update tool %s: %w", toolUUID, err)
	}
	return nil
}

// DisableTool disables a tool and clears its pattern list.
func (c *Client) DisableTool(ctx context.Context, standardID int64, toolUUID string) error {
	return c.UpdateTool(ctx, standardID, toolUUID, ToolUpdate{Enabled: false})
}

// PromoteCodingStandard makes the standard the organization default.
func (c *Client) PromoteCodingStandard(ctx context.Context, standardID int64) error {
	if err := c.do(ctx, http.MethodPost, c.standardPath(standardID)+"/promote", nil, nil, nil); err != nil {
		return fmt.Errorf("promote coding standard %d: %w", standardID, err)
	}
	return nil
}

// normalizeUpdates makes sure empty collections are sent as [] and not null.
func normalizeUpdates(patterns []PatternUpdate) []PatternUpdate {
	if patterns == nil {
		return []PatternUpdate{}
	}
	out := make([]PatternUpdate, len(patterns))
	for i, p := range patterns {
		if p.Parameters == nil {
			p.Parameters = []Parameter{}
		}
		out[i] = p
	}
	return out
}

// do sends a request with retries and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf(errMarshalRequest, err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	log := c.log.WithFields(map[string]interface{}{"method": method, "url": target})
	notify := func(err error, wait time.Duration) {
		c.metrics.Counter(metrics.MetricRetries).Inc()
		log.Warn("request failed, retrying in %s: %v", wait, err)
	}

	return WithRetry(ctx, c.retry, notify, func() error {
		return c.send(ctx, log, method, target, payload, out)
	})
}

func (c *Client) send(ctx context.Context, log *logger.Logger, method, target string, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf(errCreateRequest, err)
	}
	req.Header.Set(TokenHeader, c.token)
	req.Header.Set("Accept", ContentTypeJSON)
	req.Header.Set("Content-Type", ContentTypeJSON)

	c.metrics.Counter(metrics.MetricRequests).Inc()
	timer := c.metrics.Timer(metrics.MetricLatency).Start()
	resp, err := c.http.Do(req)
	elapsed := timer.Stop()
	if err != nil {
		c.metrics.Counter(metrics.MetricErrors).Inc()
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("%s in %s", resp.Status, elapsed.Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.Counter(metrics.MetricErrors).Inc()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     method,
			URL:        target,
			Body:       string(data),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{URL: target, Err: err}
	}
	return nil
}
