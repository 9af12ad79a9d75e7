package patreon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"patreonscraper/pkg/config"
	"patreonscraper/pkg/errors"
	"patreonscraper/pkg/logger"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Options configures a Client
type Options struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds every API call and the wait for a download's response
	// headers. Download bodies stream without a deadline.
	Timeout time.Duration
	// MaxPages bounds the posts pages fetched per campaign; 0 means unlimited
	MaxPages int
	Logger   logger.Logger
}

// Client is an authenticated Patreon session. Cookies set by the login call are
// kept in its jar and sent with every later request.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	timeout    time.Duration
	maxPages   int
	logger     logger.Logger
}

// NewClient creates a new Patreon session
func NewClient(opts Options) (*Client, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = opts.Timeout

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "en-US,en;q=0.9",
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  opts.Timeout,
		maxPages: opts.MaxPages,
		logger:   log,
	}, nil
}

// NewClientFromConfig creates a session from the patreon and download config sections
func NewClientFromConfig(cfg *config.Config, log logger.Logger) (*Client, error) {
	return NewClient(Options{
		BaseURL:   cfg.Patreon.BaseURL,
		UserAgent: cfg.Patreon.UserAgent,
		Timeout:   cfg.Download.Timeout,
		MaxPages:  cfg.Download.MaxPages,
		Logger:    log,
	})
}

// apiContext applies the API timeout to ctx. A zero timeout leaves ctx unbounded.
func (c *Client) apiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.Redacted(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Wrap(errors.ErrorTypeNetwork, err, fmt.Sprintf("%s %s", req.Method, req.URL.Path))
	}

	logger.LogRequest(c.logger, req.Method, req.URL.Redacted(), resp.StatusCode, float64(duration.Microseconds())/1000)
	return resp, nil
}

// get performs a GET request for an absolute URL
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeNetwork, err, "failed to create request")
	}
	return c.doRequest(req)
}

// getJSON performs a GET request against an API endpoint and decodes the body into target
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, target interface{}) error {
	ctx, cancel := c.apiContext(ctx)
	defer cancel()

	resp, err := c.get(ctx, BuildURL(c.baseURL, endpoint, params))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}
	return c.decodeBody(resp, target)
}

// decodeBody reads and decodes a JSON response body
func (c *Client) decodeBody(resp *http.Response, target interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNetwork, err, "failed to read response body")
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          resp.Request.URL.Path,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.Wrap(errors.ErrorTypeDecode, err, "failed to parse JSON")
	}
	return nil
}

// checkResponseStatus accepts only 200 OK
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	c.logger.WarnWithFields("unexpected response status", map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.Path,
	})

	message := http.StatusText(resp.StatusCode)
	if message == "" {
		message = "unexpected status code"
	}
	return errors.Status(resp.StatusCode, fmt.Sprintf("%s %s: %s", resp.Request.Method, resp.Request.URL.Path, strings.ToLower(message)))
}

// resolve turns a relative file URL into an absolute one on the client's host
func (c *Client) resolve(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNetwork, err, "invalid URL")
	}
	if u.IsAbs() {
		return rawURL, nil
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNetwork, err, "invalid base URL")
	}
	return base.ResolveReference(u).String(), nil
}
