// Package network loads pages and their stylesheets and scripts over HTTP,
// from file:// URLs and from data: URLs.
package network

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/chrisuehlinger/domdebug/config"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 32 << 20

// Client fetches pages and subresources. Cookies set by a page are sent
// with its stylesheet and script requests.
type Client struct {
	http         *http.Client
	jar          http.CookieJar
	timeout      time.Duration
	maxRedirects int
	userAgent    string
	transport    http.RoundTripper
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds each request including redirects and body reads.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRedirects sets how many redirects a request may follow.
func WithMaxRedirects(n int) ClientOption {
	return func(c *Client) { c.maxRedirects = n }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithTransport replaces the default transport, e.g. with an
// httptest server's.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) { c.transport = rt }
}

// WithRateLimit allows perSecond requests per second with bursts of one.
// Zero or less disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient returns a client with a 30s timeout, at most 10 redirects and
// a cookie jar.
func NewClient(opts ...ClientOption) (*Client, error) {
	// publicsuffix stops a page from setting cookies on a whole TLD.
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &Client{
		jar:          jar,
		timeout:      30 * time.Second,
		maxRedirects: 10,
		userAgent:    "domdebug/1.0",
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("network")

	if c.transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.MaxIdleConnsPerHost = 10
		c.transport = t
	}

	c.http = &http.Client{
		Transport: c.transport,
		Jar:       jar,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) < c.maxRedirects {
				return nil
			}
			return fmt.Errorf("stopped after %d redirects", c.maxRedirects)
		},
	}
	return c, nil
}

// NewClientFromConfig creates a client with the configured timeout and
// user agent.
func NewClientFromConfig(cfg config.NetworkConfig, logger *zap.Logger) (*Client, error) {
	return NewClient(
		WithTimeout(cfg.Timeout),
		WithUserAgent(cfg.UserAgent),
		WithRateLimit(cfg.RateLimit),
		WithLogger(logger),
	)
}

// Response is a fully read response. Body is already decompressed.
type Response struct {
	StatusCode  int
	Status      string
	Headers     http.Header
	Body        []byte
	ContentType string
	URL         *url.URL // final URL after redirects
}

// Get fetches urlStr. Any status is returned as a Response; only transport
// failures are errors.
func (c *Client) Get(ctx context.Context, urlStr string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit %s: %w", urlStr, err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", urlStr, err)
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", urlStr, err)
	}

	c.logger.Debug("Fetched",
		zap.String("url", urlStr),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	return &Response{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Headers:     resp.Header,
		Body:        data,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         resp.Request.URL,
	}, nil
}

// Cookies returns what the jar would send to u.
func (c *Client) Cookies(u *url.URL) []*http.Cookie {
	return c.jar.Cookies(u)
}

// ParseContentType splits a Content-Type header into a lowercase media
// type and charset. A missing header means application/octet-stream.
func ParseContentType(contentType string) (mediaType, charset string) {
	if strings.TrimSpace(contentType) == "" {
		return "application/octet-stream", ""
	}
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Servers send malformed parameters often enough; keep the type.
		mt, _, _ = strings.Cut(contentType, ";")
		return strings.ToLower(strings.TrimSpace(mt)), ""
	}
	return mt, strings.ToLower(params["charset"])
}

func IsHTMLContentType(contentType string) bool {
	switch mt, _ := ParseContentType(contentType); mt {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

func IsCSSContentType(contentType string) bool {
	mt, _ := ParseContentType(contentType)
	return mt == "text/css"
}
