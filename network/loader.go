package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ResourceType is what a resource was requested as. It is carried through
// to logs and to the Resource.
type ResourceType int

const (
	ResourceTypeUnknown ResourceType = iota
	ResourceTypeDocument
	ResourceTypeStylesheet
	ResourceTypeScript
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeDocument:
		return "document"
	case ResourceTypeStylesheet:
		return "stylesheet"
	case ResourceTypeScript:
		return "script"
	default:
		return "unknown"
	}
}

// ErrUnsupportedScheme is returned for URLs the loader cannot fetch.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// StatusError reports an HTTP response outside the 2xx and 3xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.URL, e.StatusCode)
}

// Resource is a loaded page, stylesheet or script.
type Resource struct {
	URL         string
	Type        ResourceType
	Content     []byte
	ContentType string
	Charset     string
	StatusCode  int
	Cached      bool
}

// Text returns the content decoded to UTF-8 using the declared charset,
// or sniffing when none was declared.
func (r *Resource) Text() (string, error) {
	ct := r.ContentType
	if r.Charset != "" {
		ct += "; charset=" + r.Charset
	}
	reader, err := charset.NewReader(bytes.NewReader(r.Content), ct)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", r.URL, err)
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", r.URL, err)
	}
	return string(b), nil
}

type LoaderOption func(*Loader)

// WithCache shares a cache between loaders.
func WithCache(cache *Cache) LoaderOption { return func(l *Loader) { l.cache = cache } }

func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// Loader fetches resources from http(s), file and data URLs.
type Loader struct {
	client *Client
	cache  *Cache
	logger *zap.Logger
}

// NewLoader fetches http(s) URLs through client. Without WithCache it gets
// a private cache on the real clock.
func NewLoader(client *Client, opts ...LoaderOption) *Loader {
	l := &Loader{client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = NewCache(0, nil)
	}
	l.logger = l.logger.Named("loader")
	return l
}

// Load fetches an absolute URL.
func (l *Loader) Load(ctx context.Context, urlStr string, typ ResourceType) (*Resource, error) {
	if IsDataURL(urlStr) {
		return l.loadDataURL(urlStr, typ)
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", urlStr, err)
	}

	switch u.Scheme {
	case "file":
		return l.loadFile(u, typ)
	case "http", "https":
		if res, ok := l.cache.Get(urlStr); ok {
			l.logger.Debug("Cache hit", zap.String("url", urlStr), zap.Stringer("type", typ))
			hit := *res
			hit.Type = typ
			hit.Cached = true
			return &hit, nil
		}
		return l.loadHTTP(ctx, urlStr, typ)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (l *Loader) loadDataURL(urlStr string, typ ResourceType) (*Resource, error) {
	data, err := ParseDataURL(urlStr)
	if err != nil {
		return nil, err
	}
	return &Resource{
		URL:         urlStr,
		Type:        typ,
		Content:     data.Data,
		ContentType: data.MediaType,
		Charset:     strings.ToLower(data.Charset),
		StatusCode:  200,
	}, nil
}

func (l *Loader) loadFile(u *url.URL, typ ResourceType) (*Resource, error) {
	content, err := os.ReadFile(filepath.FromSlash(u.Path))
	if err != nil {
		return nil, err
	}
	return &Resource{
		URL:         u.String(),
		Type:        typ,
		Content:     content,
		ContentType: GuessContentType(u.Path),
		StatusCode:  200,
	}, nil
}

func (l *Loader) loadHTTP(ctx context.Context, urlStr string, typ ResourceType) (*Resource, error) {
	if l.client == nil {
		return nil, fmt.Errorf("%w: no HTTP client for %s", ErrUnsupportedScheme, urlStr)
	}
	resp, err := l.client.Get(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &StatusError{URL: urlStr, StatusCode: resp.StatusCode}
	}

	mediaType, cs := ParseContentType(resp.ContentType)
	if resp.ContentType == "" {
		mediaType = GuessContentType(urlStr)
	}
	res := &Resource{
		URL:         resp.URL.String(),
		Type:        typ,
		Content:     resp.Body,
		ContentType: mediaType,
		Charset:     cs,
		StatusCode:  resp.StatusCode,
	}
	l.cache.Set(urlStr, res, resp.Headers)
	return res, nil
}

func (l *Loader) LoadDocument(ctx context.Context, u string) (*Resource, error) {
	return l.Load(ctx, u, ResourceTypeDocument)
}

func (l *Loader) LoadStylesheet(ctx context.Context, u string) (*Resource, error) {
	return l.Load(ctx, u, ResourceTypeStylesheet)
}

func (l *Loader) LoadScript(ctx context.Context, u string) (*Resource, error) {
	return l.Load(ctx, u, ResourceTypeScript)
}

func (l *Loader) ClearCache() { l.cache.Clear() }
