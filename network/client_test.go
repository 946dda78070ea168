package network

import (
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrisuehlinger/domdebug/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newTestServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(WithTransport(srv.Client().Transport))
	require.NoError(t, err)
	return srv, c
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, c.timeout)
	assert.Equal(t, 10, c.maxRedirects)
	assert.Equal(t, "domdebug/1.0", c.userAgent)
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig().Network
	cfg.UserAgent = "inspector-test/2.0"
	cfg.Timeout = 3 * time.Second

	c, err := NewClientFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.http.Timeout)
	assert.Equal(t, "inspector-test/2.0", c.userAgent)
}

func TestClientGet(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "qa/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello, World!"))
	})
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := NewClient(WithTransport(srv.Client().Transport), WithUserAgent("qa/1.0"), WithLogger(zap.New(core)))
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), srv.URL+"/hello")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello, World!", string(resp.Body))
	assert.Equal(t, "/hello", resp.URL.Path)

	entries := logs.FilterMessage("Fetched").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "network", entries[0].LoggerName)
}

func TestClientDecodesContentEncoding(t *testing.T) {
	const css = "body { color: red }"
	encoders := map[string]func(io.Writer) io.WriteCloser{
		"gzip":    func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"br":      func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) },
		"deflate": func(w io.Writer) io.WriteCloser { return zlib.NewWriter(w) },
		"raw-deflate": func(w io.Writer) io.WriteCloser {
			fw, _ := flate.NewWriter(w, flate.DefaultCompression)
			return fw
		},
	}
	for name, newWriter := range encoders {
		t.Run(name, func(t *testing.T) {
			srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "br, gzip, deflate", r.Header.Get("Accept-Encoding"))
				enc := name
				if name == "raw-deflate" {
					enc = "deflate"
				}
				w.Header().Set("Content-Encoding", enc)
				zw := newWriter(w)
				_, _ = zw.Write([]byte(css))
				_ = zw.Close()
			})

			resp, err := c.Get(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, css, string(resp.Body))
		})
	}
}

func TestClientCookies(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
	})

	_, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cookies := c.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "abc", cookies[0].Value)
}

func TestClientRedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(WithTransport(srv.Client().Transport), WithMaxRedirects(2))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 2 redirects")
}

func TestClientRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(WithTransport(srv.Client().Transport), WithRateLimit(0.5))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	// The next token is two seconds away.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.EqualValues(t, 1, hits.Load())
}

func TestClientCancelled(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in, mediaType, charset string
	}{
		{"", "application/octet-stream", ""},
		{"text/html", "text/html", ""},
		{"Text/HTML; Charset=\"UTF-8\"", "text/html", "utf-8"},
		{"text/css;charset=iso-8859-1; foo=bar", "text/css", "iso-8859-1"},
	}
	for _, tt := range tests {
		mt, cs := ParseContentType(tt.in)
		assert.Equal(t, tt.mediaType, mt, tt.in)
		assert.Equal(t, tt.charset, cs, tt.in)
	}
	assert.True(t, IsHTMLContentType("application/xhtml+xml"))
	assert.False(t, IsHTMLContentType("text/css"))
	assert.True(t, IsCSSContentType("text/css; charset=utf-8"))
}
