package network

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://example.com/a/b.html", "style.css", "https://example.com/a/style.css"},
		{"https://example.com/a/b.html", "/root.css", "https://example.com/root.css"},
		{"https://example.com/a/b.html", "../up.js", "https://example.com/up.js"},
		{"https://example.com/a/b.html", "//cdn.example.org/x.css", "https://cdn.example.org/x.css"},
		{"https://example.com/a/b.html", "http://other.test/", "http://other.test/"},
		{"https://example.com/a/b.html", "", "https://example.com/a/b.html"},
		{"https://example.com/a/b.html", "data:text/css,p{}", "data:text/css,p{}"},
		{"file:///srv/site/index.html", "css/main.css", "file:///srv/site/css/main.css"},
	}
	for _, tt := range tests {
		got, err := ResolveURL(tt.base, tt.ref)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, got, tt.ref)
	}
}

func TestTargetURL(t *testing.T) {
	got, err := TargetURL("https://example.com/page")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", got)

	dir := t.TempDir()
	got, err = TargetURL(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "file://"), got)
	assert.True(t, strings.HasSuffix(got, "/index.html"), got)
}

func TestParseDataURL(t *testing.T) {
	d, err := ParseDataURL("data:text/css;charset=utf-8,p%20%7B%20color%3A%20red%20%7D")
	require.NoError(t, err)
	assert.Equal(t, "text/css", d.MediaType)
	assert.Equal(t, "utf-8", d.Charset)
	assert.Equal(t, "p { color: red }", string(d.Data))

	d, err = ParseDataURL("data:;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", d.MediaType)
	assert.True(t, d.Base64)
	assert.Equal(t, "hi", string(d.Data))

	_, err = ParseDataURL("https://example.com")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, err = ParseDataURL("data:text/plain")
	assert.Error(t, err)
}

func TestGuessContentType(t *testing.T) {
	for in, want := range map[string]string{
		"https://example.com/index.HTML":  "text/html",
		"file:///site/main.css?v=2":       "text/css",
		"/static/app.mjs":                 "text/javascript",
		"https://example.com/":            "application/octet-stream",
		"https://example.com/archive.tgz": "application/octet-stream",
	} {
		assert.Equal(t, want, GuessContentType(in), in)
	}
}
