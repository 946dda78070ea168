package network

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotDataURL is returned by ParseDataURL for anything without a data: scheme.
var ErrNotDataURL = errors.New("not a data URL")

// hasScheme reports whether s starts with scheme followed by a colon,
// ignoring case.
func hasScheme(s, scheme string) bool {
	return len(s) > len(scheme) && s[len(scheme)] == ':' && strings.EqualFold(s[:len(scheme)], scheme)
}

// ResolveURL resolves ref against base the way a document resolves href
// and src attributes. data: and javascript: references are opaque.
func ResolveURL(base, ref string) (string, error) {
	switch {
	case ref == "":
		return base, nil
	case hasScheme(ref, "data"), hasScheme(ref, "javascript"):
		return ref, nil
	}

	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", ref, err)
	}
	if r.IsAbs() {
		return r.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	return b.ResolveReference(r).String(), nil
}

// TargetURL turns a command-line target into a URL. Anything without a
// scheme, or with a drive letter, is a local path.
func TargetURL(target string) (string, error) {
	if u, err := url.Parse(target); err == nil && u.IsAbs() && !isDrivePath(target) {
		return target, nil
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", target, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// isDrivePath matches C:\ and C:/ so they are not read as a "c" scheme.
func isDrivePath(s string) bool {
	return len(s) > 2 && s[1] == ':' && (s[2] == '\\' || s[2] == '/')
}

func IsDataURL(s string) bool { return hasScheme(s, "data") }

// DataURL is a decoded data: URL.
type DataURL struct {
	MediaType string
	Charset   string
	Base64    bool
	Data      []byte
}

// ParseDataURL decodes data:[<mediatype>][;charset=x][;base64],<data>.
// The media type defaults to text/plain and the charset to US-ASCII.
func ParseDataURL(s string) (*DataURL, error) {
	if !IsDataURL(s) {
		return nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return nil, errors.New("data URL has no comma")
	}

	d := &DataURL{MediaType: "text/plain", Charset: "US-ASCII"}
	params := strings.Split(header, ";")
	if mt := strings.TrimSpace(params[0]); mt != "" {
		d.MediaType = strings.ToLower(mt)
	}
	for _, p := range params[1:] {
		p = strings.TrimSpace(p)
		if strings.EqualFold(p, "base64") {
			d.Base64 = true
			continue
		}
		if k, v, ok := strings.Cut(p, "="); ok && strings.EqualFold(k, "charset") {
			d.Charset = v
		}
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL payload: %w", err)
	}
	if !d.Base64 {
		d.Data = []byte(text)
		return d, nil
	}
	d.Data, err = base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("data URL base64: %w", err)
	}
	return d, nil
}

var extensionTypes = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".xhtml": "application/xhtml+xml",
	".css":   "text/css",
	".js":    "text/javascript",
	".mjs":   "text/javascript",
	".json":  "application/json",
	".svg":   "image/svg+xml",
	".png":   "image/png",
}

// GuessContentType maps the extension of a URL or path to a media type.
// Unknown extensions are application/octet-stream.
func GuessContentType(s string) string {
	if u, err := url.Parse(s); err == nil {
		s = u.Path
	}
	if ct, ok := extensionTypes[strings.ToLower(path.Ext(s))]; ok {
		return ct
	}
	return "application/octet-stream"
}
