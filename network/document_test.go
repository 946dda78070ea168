package network

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/page"
)

const sitePage = `<!DOCTYPE html>
<html><head>
<link rel="stylesheet" href="/css/site.css">
<link rel="stylesheet" href="gone.css">
<link rel="icon" href="/favicon.ico">
<script src="/js/app.js"></script>
</head><body><div id="main" class="card">{{cafe}}</div></body></html>`

func siteHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte(strings.Replace(sitePage, "{{cafe}}", "caf\xe9", 1)))
	case "/css/site.css":
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte(".card { color: red; padding: 6px }"))
	case "/js/app.js":
		w.Header().Set("Content-Type", "text/javascript")
		_, _ = w.Write([]byte(`document.title = "ready";`))
	default:
		http.NotFound(w, r)
	}
}

func TestDocumentLoaderLoad(t *testing.T) {
	srv, c := newTestServer(t, siteHandler)
	dl := NewDocumentLoader(NewLoader(c), 2, nil)

	loaded, err := dl.Load(context.Background(), srv.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/", loaded.URL)
	assert.Equal(t, loaded.URL, loaded.Document.URL())
	assert.Equal(t, dom.ReadyStateLoading, loaded.Document.ReadyState())

	main := loaded.Document.GetElementById("main")
	require.NotNil(t, main)
	assert.Equal(t, "café", main.TextContent())

	require.Len(t, loaded.Stylesheets, 2)
	assert.NotNil(t, loaded.Stylesheets[0].Stylesheet)
	assert.Equal(t, srv.URL+"/css/site.css", loaded.Stylesheets[0].URL)
	assert.Error(t, loaded.Stylesheets[1].Error)
	require.Len(t, loaded.Errors, 1)
	assert.Contains(t, loaded.Errors[0].Error(), "gone.css")

	p := page.New(loaded.Document, loaded.Resolver, nil)
	assert.Equal(t, "rgb(255, 0, 0)", p.ComputedStyle(main, "color"))
	assert.Equal(t, "6px", p.ComputedStyle(main, "padding"))
}

func TestDocumentLoaderScriptFetcher(t *testing.T) {
	srv, c := newTestServer(t, siteHandler)
	dl := NewDocumentLoader(NewLoader(c), 0, nil)

	fetch := dl.ScriptFetcher(srv.URL + "/pages/index.html")
	src, err := fetch(context.Background(), "/js/app.js")
	require.NoError(t, err)
	assert.Equal(t, `document.title = "ready";`, src)

	_, err = fetch(context.Background(), "missing.js")
	assert.Error(t, err)
}

func TestDocumentLoaderLocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte(`<link rel="stylesheet" href="style.css"><p id="p">x</p>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("p { color: blue }"), 0o644))

	dl := NewDocumentLoader(NewLoader(nil), 4, nil)
	loaded, err := dl.Load(context.Background(), filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Empty(t, loaded.Errors)

	p := page.New(loaded.Document, loaded.Resolver, nil)
	assert.Equal(t, "rgb(0, 0, 255)", p.ComputedStyle(loaded.Document.GetElementById("p"), "color"))
}

func TestDocumentLoaderFailures(t *testing.T) {
	srv, c := newTestServer(t, siteHandler)
	dl := NewDocumentLoader(NewLoader(c), 2, nil)

	_, err := dl.Load(context.Background(), srv.URL+"/nope.html")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dl.Load(ctx, srv.URL+"/")
	assert.ErrorIs(t, err, context.Canceled)
}
