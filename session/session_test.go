package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/chrisuehlinger/domdebug/config"
	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/inspector"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const indexHTML = `<!DOCTYPE html>
<html><head>
<title>cards</title>
<link rel="stylesheet" href="site.css">
<link rel="stylesheet" href="missing.css">
</head>
<body style="margin: 0">
<div id="main" class="card">Hello</div>
<script>
document.getElementById("main").classList.add("featured");
var settled = false;
setTimeout(function () { settled = true; }, 5);
</script>
</body></html>`

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexHTML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.css"),
		[]byte(".card { width: 200px; height: 50px; padding: 4px }"), 0o644))
	return filepath.Join(dir, "index.html")
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Script.Timeout = 2 * time.Second
	return cfg
}

func TestOpenRunsScriptsAndMountsInspector(t *testing.T) {
	s, err := Open(context.Background(), writeSite(t), Options{Config: testConfig()})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	assert.Len(t, s.ID, 36)
	assert.Equal(t, dom.ReadyStateComplete, s.Document.ReadyState())
	assert.Equal(t, "cards", s.Document.Title())
	assert.True(t, s.Inspector.Mounted())
	assert.NotNil(t, s.Document.QuerySelector(".dom-debug-toggle"))

	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0].Error(), "missing.css")

	v, err := s.Scripts.Runtime().Execute("typeof domDebug")
	require.NoError(t, err)
	assert.Equal(t, "object", v.String())

	require.NoError(t, s.Settle(context.Background()))
	v, err = s.Scripts.Runtime().Execute("String(settled)")
	require.NoError(t, err)
	assert.Equal(t, "true", v.String())
}

func TestOpenThenInspect(t *testing.T) {
	clip := &inspector.MemoryClipboard{}
	s, err := Open(context.Background(), writeSite(t), Options{Config: testConfig(), Clipboard: clip})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	main := s.Document.GetElementById("main")
	require.NoError(t, s.Inspector.Activate())
	require.NoError(t, s.Inspector.Select(main))
	require.NoError(t, s.Inspector.Apply("color", "red"))
	s.Inspector.Copy(context.Background())

	snap := s.Inspector.Snapshot()
	assert.Equal(t, "div#main.card.featured", snap.Header)
	assert.Equal(t, 208.0, snap.Selection.Width)
	assert.Equal(t, "color: red", snap.Applied)
	assert.Equal(t, "color: red", clip.Text())
}

func TestOpenWithoutScripts(t *testing.T) {
	cfg := testConfig()
	cfg.Script.Enabled = false
	s, err := Open(context.Background(), writeSite(t), Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	assert.Nil(t, s.Scripts)
	assert.False(t, s.Document.GetElementById("main").ClassList().Contains("featured"))
	assert.True(t, s.Inspector.Mounted())
	assert.NoError(t, s.Settle(context.Background()))
	s.Pump()
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(context.Background(), "index.html", Options{})
	assert.Error(t, err)

	_, err = Open(context.Background(), filepath.Join(t.TempDir(), "nope.html"), Options{Config: testConfig()})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
