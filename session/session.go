// Package session opens a page the way a browser tab does: fetch and
// parse it, load its stylesheets, attach the inspector, run its scripts
// and finish loading.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/config"
	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/inspector"
	"github.com/chrisuehlinger/domdebug/js"
	"github.com/chrisuehlinger/domdebug/network"
	"github.com/chrisuehlinger/domdebug/page"
)

// Options configure Open. Config is required.
type Options struct {
	Config    *config.Config
	Logger    *zap.Logger
	Clock     clockwork.Clock
	Clipboard inspector.Clipboard
	// Client replaces the HTTP client built from Config.Network.
	Client *network.Client
}

// Session is one open page with its inspector.
type Session struct {
	// ID tags every log entry of this session.
	ID        string
	URL       string
	Document  *dom.Document
	Page      *page.Page
	Inspector *inspector.Controller
	// Scripts is nil when scripting is disabled.
	Scripts *js.ScriptExecutor
	// Warnings are stylesheet and script failures. None of them stop
	// the page from opening.
	Warnings []error

	cfg    *config.Config
	logger *zap.Logger
}

// Open loads target, a URL or a local file path.
func Open(ctx context.Context, target string, opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.New("session: missing config")
	}
	cfg := opts.Config
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	id := uuid.New().String()
	opts.Logger = opts.Logger.With(zap.String("session", id))
	logger := opts.Logger.Named("session")

	client := opts.Client
	if client == nil {
		var err error
		client, err = network.NewClientFromConfig(cfg.Network, opts.Logger)
		if err != nil {
			return nil, err
		}
	}
	loader := network.NewLoader(client,
		network.WithCache(network.NewCache(0, opts.Clock)),
		network.WithLoaderLogger(opts.Logger))
	docs := network.NewDocumentLoader(loader, cfg.Network.StylesheetConcurrency, opts.Logger)

	loaded, err := docs.Load(ctx, target)
	if err != nil {
		return nil, err
	}
	doc := loaded.Document
	doc.SetViewportSize(cfg.Viewport.Width, cfg.Viewport.Height)

	s := &Session{
		ID:       id,
		URL:      loaded.URL,
		Document: doc,
		Page:     page.New(doc, loaded.Resolver, opts.Logger),
		Warnings: loaded.Errors,
		cfg:      cfg,
		logger:   logger,
	}

	inspectorOpts := inspector.Options{
		Host:           s.Page,
		Clipboard:      opts.Clipboard,
		Clock:          opts.Clock,
		Logger:         opts.Logger,
		Prefix:         cfg.Inspector.Prefix,
		Properties:     cfg.Inspector.Properties,
		CopyResetDelay: cfg.Inspector.CopyResetDelay,
	}
	// The document is still loading, so the inspector mounts when
	// FinishParsing fires DOMContentLoaded.
	s.Inspector, err = inspector.Attach(doc, inspectorOpts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", loaded.URL, err)
	}

	if cfg.Script.Enabled {
		rt := js.NewRuntime(js.Options{Logger: opts.Logger, Clock: opts.Clock, UserAgent: cfg.Network.UserAgent})
		s.Scripts = js.NewScriptExecutor(rt, doc, s.Page)
		s.Scripts.SetScriptFetcher(docs.ScriptFetcher(loaded.URL))
		s.Scripts.InstallInspector(s.Inspector)
		s.Scripts.ExposeInstaller(func() (*inspector.Controller, error) {
			return inspector.Attach(doc, inspectorOpts)
		})
		for _, err := range s.Scripts.ExecuteScripts(ctx) {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.Warnings = append(s.Warnings, err)
		}
	}

	doc.FinishParsing()
	if s.Scripts != nil {
		s.Scripts.DispatchLoadEvent()
	}
	if !s.Inspector.Mounted() {
		return nil, fmt.Errorf("open %s: %w", loaded.URL, inspector.ErrNoBody)
	}

	logger.Info("Page opened",
		zap.String("url", s.URL),
		zap.String("title", doc.Title()),
		zap.Int("warnings", len(s.Warnings)))
	return s, nil
}

// Settle runs page timers until none are left, ctx is done or the
// configured script timeout passes. A timeout is not an error.
func (s *Session) Settle(ctx context.Context) error {
	if s.Scripts == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Script.Timeout)
	defer cancel()
	err := s.Scripts.RunEventLoop(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Debug("Scripts still busy after timeout", zap.Duration("timeout", s.cfg.Script.Timeout))
		return nil
	}
	return err
}

// Pump runs the timers that are due without blocking. It goes through
// the inspector so it never overlaps inspector events.
func (s *Session) Pump() {
	if s.Scripts == nil {
		return
	}
	s.Inspector.Do(func() { s.Scripts.Runtime().RunEventLoop() })
}

// Close drops pending script work.
func (s *Session) Close() {
	if s.Scripts != nil {
		s.Scripts.Cleanup()
	}
}
