package network

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
)

// DocumentLoader loads a page together with its linked stylesheets.
type DocumentLoader struct {
	loader      *Loader
	concurrency int
	logger      *zap.Logger
}

// NewDocumentLoader creates a document loader that fetches at most
// concurrency stylesheets at a time.
func NewDocumentLoader(loader *Loader, concurrency int, logger *zap.Logger) *DocumentLoader {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentLoader{
		loader:      loader,
		concurrency: concurrency,
		logger:      logger.Named("document"),
	}
}

// LoadedDocument is a parsed page whose linked stylesheets have been
// registered with Resolver.
type LoadedDocument struct {
	Document    *dom.Document
	URL         string
	Resolver    *css.StyleResolver
	Stylesheets []*LoadedStylesheet
	// Errors holds stylesheet failures. They do not fail the load.
	Errors []error
}

// LoadedStylesheet is one <link rel="stylesheet">.
type LoadedStylesheet struct {
	Href       string
	URL        string
	Stylesheet *css.Stylesheet
	Error      error
}

// Load fetches target (a URL or a local path), parses it and loads its
// stylesheets. The document is left in the loading state so scripts can
// run before the caller calls FinishParsing.
func (dl *DocumentLoader) Load(ctx context.Context, target string) (*LoadedDocument, error) {
	pageURL, err := TargetURL(target)
	if err != nil {
		return nil, err
	}

	res, err := dl.loader.LoadDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pageURL, err)
	}
	if res.ContentType != "" && res.ContentType != "application/octet-stream" && !IsHTMLContentType(res.ContentType) {
		dl.logger.Warn("Document is not HTML", zap.String("url", res.URL), zap.String("content_type", res.ContentType))
	}

	ct := "text/html"
	if res.Charset != "" {
		ct += "; charset=" + res.Charset
	}
	reader, err := charset.NewReader(bytes.NewReader(res.Content), ct)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", res.URL, err)
	}
	doc, err := dom.ParseHTMLLoading(reader)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", res.URL, err)
	}
	doc.SetURL(res.URL)

	loaded := &LoadedDocument{
		Document: doc,
		URL:      res.URL,
		Resolver: css.NewStyleResolver(),
	}
	if err := dl.loadStylesheets(ctx, loaded); err != nil {
		return nil, err
	}
	dl.logger.Info("Document loaded",
		zap.String("url", loaded.URL),
		zap.Int("stylesheets", len(loaded.Stylesheets)),
		zap.Int("errors", len(loaded.Errors)))
	return loaded, nil
}

// loadStylesheets fetches every linked stylesheet concurrently. Only a
// cancelled context fails the whole load.
func (dl *DocumentLoader) loadStylesheets(ctx context.Context, loaded *LoadedDocument) error {
	var links []*LoadedStylesheet
	seen := make(map[string]bool)
	for _, el := range loaded.Document.QuerySelectorAll("link") {
		href := el.GetAttribute("href")
		if !strings.EqualFold(el.GetAttribute("rel"), "stylesheet") || href == "" || seen[href] {
			continue
		}
		seen[href] = true
		links = append(links, &LoadedStylesheet{Href: href})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dl.concurrency)
	for _, link := range links {
		g.Go(func() error {
			abs, err := ResolveURL(loaded.URL, link.Href)
			if err != nil {
				link.Error = err
				return nil
			}
			link.URL = abs

			res, err := dl.loader.LoadStylesheet(gctx, abs)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				link.Error = fmt.Errorf("stylesheet %s: %w", link.Href, err)
				return nil
			}
			text, err := res.Text()
			if err != nil {
				link.Error = err
				return nil
			}
			link.Stylesheet = css.ParseStylesheet(text)
			loaded.Resolver.SetLinkedStylesheet(link.Href, link.Stylesheet)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	loaded.Stylesheets = links
	for _, link := range links {
		if link.Error != nil {
			dl.logger.Warn("Stylesheet failed", zap.String("href", link.Href), zap.Error(link.Error))
			loaded.Errors = append(loaded.Errors, link.Error)
		}
	}
	return nil
}

// ScriptFetcher returns a function that loads script sources relative to
// base, suitable for js.ScriptExecutor.SetScriptFetcher.
func (dl *DocumentLoader) ScriptFetcher(base string) func(ctx context.Context, src string) (string, error) {
	return func(ctx context.Context, src string) (string, error) {
		abs, err := ResolveURL(base, src)
		if err != nil {
			return "", err
		}
		res, err := dl.loader.LoadScript(ctx, abs)
		if err != nil {
			return "", err
		}
		return res.Text()
	}
}
