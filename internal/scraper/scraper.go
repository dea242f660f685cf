// Package scraper defines the page handler interface and the shared
// environment handlers run in. Site packages register their handlers in
// init(); dispatch picks the first handler whose Match accepts the URL.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"snapmd/internal/browser"
	"snapmd/internal/config"
	"snapmd/internal/fetch"
	"snapmd/internal/inline"
	"snapmd/internal/markdown"
	"snapmd/internal/output"
	"snapmd/internal/progress"
	"snapmd/internal/record"
	"snapmd/internal/resolver"
)

// ErrUnsupportedPage is reported when no registered handler matches the
// target URL.
var ErrUnsupportedPage = errors.New("no handler for this page")

// Handler processes one kind of page on one site.
type Handler interface {
	Name() string
	Match(u *url.URL) bool
	Run(ctx context.Context, u *url.URL, env *Env) error
}

// Env carries the shared wiring every handler needs.
type Env struct {
	Fetch     *fetch.Client
	Resolver  *resolver.Resolver
	Inliner   *inline.Inliner
	Converter *markdown.Converter
	Progress  *progress.Reporter
	Config    *config.Config
	Log       zerolog.Logger

	// Browser is opened lazily by handlers that need page rendering.
	Browser  *browser.Browser
	ProxyURL string

	DryRun bool
}

// SaveOne runs the full single-page pipeline: resolve the record, inline
// its images, convert to Markdown, and write the document. In dry-run
// mode the file write is skipped and the derived filename is returned.
func (e *Env) SaveOne(ctx context.Context, pageURL string) (string, error) {
	rec, err := e.Resolver.Resolve(ctx, pageURL)
	if err != nil {
		return "", err
	}
	e.Inliner.Inline(ctx, rec.Content, pageURL)
	body := e.Converter.Convert(rec.Content)
	doc := markdown.Document(rec, body)

	if e.DryRun {
		name := output.Filename(rec)
		fmt.Println(doc)
		e.Log.Info().Str("file", name).Msg("dry run, skipping write")
		return name, nil
	}
	return output.Save(e.Config.OutputDir, rec, doc)
}

// Record exposes the resolver to handlers that need the record without
// saving, such as list pages probing entries.
func (e *Env) Record(ctx context.Context, pageURL string) (*record.ContentRecord, error) {
	return e.Resolver.Resolve(ctx, pageURL)
}

// Page navigates a browser page to rawurl, launching the browser on
// first use, and copies the session cookies into the fetch client so the
// per-entry HTTP requests stay credentialed. The caller closes the page.
func (e *Env) Page(rawurl string) (*rod.Page, error) {
	if e.Browser == nil {
		b, err := browser.New(browser.Options{ProxyURL: e.ProxyURL})
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		e.Browser = b
	}
	page, err := e.Browser.NewPage()
	if err != nil {
		return nil, err
	}
	if err := page.Navigate(rawurl); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to open %s: %w", rawurl, err)
	}
	if err := page.WaitLoad(); err != nil {
		page.Close()
		return nil, err
	}
	if err := e.Browser.ExportCookies(e.Fetch); err != nil {
		e.Log.Warn().Err(err).Msg("cookie export failed")
	}
	return page, nil
}

// Close releases the lazily launched browser, if any.
func (e *Env) Close() error {
	if e.Browser != nil {
		return e.Browser.Close()
	}
	return nil
}
