// Package resolver turns a page URL into a ContentRecord by evaluating
// an ordered list of content sources: rendered DOM extraction with
// embedded-state recovery, then the platform's content API. The order is
// fixed; the first source producing usable content wins.
package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"snapmd/internal/api"
	"snapmd/internal/blockpage"
	"snapmd/internal/fetch"
	"snapmd/internal/platform"
	"snapmd/internal/record"
	"snapmd/internal/state"
	"snapmd/internal/urlutil"
)

// ErrContentNotFound is reported when every source fails to produce
// non-empty content for a URL.
var ErrContentNotFound = errors.New("no content found by any source")

// DefaultMinContentLen is the truncation threshold: a DOM fragment with
// fewer visible runes is treated as a clipped preview.
const DefaultMinContentLen = 120

// Strategy is one content source. Implementations absorb their own
// failures and return nil instead of propagating.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, pageURL string) *record.ContentRecord
}

// Config wires a Resolver.
type Config struct {
	Fetch         *fetch.Client
	API           *api.Client
	MinContentLen int
	// Lookup maps a host to its platform config. Defaults to the static
	// platform table; tests substitute their own.
	Lookup func(host string) *platform.Platform
	Logger zerolog.Logger
}

// Resolver evaluates the source chain for single pages.
type Resolver struct {
	strategies []Strategy
	log        zerolog.Logger
}

// New builds the fixed DOM-then-API chain.
func New(cfg Config) *Resolver {
	if cfg.MinContentLen <= 0 {
		cfg.MinContentLen = DefaultMinContentLen
	}
	if cfg.Lookup == nil {
		cfg.Lookup = platform.Find
	}
	strategies := []Strategy{
		&domStrategy{fetch: cfg.Fetch, lookup: cfg.Lookup, minLen: cfg.MinContentLen, log: cfg.Logger},
	}
	if cfg.API != nil {
		strategies = append(strategies, &apiStrategy{client: cfg.API})
	}
	return &Resolver{strategies: strategies, log: cfg.Logger}
}

// Resolve returns a normalized record for pageURL, or nil with
// ErrContentNotFound when every source fails. It never panics and never
// returns any other error; sources log their own failures.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (*record.ContentRecord, error) {
	for _, s := range r.strategies {
		rec := s.Resolve(ctx, pageURL)
		if rec.HasContent() {
			rec.Normalize()
			if rec.URL == "" {
				rec.URL = pageURL
			}
			r.log.Debug().Str("source", s.Name()).Str("url", pageURL).Msg("content resolved")
			return rec, nil
		}
	}
	r.log.Warn().Str("url", pageURL).Msg("all content sources failed")
	return nil, ErrContentNotFound
}

// domStrategy extracts from the fetched document using the platform's
// selector table, recovering truncated fragments from the embedded state
// blob when the heuristics fire.
type domStrategy struct {
	fetch  *fetch.Client
	lookup func(host string) *platform.Platform
	minLen int
	log    zerolog.Logger
}

func (d *domStrategy) Name() string { return "dom" }

func (d *domStrategy) Resolve(ctx context.Context, pageURL string) *record.ContentRecord {
	base := urlutil.MustParse(pageURL)
	if base == nil {
		return nil
	}
	p := d.lookup(base.Hostname())
	if p == nil {
		d.log.Warn().Str("url", pageURL).Msg("no platform config for host")
		return nil
	}
	doc, err := d.fetch.Document(ctx, pageURL)
	if err != nil {
		d.log.Warn().Err(err).Str("url", pageURL).Msg("document fetch failed")
		return nil
	}

	// Advisory only: a soft wall often still carries the state blob.
	if raw, err := doc.Html(); err == nil {
		if cls := blockpage.Classify(raw); cls != blockpage.Clean {
			d.log.Warn().Str("url", pageURL).Stringer("classification", cls).Msg("block page detected")
		}
	}

	rec := &record.ContentRecord{}
	rec.Title, rec.Author, rec.Date, rec.URL = ExtractMeta(doc.Selection, p.Fields, base)
	rec.Content = contentFragment(doc.Selection, p.Fields.Content)

	if p.HasState && d.truncated(p, rec) {
		if overlay := state.Extract(doc, pageURL); overlay != nil {
			rec.Overlay(overlay)
		}
	}
	return rec
}

// truncated implements the clipped-preview heuristic: no fragment, too
// little visible text, or a read-more gate still present.
func (d *domStrategy) truncated(p *platform.Platform, rec *record.ContentRecord) bool {
	if !rec.HasContent() {
		return true
	}
	text := strings.TrimSpace(rec.Content.Text())
	if len([]rune(text)) < d.minLen {
		return true
	}
	if p.ReadMore.Selector != "" && rec.Content.Find(p.ReadMore.Selector).Length() > 0 {
		return true
	}
	for _, marker := range p.ReadMore.Texts {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

type apiStrategy struct {
	client *api.Client
}

func (a *apiStrategy) Name() string { return "api" }

func (a *apiStrategy) Resolve(ctx context.Context, pageURL string) *record.ContentRecord {
	return a.client.Resolve(ctx, pageURL)
}
