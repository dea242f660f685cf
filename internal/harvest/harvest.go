// Package harvest collects entry links from rendered list pages and
// processes them sequentially. Discovery needs a live page because the
// lists load more items on scroll; processing is a plain loop over the
// collected URLs so one bad entry never aborts the batch.
package harvest

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"snapmd/internal/platform"
	"snapmd/internal/resolver"
	"snapmd/internal/urlutil"
)

// Entry is one discovered list item. Title/Author/Date are preview
// metadata from the list markup; the authoritative values come from the
// entry page when it is processed.
type Entry struct {
	URL    string
	Title  string
	Author string
	Date   string
}

// Source is the slice of a rendered page that discovery needs. The rod
// adapter lives in page.go; tests supply scripted fakes.
type Source interface {
	HTML() (string, error)
	ScrollBottom() error
}

// Options bounds a discovery run.
type Options struct {
	// ItemSelector matches one list item; LinkSelector finds the entry
	// anchor within it. An empty LinkSelector means the item is the anchor.
	ItemSelector string
	LinkSelector string

	// Fields, when set, extracts preview metadata from each item with the
	// platform's rule tables.
	Fields *platform.FieldRules

	MaxRounds    int
	IdleRounds   int
	ScrollSettle time.Duration

	Logger zerolog.Logger
}

// Discover scrolls src until MaxRounds is reached, IdleRounds consecutive
// rounds add nothing new, or ctx is cancelled. Entries are deduplicated
// by normalized URL and returned in first-seen order.
func Discover(ctx context.Context, src Source, base *url.URL, opts Options) ([]Entry, error) {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 30
	}
	if opts.IdleRounds <= 0 {
		opts.IdleRounds = 3
	}

	seen := map[string]bool{}
	var entries []Entry
	idle := 0

	for round := 0; round < opts.MaxRounds; round++ {
		raw, err := src.HTML()
		if err != nil {
			return entries, err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err != nil {
			return entries, err
		}

		added := 0
		doc.Find(opts.ItemSelector).Each(func(_ int, item *goquery.Selection) {
			link := item
			if opts.LinkSelector != "" {
				link = item.Find(opts.LinkSelector).First()
			}
			href, ok := link.Attr("href")
			if !ok {
				return
			}
			u := urlutil.Normalize(href, base)
			if u == "" || seen[u] {
				return
			}
			seen[u] = true
			e := Entry{URL: u, Title: strings.TrimSpace(link.Text())}
			if opts.Fields != nil {
				title, author, date, _ := resolver.ExtractMeta(item, *opts.Fields, base)
				if title != "" {
					e.Title = title
				}
				e.Author = author
				e.Date = date
			}
			entries = append(entries, e)
			added++
		})

		opts.Logger.Debug().Int("round", round+1).Int("new", added).Int("total", len(entries)).Msg("discovery round")

		if added == 0 {
			idle++
			if idle >= opts.IdleRounds {
				break
			}
		} else {
			idle = 0
		}

		if err := src.ScrollBottom(); err != nil {
			return entries, err
		}
		select {
		case <-ctx.Done():
			return entries, ctx.Err()
		case <-time.After(opts.ScrollSettle):
		}
	}
	return entries, nil
}
