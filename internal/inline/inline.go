// Package inline rewrites every image in a content fragment into a
// self-contained data URL so the produced Markdown survives without the
// origin. Downloads within one fragment run concurrently; a single bad
// image never fails the fragment.
package inline

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"snapmd/internal/fetch"
	"snapmd/internal/urlutil"
)

// Source attributes checked in order: the live source first, then the
// lazy-load attributes the platforms use.
var sourceAttrs = []string{"src", "data-original", "data-actualsrc", "data-src"}

// Inliner embeds remote images via the shared fetch client, which also
// deduplicates payloads across fragments for the session.
type Inliner struct {
	fetch *fetch.Client
	log   zerolog.Logger
}

func New(f *fetch.Client, log zerolog.Logger) *Inliner {
	return &Inliner{fetch: f, log: log}
}

// Inline rewrites all img elements under frag. pageURL anchors relative
// references. Already-inlined images are left alone, so re-running on an
// inlined fragment performs no network requests and changes nothing.
func (i *Inliner) Inline(ctx context.Context, frag *goquery.Selection, pageURL string) {
	if frag == nil {
		return
	}
	base := urlutil.MustParse(pageURL)

	var wg sync.WaitGroup
	frag.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := firstSource(img)
		if src == "" {
			return
		}
		abs := urlutil.Normalize(src, base)
		if strings.HasPrefix(abs, "data:") {
			img.SetAttr("src", abs)
			img.RemoveAttr("srcset")
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			dataURL, err := i.fetch.DataURL(ctx, abs)
			if err != nil {
				i.log.Warn().Err(err).Str("image", abs).Msg("image inline failed, keeping remote source")
				return
			}
			img.SetAttr("src", dataURL)
			// srcset would still point at the origin and break portability.
			img.RemoveAttr("srcset")
		}()
	})
	wg.Wait()
}

func firstSource(img *goquery.Selection) string {
	for _, attr := range sourceAttrs {
		if v, ok := img.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
