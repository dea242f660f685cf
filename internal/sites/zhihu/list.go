package zhihu

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"snapmd/internal/harvest"
	"snapmd/internal/platform"
	"snapmd/internal/scraper"
)

// harvestList opens u in the browser, scroll-discovers the entry links
// and saves each entry sequentially.
func harvestList(ctx context.Context, u *url.URL, env *scraper.Env, itemSel, linkSel string) error {
	page, err := env.Page(u.String())
	if err != nil {
		return err
	}
	defer page.Close()

	var fields *platform.FieldRules
	if p := platform.Find(u.Hostname()); p != nil {
		fields = &p.Fields
	}

	hc := env.Config.Harvest
	entries, err := harvest.Discover(ctx, harvest.PageSource(page), u, harvest.Options{
		ItemSelector: itemSel,
		LinkSelector: linkSel,
		Fields:       fields,
		MaxRounds:    hc.MaxRounds,
		IdleRounds:   hc.IdleRounds,
		ScrollSettle: time.Duration(hc.ScrollSettleMs) * time.Millisecond,
		Logger:       env.Log,
	})
	if err != nil {
		return fmt.Errorf("discover %s: %w", u, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no entries found on %s", u)
	}
	env.Log.Info().Int("entries", len(entries)).Str("url", u.String()).Msg("list discovered")

	pause := time.Duration(hc.ItemPauseMs) * time.Millisecond
	res := harvest.Process(ctx, entries, pause, env.SaveOne, env.Progress, env.Log)

	env.Progress.Done(fmt.Sprintf("saved %d/%d, skipped %d", len(res.Saved), len(entries), len(res.Skipped)))
	return nil
}
