package harvest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"snapmd/internal/progress"
)

// SaveFunc saves one entry and returns the path it was written to.
type SaveFunc func(ctx context.Context, pageURL string) (string, error)

// Skip records one failed entry; Position is 1-based within the batch.
type Skip struct {
	Position int
	URL      string
	Err      error
}

// Result summarizes a processed batch.
type Result struct {
	Saved   []string
	Skipped []Skip
}

// Process saves entries one at a time, pausing between items. A failing
// entry is logged and skipped; the rest of the batch continues. Only
// context cancellation stops the loop early.
func Process(ctx context.Context, entries []Entry, pause time.Duration, save SaveFunc, prog *progress.Reporter, log zerolog.Logger) Result {
	var res Result
	total := len(entries)

	for i, e := range entries {
		select {
		case <-ctx.Done():
			return res
		default:
		}

		if prog != nil {
			prog.Showf(0, "(%d/%d) %s", i+1, total, e.Title)
		}

		path, err := save(ctx, e.URL)
		if err != nil {
			log.Warn().Err(err).Int("position", i+1).Str("url", e.URL).Msg("entry skipped")
			if prog != nil {
				prog.Showf(2*time.Second, "(%d/%d) skipped: %s", i+1, total, e.Title)
			}
			res.Skipped = append(res.Skipped, Skip{Position: i + 1, URL: e.URL, Err: err})
			continue
		}
		res.Saved = append(res.Saved, path)

		if pause > 0 && i < total-1 {
			select {
			case <-ctx.Done():
				return res
			case <-time.After(pause):
			}
		}
	}
	return res
}
