// Package devto registers the handler for dev.to article pages.
package devto

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"snapmd/internal/scraper"
)

// Articles are /{user}/{slug}; single-segment paths are profiles, tags
// and site pages.
var articlePath = regexp.MustCompile(`^/[^/]+/[^/]+/?$`)

func init() {
	scraper.Register(&articleHandler{})
}

type articleHandler struct{}

func (h *articleHandler) Name() string { return "devto-post" }

func (h *articleHandler) Match(u *url.URL) bool {
	return u.Hostname() == "dev.to" && articlePath.MatchString(u.Path)
}

func (h *articleHandler) Run(ctx context.Context, u *url.URL, env *scraper.Env) error {
	env.Progress.Show("resolving "+u.String(), 0)
	path, err := env.SaveOne(ctx, u.String())
	if err != nil {
		env.Progress.Clear()
		return fmt.Errorf("save %s: %w", u, err)
	}
	env.Progress.Done("saved " + path)
	return nil
}
