// Package substack registers the handler for substack post pages.
// Posts live on per-newsletter subdomains, so the host match is by
// suffix.
package substack

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"snapmd/internal/scraper"
)

var postPath = regexp.MustCompile(`^/p/[^/]+/?$`)

func init() {
	scraper.Register(&postHandler{})
}

type postHandler struct{}

func (h *postHandler) Name() string { return "substack-post" }

func (h *postHandler) Match(u *url.URL) bool {
	return strings.HasSuffix(u.Hostname(), ".substack.com") && postPath.MatchString(u.Path)
}

func (h *postHandler) Run(ctx context.Context, u *url.URL, env *scraper.Env) error {
	env.Progress.Show("resolving "+u.String(), 0)
	path, err := env.SaveOne(ctx, u.String())
	if err != nil {
		env.Progress.Clear()
		return fmt.Errorf("save %s: %w", u, err)
	}
	env.Progress.Done("saved " + path)
	return nil
}
