// Package juejin registers the handler for juejin post pages.
package juejin

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"snapmd/internal/scraper"
)

var postPath = regexp.MustCompile(`^/post/\d+/?$`)

func init() {
	scraper.Register(&postHandler{})
}

type postHandler struct{}

func (h *postHandler) Name() string { return "juejin-post" }

func (h *postHandler) Match(u *url.URL) bool {
	return u.Hostname() == "juejin.cn" && postPath.MatchString(u.Path)
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
