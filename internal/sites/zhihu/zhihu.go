// Package zhihu registers the handlers for zhihu answer, article,
// question, people-posts and collection pages. Single items go straight
// through the resolve pipeline; list pages are harvested with a browser.
package zhihu

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"snapmd/internal/scraper"
)

var (
	answerPath     = regexp.MustCompile(`^/question/\d+/answer/\d+/?$`)
	questionPath   = regexp.MustCompile(`^/question/\d+/?$`)
	articlePath    = regexp.MustCompile(`^/p/\d+/?$`)
	peoplePath     = regexp.MustCompile(`^/people/[^/]+/posts/?$`)
	collectionPath = regexp.MustCompile(`^/collection/\d+/?$`)
)

func init() {
	// Specific pages before lists: an answer URL also contains /question/.
	scraper.Register(&answerHandler{})
	scraper.Register(&articleHandler{})
	scraper.Register(&questionHandler{})
	scraper.Register(&peopleHandler{})
	scraper.Register(&collectionHandler{})
}

func mainHost(u *url.URL) bool {
	h := u.Hostname()
	return h == "www.zhihu.com" || h == "zhihu.com"
}

// answerHandler saves a single answer page.
type answerHandler struct{}

func (h *answerHandler) Name() string { return "zhihu-answer" }

func (h *answerHandler) Match(u *url.URL) bool {
	return mainHost(u) && answerPath.MatchString(u.Path)
}

func (h *answerHandler) Run(ctx context.Context, u *url.URL, env *scraper.Env) error {
	return saveSingle(ctx, u, env)
}

// articleHandler saves a single zhuanlan article.
type articleHandler struct{}

func (h *articleHandler) Name() string { return "zhihu-article" }

func (h *articleHandler) Match(u *url.URL) bool {
	return u.Hostname() == "zhuanlan.zhihu.com" && articlePath.MatchString(u.Path)
}

func (h *articleHandler) Run(ctx context.Context, u *url.URL, env *scraper.Env) error {
	return saveSingle(ctx, u, env)
}

// questionHandler harvests every answer listed under a question.
type questionHandler struct{}

func (h *questionHandler) Name() string { return "zhihu-question" }

func (h *questionHandler) Match(u *url.URL) bool {
	return mainHost(u) && questionPath.MatchString(u.Path)
}

func (h *questionHandler) Run(ctx context.Context, u *url.URL, env *scraper.Env) error {
	return harvestList(ctx, u, env, ".List-item .ContentItem", ".ContentItem-title a")
}

// peopleHandler harvests a user's posts list.
type peopleHandler struct{}

func (h *peopleHandler) Name() string { return "zhihu-people-posts" }

func (h *peopleHandler) Match(u *url.URL) bool {
	return mainHost(u) && peoplePath.MatchString(u.Path)
}

func (h *peopleHandler) Run(ctx context.Context, u *url.URL, env *scraper.Env) error {
	return harvestList(ctx, u, env, ".List-item .ContentItem", ".ContentItem-title a")
}

// collectionHandler harvests a favorites collection.
type collectionHandler struct{}

func (h *collectionHandler) Name() string { return "zhihu-collection" }

func (h *collectionHandler) Match(u *url.URL) bool {
	return mainHost(u) && collectionPath.MatchString(u.Path)
}

func (h *collectionHandler) Run(ctx context.Context, u *url.URL, env *scraper.Env) error {
	return harvestList(ctx, u, env, ".List-item .ContentItem", ".ContentItem-title a")
}

func saveSingle(ctx context.Context, u *url.URL, env *scraper.Env) error {
	env.Progress.Show("resolving "+u.String(), 0)
	path, err := env.SaveOne(ctx, u.String())
	if err != nil {
		env.Progress.Clear()
		return fmt.Errorf("save %s: %w", u, err)
	}
	env.Progress.Done("saved " + path)
	return nil
}
