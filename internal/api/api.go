// Package api is the last-resort content source: when neither the
// rendered DOM nor the embedded state blob yields usable content, the
// platform's JSON content API is queried directly by numeric content id.
package api

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"snapmd/internal/fetch"
	"snapmd/internal/record"
)

// DefaultBaseURL is the platform's public content API root.
const DefaultBaseURL = "https://www.zhihu.com/api/v4"

var (
	articlePattern = regexp.MustCompile(`zhuanlan\.zhihu\.com/p/(\d+)`)
	answerPattern  = regexp.MustCompile(`/answer/(\d+)`)
)

// ContentID extracts the numeric content identifier from a page URL.
// kind is "articles" or "answers". ok is false for URLs the API cannot
// serve, which makes the whole fallback inapplicable.
func ContentID(pageURL string) (kind, id string, ok bool) {
	if m := articlePattern.FindStringSubmatch(pageURL); m != nil {
		return "articles", m[1], true
	}
	if m := answerPattern.FindStringSubmatch(pageURL); m != nil {
		return "answers", m[1], true
	}
	return "", "", false
}

type response struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Created any    `json:"created"`
	Updated any    `json:"updated"`
	URL     string `json:"url"`
	Author  struct {
		Name     string `json:"name"`
		URLToken string `json:"url_token"`
	} `json:"author"`
	Question struct {
		ID any `json:"id"`
	} `json:"question"`
}

// Client queries the content API through the shared fetch client.
type Client struct {
	fetch   *fetch.Client
	baseURL string
	log     zerolog.Logger
}

// New creates a Client. baseURL may be empty for the production API.
func New(f *fetch.Client, baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{fetch: f, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// Resolve fetches content for pageURL via the API. It absorbs every
// failure (inapplicable URL, transport, parse, empty content) and returns
// nil, logging the reason; the API is one fallback among several and must
// never abort the caller's chain.
func (c *Client) Resolve(ctx context.Context, pageURL string) *record.ContentRecord {
	kind, id, ok := ContentID(pageURL)
	if !ok {
		return nil
	}
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, kind, id)
	if kind == "answers" {
		endpoint += "?include=content"
	}

	var resp response
	if err := c.fetch.JSON(ctx, endpoint, &resp); err != nil {
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("content API request failed")
		return nil
	}
	if strings.TrimSpace(resp.Content) == "" {
		c.log.Warn().Str("endpoint", endpoint).Msg("content API returned no content")
		return nil
	}

	rec := &record.ContentRecord{
		Title:   resp.Title,
		Author:  resp.Author.Name,
		Date:    apiDate(&resp),
		URL:     canonicalURL(kind, id, &resp),
		Content: record.Fragment(resp.Content),
	}
	if rec.Author == "" {
		rec.Author = resp.Author.URLToken
	}
	c.log.Debug().Str("endpoint", endpoint).Msg("content recovered from API")
	return rec
}

func apiDate(r *response) string {
	if d := record.ParseDate(r.Created); d != "" {
		return d
	}
	return record.ParseDate(r.Updated)
}

func canonicalURL(kind, id string, r *response) string {
	if strings.TrimSpace(r.URL) != "" {
		return r.URL
	}
	if kind == "articles" {
		return "https://zhuanlan.zhihu.com/p/" + id
	}
	if q, ok := r.Question.ID.(float64); ok && q > 0 {
		return fmt.Sprintf("https://www.zhihu.com/question/%d/answer/%s", int64(q), id)
	}
	return "https://www.zhihu.com/answer/" + id
}
