// Package state extracts full article content from the embedded JSON
// application-state blob that the Q&A platform ships with every page.
// The rendered DOM is often truncated behind a "read more" gate while the
// state blob still carries the complete HTML.
package state

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"snapmd/internal/record"
)

// ScriptSelector locates the embedded state node on platform pages.
const ScriptSelector = "script#js-initialData"

// Entity buckets searched in preference order; the remaining buckets are
// scanned afterwards in whatever order the map yields them.
var preferredBuckets = []string{"articles", "answers", "pins", "zvideos"}

type author struct {
	Name     string `json:"name"`
	URLToken string `json:"url_token"`
}

type questionRef struct {
	ID    any    `json:"id"`
	Title string `json:"title"`
}

type entity struct {
	ID       any          `json:"id"`
	Content  string       `json:"content"`
	Title    string       `json:"title"`
	URL      string       `json:"url"`
	Created  any          `json:"created"`
	Updated  any          `json:"updated"`
	Author   *author      `json:"author"`
	Question *questionRef `json:"question"`
	User     *author      `json:"user"`
}

type initialData struct {
	Title        string `json:"title"`
	InitialState struct {
		Entities map[string]json.RawMessage `json:"entities"`
	} `json:"initialState"`
}

// Extract locates the embedded state blob in doc and returns a record for
// the first content-bearing entity, or nil when the blob is missing,
// unparseable, or carries no content anywhere. It never returns an error:
// embedded-state extraction is one fallback among several.
func Extract(doc *goquery.Document, pageURL string) *record.ContentRecord {
	node := doc.Find(ScriptSelector).First()
	if node.Length() == 0 {
		return nil
	}
	var data initialData
	if err := json.Unmarshal([]byte(node.Text()), &data); err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("embedded state blob is not valid JSON")
		return nil
	}
	entities := data.InitialState.Entities
	if len(entities) == 0 {
		return nil
	}

	bucket, ent := findEntity(entities)
	if ent == nil {
		return nil
	}

	rec := &record.ContentRecord{
		Title:   entityTitle(ent, data.Title),
		Author:  entityAuthor(ent),
		Date:    entityDate(ent),
		URL:     canonicalURL(bucket, ent, pageURL),
		Content: record.Fragment(ent.Content),
	}
	log.Debug().Str("bucket", bucket).Str("url", rec.URL).Msg("content recovered from embedded state")
	return rec
}

// findEntity returns the first entity with non-empty HTML content,
// checking the preferred buckets in order before the rest.
func findEntity(entities map[string]json.RawMessage) (string, *entity) {
	seen := map[string]bool{}
	for _, name := range preferredBuckets {
		seen[name] = true
		if ent := firstWithContent(entities[name]); ent != nil {
			return name, ent
		}
	}
	for name, raw := range entities {
		if seen[name] {
			continue
		}
		if ent := firstWithContent(raw); ent != nil {
			return name, ent
		}
	}
	return "", nil
}

func firstWithContent(raw json.RawMessage) *entity {
	if len(raw) == 0 {
		return nil
	}
	var bucket map[string]entity
	if err := json.Unmarshal(raw, &bucket); err != nil {
		return nil
	}
	for _, ent := range bucket {
		if strings.TrimSpace(ent.Content) != "" {
			e := ent
			return &e
		}
	}
	return nil
}

func entityTitle(ent *entity, stateTitle string) string {
	if strings.TrimSpace(ent.Title) != "" {
		return ent.Title
	}
	if ent.Question != nil && strings.TrimSpace(ent.Question.Title) != "" {
		return ent.Question.Title
	}
	return stateTitle
}

func entityAuthor(ent *entity) string {
	if ent.Author != nil {
		if ent.Author.Name != "" {
			return ent.Author.Name
		}
		if ent.Author.URLToken != "" {
			return ent.Author.URLToken
		}
	}
	if ent.User != nil && ent.User.Name != "" {
		return ent.User.Name
	}
	return ""
}

func entityDate(ent *entity) string {
	if d := record.ParseDate(ent.Created); d != "" {
		return d
	}
	return record.ParseDate(ent.Updated)
}

// URL templates per bucket; answers additionally need the parent
// question's identifier.
func canonicalURL(bucket string, ent *entity, pageURL string) string {
	if strings.TrimSpace(ent.URL) != "" {
		return ent.URL
	}
	id := idString(ent.ID)
	if id != "" {
		switch bucket {
		case "articles":
			return "https://zhuanlan.zhihu.com/p/" + id
		case "answers":
			if ent.Question != nil {
				if qid := idString(ent.Question.ID); qid != "" {
					return fmt.Sprintf("https://www.zhihu.com/question/%s/answer/%s", qid, id)
				}
			}
		case "pins":
			return "https://www.zhihu.com/pin/" + id
		case "zvideos":
			return "https://www.zhihu.com/zvideo/" + id
		}
	}
	return pageURL
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}

// Buckets exposes the preferred search order, used by tests and docs.
func Buckets() []string {
	return append([]string(nil), preferredBuckets...)
}
