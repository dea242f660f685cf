// Package record defines the content record produced by the resolution
// pipeline and the date normalization shared by its sources.
package record

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// PlaceholderTitle is used when no source yields a title.
	PlaceholderTitle = "Untitled"
	// PlaceholderAuthor is used when no source yields an author.
	PlaceholderAuthor = "Unknown"
)

// ContentRecord is the unit produced by content resolution. Content is a
// detached fragment owned by the record; it never aliases a live document
// shared with other records.
type ContentRecord struct {
	Title   string
	Author  string
	Date    string // YYYY-MM-DD or empty
	URL     string
	Content *goquery.Selection
}

// HasContent reports whether the record is usable by the converter:
// a non-nil fragment with non-whitespace text or at least one image.
func (r *ContentRecord) HasContent() bool {
	if r == nil || r.Content == nil {
		return false
	}
	if strings.TrimSpace(r.Content.Text()) != "" {
		return true
	}
	return r.Content.Find("img").Length() > 0
}

// Normalize fills placeholder title/author on an otherwise complete record.
func (r *ContentRecord) Normalize() {
	if strings.TrimSpace(r.Title) == "" {
		r.Title = PlaceholderTitle
	}
	if strings.TrimSpace(r.Author) == "" {
		r.Author = PlaceholderAuthor
	}
}

// Overlay copies every non-empty field of other onto r. Used when a later
// resolution source recovers truncated content while the earlier source
// already produced some metadata.
func (r *ContentRecord) Overlay(other *ContentRecord) {
	if other == nil {
		return
	}
	if strings.TrimSpace(other.Title) != "" {
		r.Title = other.Title
	}
	if strings.TrimSpace(other.Author) != "" {
		r.Author = other.Author
	}
	if other.Date != "" {
		r.Date = other.Date
	}
	if other.URL != "" {
		r.URL = other.URL
	}
	if other.Content != nil {
		r.Content = other.Content
	}
}

// Fragment parses an HTML string into a detached fragment, owned by the
// caller and safe to mutate. Returns nil when the markup has no body
// content at all.
func Fragment(html string) *goquery.Selection {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc.Find("body")
}

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Timestamps after this are treated as unix milliseconds rather than
// seconds. Corresponds to 2128-06-11; any second-scale value that large
// is out of range for real publication dates.
const millisThreshold = 5e9

// ParseDate normalizes heterogeneous date inputs to YYYY-MM-DD.
// Accepted inputs: unix seconds, unix milliseconds (numbers or numeric
// strings), ISO 8601 strings, and free text containing a YYYY-MM-DD
// pattern. Anything else yields the empty string.
func ParseDate(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case int:
		return fromUnix(float64(d))
	case int64:
		return fromUnix(float64(d))
	case float64:
		return fromUnix(d)
	case string:
		return parseDateString(d)
	default:
		return ""
	}
}

func fromUnix(ts float64) string {
	if ts <= 0 {
		return ""
	}
	if ts > millisThreshold {
		ts = ts / 1000
	}
	return time.Unix(int64(ts), 0).UTC().Format("2006-01-02")
}

func parseDateString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromUnix(n)
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	// Free text such as "Published 2024-03-05 in ..." still counts.
	if m := isoDatePattern.FindString(s); m != "" {
		return m
	}
	return ""
}
