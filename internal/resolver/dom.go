package resolver

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"snapmd/internal/platform"
	"snapmd/internal/record"
	"snapmd/internal/urlutil"
)

// FieldText evaluates ordered rules against root and returns the first
// non-empty result: node text, or the named attribute when Attr is set.
func FieldText(root *goquery.Selection, rules []platform.Rule) string {
	for _, r := range rules {
		sel := root.Find(r.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		var v string
		if r.Attr != "" {
			v, _ = sel.Attr(r.Attr)
		} else {
			v = sel.Text()
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ExtractMeta pulls title/author/date/canonical from root using the
// platform's field rules. The date goes through the shared normalizer;
// the canonical URL is absolutized against base.
func ExtractMeta(root *goquery.Selection, f platform.FieldRules, base *url.URL) (title, author, date, canonical string) {
	title = FieldText(root, f.Title)
	author = FieldText(root, f.Author)
	date = record.ParseDate(FieldText(root, f.Date))
	if c := FieldText(root, f.Canonical); c != "" {
		canonical = urlutil.Normalize(c, base)
	}
	return
}

// contentFragment returns a detached clone of the first matching content
// rule, so the record never aliases the cached document tree.
func contentFragment(root *goquery.Selection, rules []platform.Rule) *goquery.Selection {
	for _, r := range rules {
		sel := root.Find(r.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		return sel.Clone()
	}
	return nil
}
