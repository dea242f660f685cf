// Package platform holds the per-platform extraction configuration:
// which hosts a platform owns, the ordered selector rules for each
// metadata field, the read-more gate markers, and the Referer table.
// Adding a platform is data, not control flow.
package platform

import "strings"

// Rule extracts one field: the text of the first node matching Selector,
// or the named attribute when Attr is set.
type Rule struct {
	Selector string
	Attr     string
}

// FieldRules are evaluated first-match-wins per field.
type FieldRules struct {
	Title     []Rule
	Content   []Rule
	Author    []Rule
	Date      []Rule
	Canonical []Rule
}

// ReadMore describes the truncation markers of a platform: a gating UI
// element and/or literal marker texts left in a clipped fragment.
type ReadMore struct {
	Selector string
	Texts    []string
}

// Platform is one publishing platform's static configuration.
type Platform struct {
	Name     string
	Hosts    []string // exact hosts or ".suffix" entries
	Fields   FieldRules
	ReadMore ReadMore
	Referers map[string]string
	// HasState marks platforms shipping an embedded JSON state blob.
	HasState bool
	// HasAPI marks platforms with a JSON content API fallback.
	HasAPI bool
}

// Platforms is the full table. Selector lists are ordered by priority.
var Platforms = []*Platform{
	{
		Name:  "zhihu",
		Hosts: []string{"www.zhihu.com", "zhihu.com", "zhuanlan.zhihu.com"},
		Fields: FieldRules{
			Title: []Rule{
				{Selector: "h1.QuestionHeader-title"},
				{Selector: "h1.Post-Title"},
				{Selector: ".ContentItem-title"},
			},
			Content: []Rule{
				{Selector: ".RichContent-inner .RichText"},
				{Selector: ".Post-RichTextContainer .RichText"},
				{Selector: ".RichText"},
			},
			Author: []Rule{
				{Selector: ".AuthorInfo-name .UserLink-link"},
				{Selector: ".AuthorInfo meta[itemprop=name]", Attr: "content"},
			},
			Date: []Rule{
				{Selector: "meta[itemprop=dateModified]", Attr: "content"},
				{Selector: ".ContentItem-time"},
			},
			Canonical: []Rule{
				{Selector: "link[rel=canonical]", Attr: "href"},
				{Selector: "meta[itemprop=url]", Attr: "content"},
			},
		},
		ReadMore: ReadMore{
			Selector: "button.ContentItem-expandButton",
			// Literal expand-control labels rendered by the platform UI.
			Texts: []string{"显示全部", "阅读全文"},
		},
		Referers: map[string]string{
			"zhuanlan.zhihu.com": "https://zhuanlan.zhihu.com/",
			".zhimg.com":         "https://www.zhihu.com/",
			"www.zhihu.com":      "https://www.zhihu.com/",
		},
		HasState: true,
		HasAPI:   true,
	},
	{
		Name:  "juejin",
		Hosts: []string{"juejin.cn"},
		Fields: FieldRules{
			Title: []Rule{
				{Selector: "h1.article-title"},
				{Selector: ".article-area h1"},
			},
			Content: []Rule{
				{Selector: "#article-root .article-viewer"},
				{Selector: ".article-viewer"},
			},
			Author: []Rule{
				{Selector: ".author-info-block .author-name"},
				{Selector: "meta[name=author]", Attr: "content"},
			},
			Date: []Rule{
				{Selector: ".meta-box time", Attr: "datetime"},
				{Selector: "time.time", Attr: "datetime"},
			},
			Canonical: []Rule{
				{Selector: "link[rel=canonical]", Attr: "href"},
			},
		},
		Referers: map[string]string{
			"juejin.cn": "https://juejin.cn/",
		},
	},
	{
		Name:  "substack",
		Hosts: []string{".substack.com"},
		Fields: FieldRules{
			Title: []Rule{
				{Selector: "h1.post-title"},
				{Selector: "h2.pencraft"},
				{Selector: "meta[property='og:title']", Attr: "content"},
			},
			Content: []Rule{
				{Selector: ".available-content .body.markup"},
				{Selector: ".body.markup"},
			},
			Author: []Rule{
				{Selector: "meta[name=author]", Attr: "content"},
				{Selector: ".post-header .pencraft a[href*='/profile/']"},
			},
			Date: []Rule{
				{Selector: "meta[property='article:published_time']", Attr: "content"},
				{Selector: "time", Attr: "datetime"},
			},
			Canonical: []Rule{
				{Selector: "link[rel=canonical]", Attr: "href"},
			},
		},
		ReadMore: ReadMore{
			Texts: []string{"This post is for paid subscribers", "Subscribe to keep reading"},
		},
	},
	{
		Name:  "devto",
		Hosts: []string{"dev.to"},
		Fields: FieldRules{
			Title: []Rule{
				{Selector: "h1.crayons-title"},
				{Selector: ".crayons-article__header h1"},
			},
			Content: []Rule{
				{Selector: "#article-body"},
				{Selector: ".crayons-article__main .crayons-article__body"},
			},
			Author: []Rule{
				{Selector: ".crayons-article__subheader .crayons-link"},
				{Selector: "meta[name=author]", Attr: "content"},
			},
			Date: []Rule{
				{Selector: "time", Attr: "datetime"},
			},
			Canonical: []Rule{
				{Selector: "link[rel=canonical]", Attr: "href"},
			},
		},
		Referers: map[string]string{
			"dev.to": "https://dev.to/",
		},
	},
}

// Find returns the platform owning host, or nil. ".suffix" entries match
// any subdomain.
func Find(host string) *Platform {
	host = strings.ToLower(host)
	for _, p := range Platforms {
		for _, h := range p.Hosts {
			if h == host || (strings.HasPrefix(h, ".") && strings.HasSuffix(host, h)) {
				return p
			}
		}
	}
	return nil
}

// Referers merges every platform's Referer table, for seeding the fetch
// client once at startup.
func Referers() map[string]string {
	merged := map[string]string{}
	for _, p := range Platforms {
		for k, v := range p.Referers {
			merged[k] = v
		}
	}
	return merged
}
