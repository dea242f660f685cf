package markdown

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// fallbackConvert is the minimal conversion path: a pure fold over the
// node tree producing text directly, with no custom math or table
// handling. The input tree is read, never rewritten.
func fallbackConvert(frag *goquery.Selection) string {
	var b strings.Builder
	for _, n := range frag.Nodes {
		foldNode(n, &b)
	}
	return collapseBlankLines(b.String())
}

func foldNode(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.ElementNode:
		foldElement(n, b)
		return
	default:
		foldChildren(n, b)
	}
}

func foldChildren(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		foldNode(c, b)
	}
}

func childText(n *html.Node) string {
	var b strings.Builder
	foldChildren(n, &b)
	return strings.TrimSpace(b.String())
}

func foldElement(n *html.Node, b *strings.Builder) {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		b.WriteString("\n\n" + strings.Repeat("#", level) + " " + childText(n) + "\n\n")
	case "strong", "b":
		if t := childText(n); t != "" {
			b.WriteString("**" + t + "**")
		}
	case "em", "i":
		if t := childText(n); t != "" {
			b.WriteString("*" + t + "*")
		}
	case "a":
		href := attr(n, "href")
		text := childText(n)
		if text == "" {
			text = href
		}
		b.WriteString("[" + text + "](" + href + ")")
	case "img":
		b.WriteString("![" + attr(n, "alt") + "](" + attr(n, "src") + ")")
	case "code":
		if t := childText(n); t != "" {
			b.WriteString("`" + t + "`")
		}
	case "pre":
		b.WriteString("\n\n```\n" + strings.TrimSpace(rawText(n)) + "\n```\n\n")
	case "br":
		b.WriteString("\n")
	case "p", "div", "section", "article", "li", "blockquote":
		foldChildren(n, b)
		b.WriteString("\n\n")
	default:
		foldChildren(n, b)
	}
}

// rawText collects text nodes verbatim, preserving newlines, for code
// blocks where the usual inline folding would mangle the content.
func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, strings.TrimRight(line, " "))
	}
	return strings.Join(out, "\n")
}
