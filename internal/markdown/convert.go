// Package markdown converts content fragments to Markdown. The primary
// path is a configured html-to-markdown engine with custom rules for
// math formulas, headings and tables; a minimal tree-fold converter
// stands in when the engine is unusable.
package markdown

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Elements stripped from every fragment before conversion, plus the
// expand/load-more controls that platforms leave inside clipped bodies.
const cleanupSelector = "style, script, noscript, button.ContentItem-expandButton, .read-more-button, button[class*='load-more']"

// Converter owns the conversion engine for one session.
type Converter struct {
	engine      *md.Converter
	useFallback bool
	log         zerolog.Logger
}

// New builds the engine and runs a trivial-paragraph self test; when the
// engine is broken the converter degrades to the fallback path for the
// whole session.
func New(log zerolog.Logger) *Converter {
	engine := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		CodeBlockStyle:   "fenced",
		BulletListMarker: "-",
	})
	engine.AddRules(mathRule(), headingRule(), tableRule())

	c := &Converter{engine: engine, log: log}
	if out, err := engine.ConvertString("<p>probe</p>"); err != nil || !strings.Contains(out, "probe") {
		log.Warn().Err(err).Msg("markdown engine failed self test, using fallback converter")
		c.useFallback = true
	}
	return c
}

// Convert renders frag as Markdown. The fragment is cleaned on a clone;
// the input nodes are never mutated.
func (c *Converter) Convert(frag *goquery.Selection) string {
	if frag == nil {
		return ""
	}
	clean := frag.Clone()
	clean.Find(cleanupSelector).Remove()

	if !c.useFallback {
		html, err := goquery.OuterHtml(clean)
		if err == nil {
			out, err := c.engine.ConvertString(html)
			if err == nil {
				return strings.TrimSpace(out)
			}
			c.log.Warn().Err(err).Msg("markdown engine failed, using fallback for this fragment")
		}
	}
	return strings.TrimSpace(fallbackConvert(clean))
}

// mathRule emits inline formulas as $...$ and display formulas carrying
// a \tag numbering marker as $$ blocks on their own lines.
func mathRule() md.Rule {
	return md.Rule{
		Filter: []string{"span"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			tex, ok := selec.Attr("data-tex")
			if !ok {
				return nil // not a math node, let other rules handle it
			}
			tex = strings.TrimSpace(tex)
			if tex == "" {
				return md.String("")
			}
			if strings.Contains(tex, `\tag`) {
				return md.String("\n\n$$\n" + tex + "\n$$\n\n")
			}
			return md.String("$" + tex + "$")
		},
	}
}

// headingRule overrides the engine's heading spacing: a blank line on
// both sides, hash prefix repeated per level.
func headingRule() md.Rule {
	return md.Rule{
		Filter: []string{"h1", "h2", "h3", "h4", "h5", "h6"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			level := int(selec.Nodes[0].Data[1] - '0')
			text := strings.TrimSpace(content)
			if text == "" {
				return md.String("")
			}
			return md.String(fmt.Sprintf("\n\n%s %s\n\n", strings.Repeat("#", level), text))
		},
	}
}

// tableRule renders one pipe row per tr, header and data cells alike,
// and always inserts a --- separator after the first row: sized by the
// first row's th count when it has any, else its td count. A first row
// without header cells still becomes the rendered header; the platforms'
// tables rely on that reading.
func tableRule() md.Rule {
	return md.Rule{
		Filter: []string{"table"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			var b strings.Builder
			selec.Find("tr").Each(func(i int, row *goquery.Selection) {
				cells := row.Find("th, td")
				if cells.Length() == 0 {
					return
				}
				b.WriteString("|")
				cells.Each(func(_ int, cell *goquery.Selection) {
					b.WriteString(" " + cellText(cell) + " |")
				})
				b.WriteString("\n")
				if i == 0 {
					cols := row.Find("th").Length()
					if cols == 0 {
						cols = row.Find("td").Length()
					}
					b.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
				}
			})
			if b.Len() == 0 {
				return md.String("")
			}
			return md.String("\n\n" + b.String() + "\n")
		},
	}
}

var newlineCollapser = strings.NewReplacer("\n", " ", "\r", " ")

func cellText(cell *goquery.Selection) string {
	text := strings.TrimSpace(newlineCollapser.Replace(cell.Text()))
	if text == "" {
		return " "
	}
	return text
}
