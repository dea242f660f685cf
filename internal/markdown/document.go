package markdown

import (
	"strings"

	"snapmd/internal/record"
)

// Document assembles the final Markdown artifact for one record, in
// fixed order: title heading, author line, date line when known, link
// line, blank line, body.
func Document(rec *record.ContentRecord, body string) string {
	var b strings.Builder
	b.WriteString("# " + rec.Title + "\n\n")
	b.WriteString("**Author:** " + rec.Author + "\n\n")
	if rec.Date != "" {
		b.WriteString("**Date:** " + rec.Date + "\n\n")
	}
	b.WriteString("**Link:** " + rec.URL + "\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String()
}
