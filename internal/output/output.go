// Package output writes assembled Markdown documents to disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"snapmd/internal/record"
)

// Characters that are invalid in filenames on at least one supported
// filesystem, each replaced by an underscore.
var sanitizer = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_",
	"?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// Filename derives the artifact name for a record:
// (<date>)<title>_<author>.md when a date is known, else
// <title>_<author>.md.
func Filename(rec *record.ContentRecord) string {
	name := fmt.Sprintf("%s_%s", rec.Title, rec.Author)
	if rec.Date != "" {
		name = fmt.Sprintf("(%s)%s", rec.Date, name)
	}
	return sanitizer.Replace(name) + ".md"
}

// Save writes doc under dir using the derived filename and returns the
// full path of the written file.
func Save(dir string, rec *record.ContentRecord, doc string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, Filename(rec))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
