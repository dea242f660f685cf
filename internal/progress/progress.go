// Package progress renders a single in-place status line, the CLI
// equivalent of the floating toast: updated in place, auto-cleared
// after a timeout, sticky when the timeout is zero.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

const defaultWidth = 80

// Reporter writes status updates to one writer. Safe for use from the
// timer goroutine that clears expired messages.
type Reporter struct {
	mu       sync.Mutex
	w        io.Writer
	width    int
	lastLen  int
	hideTime *time.Timer
}

func New(w io.Writer) *Reporter {
	return &Reporter{w: w, width: defaultWidth}
}

// SetWidth overrides the truncation width.
func (r *Reporter) SetWidth(width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width > 0 {
		r.width = width
	}
}

// Show replaces the current status line. hideAfter > 0 clears the line
// after that duration; zero keeps it until the next update.
func (r *Reporter) Show(msg string, hideAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideTime != nil {
		r.hideTime.Stop()
		r.hideTime = nil
	}
	line := runewidth.Truncate(strings.ReplaceAll(msg, "\n", " "), r.width, "…")
	pad := r.lastLen - runewidth.StringWidth(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(r.w, "\r%s%s", line, strings.Repeat(" ", pad))
	r.lastLen = runewidth.StringWidth(line)
	if hideAfter > 0 {
		r.hideTime = time.AfterFunc(hideAfter, r.Clear)
	}
}

// Showf is Show with formatting.
func (r *Reporter) Showf(hideAfter time.Duration, format string, args ...any) {
	r.Show(fmt.Sprintf(format, args...), hideAfter)
}

// Clear erases the status line.
func (r *Reporter) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastLen > 0 {
		fmt.Fprintf(r.w, "\r%s\r", strings.Repeat(" ", r.lastLen))
		r.lastLen = 0
	}
}

// Done clears the line and prints a final persistent message.
func (r *Reporter) Done(msg string) {
	r.Clear()
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, msg)
}
