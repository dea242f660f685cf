package scraper

import "net/url"

// Registration order decides dispatch priority: the first matching
// handler wins, so site packages register specific pages before broad
// ones.
var registry []Handler

// Register appends a handler to the dispatch chain. Called from site
// package init functions.
func Register(h Handler) {
	registry = append(registry, h)
}

// Dispatch finds the first handler matching u.
func Dispatch(u *url.URL) (Handler, bool) {
	for _, h := range registry {
		if h.Match(u) {
			return h, true
		}
	}
	return nil, false
}

// Handlers returns the registered handlers in dispatch order.
func Handlers() []Handler {
	return append([]Handler(nil), registry...)
}
