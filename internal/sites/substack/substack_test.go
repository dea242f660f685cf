package substack

import (
	"net/url"
	"testing"
)

func TestPostMatch(t *testing.T) {
	h := &postHandler{}
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.substack.com/p/my-first-post", true},
		{"https://example.substack.com/archive", false},
		{"https://substack.com/p/post", false},
		{"https://example.com/p/post", false},
	}
	for _, tt := range tests {
		u, _ := url.Parse(tt.url)
		if got := h.Match(u); got != tt.want {
			t.Errorf("Match(%s) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
