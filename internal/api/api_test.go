package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"snapmd/internal/fetch"
)

func TestContentID(t *testing.T) {
	cases := []struct {
		url  string
		kind string
		id   string
		ok   bool
	}{
		{"https://zhuanlan.zhihu.com/p/987654", "articles", "987654", true},
		{"https://www.zhihu.com/question/1/answer/22", "answers", "22", true},
		{"https://www.zhihu.com/people/foo", "", "", false},
		{"https://juejin.cn/post/123", "", "", false},
	}
	for _, c := range cases {
		kind, id, ok := ContentID(c.url)
		if kind != c.kind || id != c.id || ok != c.ok {
			t.Errorf("ContentID(%q) = %q,%q,%v", c.url, kind, id, ok)
		}
	}
}

func TestResolveArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/articles/987654" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"title": "API title",
			"content": "<p>api body</p>",
			"created": 1700000000,
			"author": {"name": "Li Si"}
		}`))
	}))
	defer srv.Close()

	c := New(fetch.New(fetch.Options{}), srv.URL, zerolog.Nop())
	rec := c.Resolve(context.Background(), "https://zhuanlan.zhihu.com/p/987654")
	if rec == nil {
		t.Fatal("want record, got nil")
	}
	if rec.Title != "API title" || rec.Author != "Li Si" || rec.Date != "2023-11-14" {
		t.Errorf("metadata = %q/%q/%q", rec.Title, rec.Author, rec.Date)
	}
	if rec.URL != "https://zhuanlan.zhihu.com/p/987654" {
		t.Errorf("url = %q, want synthesized article URL", rec.URL)
	}
	if !strings.Contains(rec.Content.Text(), "api body") {
		t.Error("content fragment missing")
	}
}

func TestResolveFailuresReturnNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/articles/1"):
			http.Error(w, "denied", http.StatusForbidden)
		case strings.Contains(r.URL.Path, "/articles/2"):
			w.Write([]byte("<html>block page</html>"))
		case strings.Contains(r.URL.Path, "/articles/3"):
			w.Write([]byte(`{"title": "t", "content": ""}`))
		}
	}))
	defer srv.Close()

	c := New(fetch.New(fetch.Options{}), srv.URL, zerolog.Nop())
	ctx := context.Background()
	for _, u := range []string{
		"https://zhuanlan.zhihu.com/p/1", // HTTP error
		"https://zhuanlan.zhihu.com/p/2", // not JSON
		"https://zhuanlan.zhihu.com/p/3", // empty content
		"https://example.com/no-id",      // inapplicable URL
	} {
		if rec := c.Resolve(ctx, u); rec != nil {
			t.Errorf("Resolve(%q) = %+v, want nil", u, rec)
		}
	}
}

func TestResolveAnswerURLSynthesis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": "<p>a</p>", "question": {"id": 123}, "author": {"url_token": "tok"}}`))
	}))
	defer srv.Close()

	c := New(fetch.New(fetch.Options{}), srv.URL, zerolog.Nop())
	rec := c.Resolve(context.Background(), "https://www.zhihu.com/question/123/answer/456")
	if rec == nil {
		t.Fatal("want record")
	}
	if want := "https://www.zhihu.com/question/123/answer/456"; rec.URL != want {
		t.Errorf("url = %q, want %q", rec.URL, want)
	}
	if rec.Author != "tok" {
		t.Errorf("author = %q, want url_token fallback", rec.Author)
	}
}
