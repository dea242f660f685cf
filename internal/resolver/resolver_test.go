package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"snapmd/internal/api"
	"snapmd/internal/fetch"
	"snapmd/internal/platform"
)

var testPlatform = &platform.Platform{
	Name:  "testsite",
	Hosts: []string{"127.0.0.1"},
	Fields: platform.FieldRules{
		Title:   []platform.Rule{{Selector: "h1.title"}},
		Content: []platform.Rule{{Selector: ".post-body"}},
		Author:  []platform.Rule{{Selector: ".byline"}},
		Date:    []platform.Rule{{Selector: "time", Attr: "datetime"}},
		Canonical: []platform.Rule{
			{Selector: "link[rel=canonical]", Attr: "href"},
		},
	},
	ReadMore: platform.ReadMore{Selector: ".expand", Texts: []string{"Read more"}},
	HasState: true,
	HasAPI:   true,
}

func testResolver(t *testing.T, apiBase string) *Resolver {
	t.Helper()
	f := fetch.New(fetch.Options{})
	cfg := Config{
		Fetch:         f,
		MinContentLen: 20,
		Lookup:        func(string) *platform.Platform { return testPlatform },
		Logger:        zerolog.Nop(),
	}
	if apiBase != "" {
		cfg.API = api.New(f, apiBase, zerolog.Nop())
	}
	return New(cfg)
}

const fullPage = `<html><head>
<link rel="canonical" href="https://articles.example/posts/1">
</head><body>
<h1 class="title">A Full Post</h1>
<div class="byline">Author Person</div>
<time datetime="2024-02-03T08:00:00Z"></time>
<div class="post-body"><p>This paragraph is comfortably longer than the minimum content threshold used in tests.</p></div>
</body></html>`

func TestResolveFromDOM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fullPage))
	}))
	defer srv.Close()

	rec, err := testResolver(t, "").Resolve(context.Background(), srv.URL+"/posts/1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Title != "A Full Post" || rec.Author != "Author Person" || rec.Date != "2024-02-03" {
		t.Errorf("metadata = %q/%q/%q", rec.Title, rec.Author, rec.Date)
	}
	if rec.URL != "https://articles.example/posts/1" {
		t.Errorf("url = %q, want canonical link", rec.URL)
	}
	if !strings.Contains(rec.Content.Text(), "comfortably longer") {
		t.Error("content fragment missing")
	}
}

const truncatedPage = `<html><body>
<h1 class="title">Clipped</h1>
<div class="byline">DOM Author</div>
<div class="post-body"><p>short preview</p><button class="expand">Read more</button></div>
<script id="js-initialData" type="text/json">{
	"initialState": {"entities": {"answers": {"42": {
		"id": 42,
		"content": "<p>the complete recovered body, long past any preview gating</p>",
		"created": 1700000000,
		"question": {"id": 7, "title": "State Title"}
	}}}}
}</script>
</body></html>`

func TestTruncatedDOMRecoveredFromState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(truncatedPage))
	}))
	defer srv.Close()

	rec, err := testResolver(t, "").Resolve(context.Background(), srv.URL+"/question/7/answer/42")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(rec.Content.Text(), "complete recovered body") {
		t.Error("want embedded-state content after truncation heuristic")
	}
	if rec.Title != "State Title" {
		t.Errorf("title = %q, want state overlay", rec.Title)
	}
	// The state entity carries no author, so the DOM value must survive.
	if rec.Author != "DOM Author" {
		t.Errorf("author = %q, want DOM-sourced value retained", rec.Author)
	}
	if rec.Date != "2023-11-14" {
		t.Errorf("date = %q", rec.Date)
	}
}

func TestFetchFailureFallsBackToAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/answers/42") {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"title": "From API",
				"content": "<p>api-only body</p>",
				"created": 1600000000,
				"author": {"name": "API Author"},
				"question": {"id": 7}
			}`))
			return
		}
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	rec, err := testResolver(t, srv.URL).Resolve(context.Background(), srv.URL+"/question/7/answer/42")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Title != "From API" || rec.Author != "API Author" {
		t.Errorf("metadata = %q/%q, want API fields only", rec.Title, rec.Author)
	}
	if !strings.Contains(rec.Content.Text(), "api-only body") {
		t.Error("want API content")
	}
	if rec.URL != "https://www.zhihu.com/question/7/answer/42" {
		t.Errorf("url = %q, want synthesized from API response", rec.URL)
	}
}

func TestResolveAllSourcesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	rec, err := testResolver(t, srv.URL).Resolve(context.Background(), srv.URL+"/question/7/answer/42")
	if err != ErrContentNotFound {
		t.Fatalf("err = %v, want ErrContentNotFound", err)
	}
	if rec != nil {
		t.Error("record must be nil when everything fails")
	}
}

func TestReadMoreTextTriggersRecovery(t *testing.T) {
	page := strings.Replace(truncatedPage,
		`<p>short preview</p><button class="expand">Read more</button>`,
		`<p>this preview body is long enough to clear the length threshold but still says Read more at the end</p>`, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	rec, err := testResolver(t, "").Resolve(context.Background(), srv.URL+"/x")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(rec.Content.Text(), "complete recovered body") {
		t.Error("marker text alone must trigger state recovery")
	}
}
