package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"snapmd/internal/config"
	"snapmd/internal/fetch"
	"snapmd/internal/inline"
	"snapmd/internal/markdown"
	"snapmd/internal/platform"
	"snapmd/internal/resolver"
)

const testPage = `<html><body>
<h1 class="t">A Fine Post</h1>
<div class="a">Ann</div>
<time class="d">2024-03-04</time>
<div class="c">
<p>This paragraph carries enough visible text to clear the minimum
content length threshold used by the truncation heuristic, so the
document extraction is accepted as complete without any recovery.</p>
<img src="/pic.png">
</div>
</body></html>`

// 1x1 PNG header bytes are enough for the inliner; it never decodes.
var testPNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func testEnv(t *testing.T, dir string) *Env {
	t.Helper()
	p := &platform.Platform{
		Name:  "testsite",
		Hosts: []string{"any"},
		Fields: platform.FieldRules{
			Title:   []platform.Rule{{Selector: ".t"}},
			Content: []platform.Rule{{Selector: ".c"}},
			Author:  []platform.Rule{{Selector: ".a"}},
			Date:    []platform.Rule{{Selector: ".d"}},
		},
	}
	f := fetch.New(fetch.Options{Logger: zerolog.Nop()})
	r := resolver.New(resolver.Config{
		Fetch:  f,
		Lookup: func(string) *platform.Platform { return p },
		Logger: zerolog.Nop(),
	})
	cfg := config.Default()
	cfg.OutputDir = dir
	return &Env{
		Fetch:     f,
		Resolver:  r,
		Inliner:   inline.New(f, zerolog.Nop()),
		Converter: markdown.New(zerolog.Nop()),
		Config:    cfg,
		Log:       zerolog.Nop(),
	}
}

func TestSaveOnePipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/post":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(testPage))
		case "/pic.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(testPNG)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	env := testEnv(t, dir)

	path, err := env.SaveOne(context.Background(), srv.URL+"/post")
	if err != nil {
		t.Fatalf("SaveOne() error: %v", err)
	}
	if filepath.Base(path) != "(2024-03-04)A Fine Post_Ann.md" {
		t.Errorf("unexpected filename %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	doc := string(data)
	for _, want := range []string{
		"# A Fine Post",
		"**Author:** Ann",
		"**Date:** 2024-03-04",
		"data:image/png;base64,",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q\n%s", want, doc)
		}
	}
}

func TestSaveOneDryRunWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	dir := t.TempDir()
	env := testEnv(t, dir)
	env.DryRun = true

	name, err := env.SaveOne(context.Background(), srv.URL+"/post")
	if err != nil {
		t.Fatalf("SaveOne() error: %v", err)
	}
	if name != "(2024-03-04)A Fine Post_Ann.md" {
		t.Errorf("unexpected name %q", name)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Errorf("dry run wrote %d files", len(files))
	}
}
