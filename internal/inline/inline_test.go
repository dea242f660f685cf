package inline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"snapmd/internal/fetch"
)

func fragment(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Find("body")
}

func TestInlineRewritesImages(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	frag := fragment(t, `<div>
		<img src="`+srv.URL+`/a.jpg" srcset="a-2x.jpg 2x">
		<img data-actualsrc="/b.jpg">
	</div>`)
	inliner := New(fetch.New(fetch.Options{}), zerolog.Nop())
	inliner.Inline(context.Background(), frag, srv.URL+"/post")

	frag.Find("img").Each(func(i int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if !strings.HasPrefix(src, "data:image/jpeg;base64,") {
			t.Errorf("img %d src = %q, want data URL", i, src)
		}
		if _, ok := img.Attr("srcset"); ok {
			t.Errorf("img %d still has srcset", i)
		}
	})
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("server hits = %d, want 2", n)
	}
}

func TestInlineIdempotent(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	const dataSrc = "data:image/png;base64,AAAA"
	frag := fragment(t, `<div><img src="`+dataSrc+`"><img src="`+dataSrc+`"></div>`)
	inliner := New(fetch.New(fetch.Options{}), zerolog.Nop())
	inliner.Inline(context.Background(), frag, srv.URL)

	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("server hits = %d, want 0 for already-inlined fragment", n)
	}
	frag.Find("img").Each(func(i int, img *goquery.Selection) {
		if src, _ := img.Attr("src"); src != dataSrc {
			t.Errorf("img %d src changed to %q", i, src)
		}
	})
}

func TestInlineFailureLeavesSourceUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{1})
	}))
	defer srv.Close()

	frag := fragment(t, `<div><img src="`+srv.URL+`/bad.png"><img src="`+srv.URL+`/good.png"></div>`)
	inliner := New(fetch.New(fetch.Options{}), zerolog.Nop())
	inliner.Inline(context.Background(), frag, srv.URL)

	srcs := []string{}
	frag.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		srcs = append(srcs, src)
	})
	if srcs[0] != srv.URL+"/bad.png" {
		t.Errorf("failed image src = %q, want original preserved", srcs[0])
	}
	if !strings.HasPrefix(srcs[1], "data:image/png;base64,") {
		t.Errorf("good image src = %q, want inlined", srcs[1])
	}
}

func TestInlineSharesCacheAcrossDuplicates(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{9})
	}))
	defer srv.Close()

	f := fetch.New(fetch.Options{})
	inliner := New(f, zerolog.Nop())
	first := fragment(t, `<div><img src="`+srv.URL+`/same.png"></div>`)
	inliner.Inline(context.Background(), first, srv.URL)
	second := fragment(t, `<div><img src="`+srv.URL+`/same.png"></div>`)
	inliner.Inline(context.Background(), second, srv.URL)

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hits = %d, want payload cached across fragments", n)
	}
}
