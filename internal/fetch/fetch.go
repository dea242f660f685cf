// Package fetch provides the session-scoped document and image fetcher.
// Fetched documents and inlined image payloads are memoized by normalized
// URL for the lifetime of one Client; there is no eviction.
package fetch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

// FetchError reports a non-2xx/3xx response or a transport failure.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// JSONError reports a body that could not be parsed as JSON even though
// the response status was acceptable. Usually a block page.
type JSONError struct {
	URL string
	Err error
}

func (e *JSONError) Error() string {
	return fmt.Sprintf("parse JSON from %s: %v", e.URL, e.Err)
}

func (e *JSONError) Unwrap() error { return e.Err }

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Referers maps a host (or ".suffix") to the Referer sent for it.
	// Unmatched hosts get their own origin.
	Referers map[string]string
	Logger   zerolog.Logger
}

// Client fetches documents and binary payloads with the session cookies
// attached, caching results per normalized URL.
type Client struct {
	http     *http.Client
	ua       string
	referers map[string]string
	log      zerolog.Logger

	mu       sync.Mutex
	docs     map[string]*goquery.Document
	dataURLs map[string]string
}

// New creates a Client with a fresh cookie jar and empty caches.
func New(opts Options) *Client {
	jar, _ := cookiejar.New(nil)
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	referers := opts.Referers
	if referers == nil {
		referers = map[string]string{}
	}
	return &Client{
		http:     &http.Client{Jar: jar, Timeout: timeout},
		ua:       ua,
		referers: referers,
		log:      opts.Logger,
		docs:     map[string]*goquery.Document{},
		dataURLs: map[string]string{},
	}
}

// SetCookies installs cookies parsed from a raw "k=v; k2=v2" header string
// for the given origin, so subsequent requests are credentialed.
func (c *Client) SetCookies(origin, raw string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("parse cookie origin: %w", err)
	}
	var cookies []*http.Cookie
	for _, part := range strings.Split(raw, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: kv[0], Value: kv[1]})
	}
	c.http.Jar.SetCookies(u, cookies)
	return nil
}

// AddCookie installs a single named cookie for the given origin.
func (c *Client) AddCookie(origin, name, value string) {
	if u, err := url.Parse(origin); err == nil {
		c.http.Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value}})
	}
}

func (c *Client) refererFor(u *url.URL) string {
	host := u.Hostname()
	if r, ok := c.referers[host]; ok {
		return r
	}
	for k, r := range c.referers {
		if strings.HasPrefix(k, ".") && strings.HasSuffix(host, k) {
			return r
		}
	}
	return u.Scheme + "://" + u.Host + "/"
}

func (c *Client) get(ctx context.Context, rawurl, accept string) ([]byte, string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, "", &FetchError{URL: rawurl, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, "", &FetchError{URL: rawurl, Err: err}
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", accept)
	req.Header.Set("Referer", c.refererFor(u))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: rawurl, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, "", &FetchError{URL: rawurl, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchError{URL: rawurl, Err: err}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Document returns the parsed document for rawurl, from cache when
// available. Failures are never retried here; retry and fallback policy
// belongs to the resolver.
func (c *Client) Document(ctx context.Context, rawurl string) (*goquery.Document, error) {
	c.mu.Lock()
	if doc, ok := c.docs[rawurl]; ok {
		c.mu.Unlock()
		return doc, nil
	}
	c.mu.Unlock()

	body, _, err := c.get(ctx, rawurl, acceptHTML)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, &FetchError{URL: rawurl, Err: err}
	}
	doc.Url, _ = url.Parse(rawurl)

	c.mu.Lock()
	// Write-once: the first parse wins on a racing refetch.
	if cached, ok := c.docs[rawurl]; ok {
		doc = cached
	} else {
		c.docs[rawurl] = doc
	}
	c.mu.Unlock()

	c.log.Debug().Str("url", rawurl).Int("bytes", len(body)).Msg("document fetched")
	return doc, nil
}

// JSON fetches rawurl with JSON headers and decodes the body into v.
// Responses are not cached. A 2xx body that is not valid JSON yields a
// JSONError, since that is usually a block page in disguise.
func (c *Client) JSON(ctx context.Context, rawurl string, v any) error {
	body, _, err := c.get(ctx, rawurl, "application/json, text/plain, */*")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &JSONError{URL: rawurl, Err: err}
	}
	return nil
}

// DataURL fetches the binary payload at rawurl and returns it encoded as
// a data URL, memoized by URL. The content type comes from the response
// header, defaulting to application/octet-stream.
func (c *Client) DataURL(ctx context.Context, rawurl string) (string, error) {
	c.mu.Lock()
	if d, ok := c.dataURLs[rawurl]; ok {
		c.mu.Unlock()
		return d, nil
	}
	c.mu.Unlock()

	body, contentType, err := c.get(ctx, rawurl, "image/avif,image/webp,image/*,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	d := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)

	c.mu.Lock()
	if cached, ok := c.dataURLs[rawurl]; ok {
		d = cached
	} else {
		c.dataURLs[rawurl] = d
	}
	c.mu.Unlock()
	return d, nil
}
