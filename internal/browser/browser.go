// Package browser wraps a go-rod browser used for list-page discovery and
// for logging in to sites that gate content behind a session.
package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"snapmd/internal/fetch"
)

// Options configures a browser launch.
type Options struct {
	ProxyURL string
	// Headed shows the browser window, needed for interactive login.
	Headed bool
}

// Browser owns a rod.Browser and its launcher.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	proxyURL string
}

// New launches a browser with the given options.
func New(opts Options) (*Browser, error) {
	l := launcher.New().Headless(!opts.Headed)
	if opts.ProxyURL != "" {
		l = l.Proxy(opts.ProxyURL)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, err
	}
	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, err
	}

	return &Browser{browser: b, launcher: l, proxyURL: opts.ProxyURL}, nil
}

// ProxyURL returns the proxy the browser was launched with.
func (b *Browser) ProxyURL() string { return b.proxyURL }

// NewPage opens a fresh page.
func (b *Browser) NewPage() (*rod.Page, error) {
	return b.browser.Page(proto.TargetCreateTarget{})
}

// ExportCookies copies the browser's session cookies into the fetch
// client, so HTTP requests carry the same credentials as the page.
func (b *Browser) ExportCookies(c *fetch.Client) error {
	cookies, err := b.browser.GetCookies()
	if err != nil {
		return err
	}
	for _, ck := range cookies {
		host := strings.TrimPrefix(ck.Domain, ".")
		if host == "" {
			continue
		}
		c.AddCookie("https://"+host, ck.Name, ck.Value)
	}
	return nil
}

// Close shuts down the browser and kills the launched process.
func (b *Browser) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return nil
}
