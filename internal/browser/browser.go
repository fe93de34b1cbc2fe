// Package browser defines the headless-browser render contract the crawler
// consumes, along with the two backends that satisfy it: a local chromedp
// driven Chromium and a remote crawl4ai-compatible render service.
package browser

import (
	"context"
	"time"
)

// Defaults applied to every render request unless overridden.
const (
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
	// Settle delay after load so client-side rendering can populate the DOM.
	DefaultPostLoadDelay = 3 * time.Second
	DefaultTimeout       = 30 * time.Second
)

// DefaultHeaders mimic a real browser; the target sites serve stripped-down
// or blocked pages to clients without them.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	}
}

// Request describes one page render.
type Request struct {
	URL           string
	Cookies       []Cookie
	Timeout       time.Duration
	PostLoadDelay time.Duration
	Headers       map[string]string
	// AntiDetection enables the automation-hiding browser flags.
	AntiDetection bool
}

func (r Request) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

func (r Request) postLoadDelay() time.Duration {
	if r.PostLoadDelay <= 0 {
		return DefaultPostLoadDelay
	}
	return r.PostLoadDelay
}

func (r Request) headers() map[string]string {
	if len(r.Headers) == 0 {
		return DefaultHeaders()
	}
	return r.Headers
}

// Page is the rendered output consumed by extraction: the raw HTML, a
// best-effort readability markdown, and the render outcome.
type Page struct {
	HTML         string
	Markdown     string
	URL          string
	Success      bool
	ErrorMessage string
}

// Renderer renders a URL in a browser context. Implementations own the
// browser lifecycle per call; no context is reused across renders.
type Renderer interface {
	Render(ctx context.Context, req Request) (*Page, error)
}
