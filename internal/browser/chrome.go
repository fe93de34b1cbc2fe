package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Chrome renders pages in a locally spawned headless Chromium via the
// DevTools protocol. Each Render call allocates and tears down its own
// browser context; nothing is pooled across calls.
type Chrome struct {
	// ExecPath overrides the Chromium binary location. Empty uses the
	// chromedp default lookup.
	ExecPath string
}

// Render navigates to req.URL, waits for the post-load settle delay, and
// captures the final DOM. The markdown field is derived locally from the
// captured HTML.
func (c *Chrome) Render(ctx context.Context, req Request) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, req.timeout())
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(DefaultViewportWidth, DefaultViewportHeight),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if req.AntiDetection {
		opts = append(opts,
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		)
	}
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	headers := make(network.Headers, len(req.headers()))
	for k, v := range req.headers() {
		headers[k] = v
	}

	start := time.Now()
	var html string
	err := chromedp.Run(browserCtx, chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		setCookies(req.Cookies),
		chromedp.Navigate(req.URL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(req.postLoadDelay()),
		chromedp.OuterHTML("html", &html),
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", req.URL, err)
	}

	log.Debug().
		Str("url", req.URL).
		Int("html_bytes", len(html)).
		Dur("elapsed", time.Since(start)).
		Msg("page rendered")

	return &Page{
		HTML:     html,
		Markdown: DeriveMarkdown(html),
		URL:      req.URL,
		Success:  true,
	}, nil
}

func setCookies(cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, ck := range cookies {
			err := network.SetCookie(ck.Name, ck.Value).
				WithDomain(ck.Domain).
				WithPath(ck.Path).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("set cookie %s: %w", ck.Name, err)
			}
		}
		return nil
	})
}
