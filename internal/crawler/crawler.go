// Package crawler orchestrates one crawl: platform detection, cookie
// normalization, page rendering, and content extraction, folded into a
// single result record.
//
// Crawls do not fail as Go errors. Every outcome, including renderer
// breakage and extractor panics on hostile markup, is reported as a
// CrawlResult with Success=false and a message, so a batch always yields
// one result per requested URL.
package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/extract"
	"github.com/mirrorops/contentmirror/internal/platform"
)

// failureMessage is the catch-all when the renderer reports an unsuccessful
// page without saying why.
const failureMessage = "Crawl failed"

// CrawlResult is the flattened outcome of crawling one URL.
type CrawlResult struct {
	Success     bool              `json:"success"`
	Platform    platform.Platform `json:"platform"`
	URL         string            `json:"url"`
	Title       string            `json:"title,omitempty"`
	Author      string            `json:"author,omitempty"`
	Content     string            `json:"content,omitempty"`
	Images      []string          `json:"images,omitempty"`
	Videos      []string          `json:"videos,omitempty"`
	PublishedAt string            `json:"published_at,omitempty"`
	CrawledAt   string            `json:"crawled_at"`
	Error       string            `json:"error,omitempty"`
}

// Options tunes one crawl. The zero value is usable.
type Options struct {
	// Timeout bounds the render; zero means the renderer default.
	Timeout time.Duration
	// Cookies is forwarded to the page after being scoped to the detected
	// platform's cookie domain.
	Cookies browser.CookieSpec
}

// Crawler runs crawls against a single renderer backend.
type Crawler struct {
	renderer browser.Renderer
}

func New(r browser.Renderer) *Crawler {
	return &Crawler{renderer: r}
}

// Crawl fetches and extracts one URL. The returned result is never nil.
func (c *Crawler) Crawl(ctx context.Context, url string, opts Options) *CrawlResult {
	p := platform.Detect(url)

	log.Debug().
		Str("url", url).
		Str("platform", string(p)).
		Msg("starting crawl")

	req := browser.Request{
		URL:           url,
		Cookies:       opts.Cookies.Normalize(platform.CookieDomain(p)),
		Timeout:       opts.Timeout,
		AntiDetection: true,
	}

	page, err := c.renderer.Render(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("render failed")
		return failure(p, url, err.Error())
	}
	if !page.Success {
		msg := page.ErrorMessage
		if msg == "" {
			msg = failureMessage
		}
		log.Warn().Str("url", url).Str("reason", msg).Msg("page reported failure")
		return failure(p, url, msg)
	}

	content, err := safeExtract(p, page)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("extraction panicked")
		return failure(p, url, err.Error())
	}

	log.Info().
		Str("url", url).
		Str("platform", string(p)).
		Int("images", len(content.Images)).
		Int("videos", len(content.Videos)).
		Msg("crawl finished")

	return &CrawlResult{
		Success:     true,
		Platform:    p,
		URL:         url,
		Title:       content.Title,
		Author:      content.Author,
		Content:     content.Content,
		Images:      content.Images,
		Videos:      content.Videos,
		PublishedAt: content.PublishedAt,
		CrawledAt:   now(),
	}
}

// CrawlBatch crawls URLs sequentially and returns one result per input, in
// input order. A cancelled context fails the remaining URLs instead of
// truncating the slice.
func (c *Crawler) CrawlBatch(ctx context.Context, urls []string, opts Options) []*CrawlResult {
	results := make([]*CrawlResult, 0, len(urls))
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			results = append(results, failure(platform.Detect(url), url, err.Error()))
			continue
		}
		results = append(results, c.Crawl(ctx, url, opts))
	}
	return results
}

// safeExtract shields the pipeline from extractor panics; the regex
// strategies run over arbitrary attacker-controlled markup.
func safeExtract(p platform.Platform, page *browser.Page) (content extract.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction failed: %v", r)
		}
	}()
	content = extract.ForPlatform(p).Extract(page)
	return content, nil
}

func failure(p platform.Platform, url, msg string) *CrawlResult {
	return &CrawlResult{
		Platform:  p,
		URL:       url,
		CrawledAt: now(),
		Error:     msg,
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
