package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/platform"
)

// fakeRenderer serves canned pages per URL and records the requests it saw.
type fakeRenderer struct {
	pages map[string]*browser.Page
	errs  map[string]error
	seen  []browser.Request
}

func (f *fakeRenderer) Render(_ context.Context, req browser.Request) (*browser.Page, error) {
	f.seen = append(f.seen, req)
	if err, ok := f.errs[req.URL]; ok {
		return nil, err
	}
	if page, ok := f.pages[req.URL]; ok {
		return page, nil
	}
	return &browser.Page{URL: req.URL, Success: true}, nil
}

func TestCrawlSuccess(t *testing.T) {
	url := "https://zhuanlan.zhihu.com/p/123"
	r := &fakeRenderer{pages: map[string]*browser.Page{
		url: {
			HTML:     `<h1 class="Post-Title">调度器内幕</h1><div class="AuthorInfo-name">张三</div>`,
			Markdown: "正文内容。",
			URL:      url,
			Success:  true,
		},
	}}

	got := New(r).Crawl(context.Background(), url, Options{})

	if !got.Success {
		t.Fatalf("Success = false, error = %q", got.Error)
	}
	if got.Platform != platform.Zhihu {
		t.Errorf("Platform = %s", got.Platform)
	}
	if got.Title != "调度器内幕" || got.Author != "张三" || got.Content != "正文内容。" {
		t.Errorf("extracted fields = %q / %q / %q", got.Title, got.Author, got.Content)
	}
	if _, err := time.Parse(time.RFC3339, got.CrawledAt); err != nil {
		t.Errorf("CrawledAt %q is not RFC 3339: %v", got.CrawledAt, err)
	}
	if len(r.seen) != 1 || !r.seen[0].AntiDetection {
		t.Errorf("renderer request = %+v", r.seen)
	}
}

func TestCrawlUnknownPlatformUsesGenericExtractor(t *testing.T) {
	url := "https://weibo.com/hot"
	r := &fakeRenderer{pages: map[string]*browser.Page{
		url: {
			HTML:    `<html><head><title>微博热搜</title><meta name="description" content="实时热搜榜单"></head></html>`,
			URL:     url,
			Success: true,
		},
	}}

	got := New(r).Crawl(context.Background(), url, Options{})

	if !got.Success {
		t.Fatalf("Success = false, error = %q", got.Error)
	}
	if got.Platform != platform.Unknown {
		t.Errorf("Platform = %s", got.Platform)
	}
	if got.Title != "微博热搜" || got.Content != "实时热搜榜单" {
		t.Errorf("Title = %q, Content = %q", got.Title, got.Content)
	}
}

func TestCrawlRendererError(t *testing.T) {
	url := "https://example.com/down"
	r := &fakeRenderer{errs: map[string]error{url: errors.New("render example.com: connection refused")}}

	got := New(r).Crawl(context.Background(), url, Options{})

	if got.Success {
		t.Fatal("Success = true for a failed render")
	}
	if got.Error != "render example.com: connection refused" {
		t.Errorf("Error = %q", got.Error)
	}
	if got.URL != url {
		t.Errorf("URL = %q", got.URL)
	}
}

func TestCrawlPageReportedFailure(t *testing.T) {
	url := "https://example.com/slow"
	r := &fakeRenderer{pages: map[string]*browser.Page{
		url: {URL: url, Success: false, ErrorMessage: "net::ERR_TIMED_OUT"},
	}}

	got := New(r).Crawl(context.Background(), url, Options{})

	if got.Success {
		t.Fatal("Success = true for a page-reported failure")
	}
	if got.Error != "net::ERR_TIMED_OUT" {
		t.Errorf("Error = %q", got.Error)
	}
}

func TestCrawlPageFailureWithoutMessage(t *testing.T) {
	url := "https://example.com/blank"
	r := &fakeRenderer{pages: map[string]*browser.Page{
		url: {URL: url, Success: false},
	}}

	got := New(r).Crawl(context.Background(), url, Options{})

	if got.Error != failureMessage {
		t.Errorf("Error = %q, want %q", got.Error, failureMessage)
	}
}

func TestCrawlScopesCookiesToPlatform(t *testing.T) {
	var spec browser.CookieSpec
	if err := spec.UnmarshalJSON([]byte(`"session=abc; theme=dark"`)); err != nil {
		t.Fatal(err)
	}

	r := &fakeRenderer{}
	New(r).Crawl(context.Background(), "https://www.zhihu.com/question/1", Options{Cookies: spec})

	if len(r.seen) != 1 {
		t.Fatalf("renderer saw %d requests", len(r.seen))
	}
	cookies := r.seen[0].Cookies
	if len(cookies) != 2 {
		t.Fatalf("Cookies = %+v", cookies)
	}
	for _, c := range cookies {
		if c.Domain != ".zhihu.com" {
			t.Errorf("cookie %s domain = %q, want .zhihu.com", c.Name, c.Domain)
		}
	}
}

func TestCrawlBatchKeepsInputOrder(t *testing.T) {
	urls := []string{
		"https://www.zhihu.com/question/1",
		"https://example.com/down",
		"https://x.com/alice/status/2",
	}
	r := &fakeRenderer{
		pages: map[string]*browser.Page{
			urls[0]: {URL: urls[0], Success: true, HTML: "<html></html>"},
			urls[2]: {URL: urls[2], Success: true, HTML: "<html></html>"},
		},
		errs: map[string]error{urls[1]: errors.New("boom")},
	}

	got := New(r).CrawlBatch(context.Background(), urls, Options{})

	if len(got) != len(urls) {
		t.Fatalf("got %d results for %d urls", len(got), len(urls))
	}
	for i, url := range urls {
		if got[i].URL != url {
			t.Errorf("result[%d].URL = %q, want %q", i, got[i].URL, url)
		}
	}
	if !got[0].Success || got[1].Success || !got[2].Success {
		t.Errorf("success flags = %v %v %v", got[0].Success, got[1].Success, got[2].Success)
	}
	if got[1].Error != "boom" {
		t.Errorf("result[1].Error = %q", got[1].Error)
	}
}

func TestCrawlBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRenderer{}
	got := New(r).CrawlBatch(ctx, []string{"https://example.com/a", "https://example.com/b"}, Options{})

	if len(got) != 2 {
		t.Fatalf("got %d results", len(got))
	}
	for i, res := range got {
		if res.Success {
			t.Errorf("result[%d] succeeded under a cancelled context", i)
		}
	}
	if len(r.seen) != 0 {
		t.Errorf("renderer was invoked %d times after cancellation", len(r.seen))
	}
}
