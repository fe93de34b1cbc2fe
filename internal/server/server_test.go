package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/crawler"
)

type stubRenderer struct {
	pages map[string]*browser.Page
	errs  map[string]error
	seen  []browser.Request
}

func (s *stubRenderer) Render(_ context.Context, req browser.Request) (*browser.Page, error) {
	s.seen = append(s.seen, req)
	if err, ok := s.errs[req.URL]; ok {
		return nil, err
	}
	if page, ok := s.pages[req.URL]; ok {
		return page, nil
	}
	return &browser.Page{URL: req.URL, Success: true}, nil
}

func newTestHandler(r browser.Renderer) http.Handler {
	return New(crawler.New(r), 0).Handler()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, string, json.RawMessage) {
	t.Helper()
	var env struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env.Code, env.Message, env.Data
}

func TestCrawlEndpointValidation(t *testing.T) {
	h := newTestHandler(&stubRenderer{})

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing url", `{}`, "URL is required"},
		{"empty url", `{"url":""}`, "URL is required"},
		{"relative url", `{"url":"example.com/path"}`, "Invalid URL format"},
		{"scheme only", `{"url":"https://"}`, "Invalid URL format"},
		{"bad json", `{"url":`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/crawl", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			code, message, _ := decodeEnvelope(t, rec)
			if code != 400 || message != tt.message {
				t.Errorf("envelope = %d %q, want 400 %q", code, message, tt.message)
			}
		})
	}
}

func TestCrawlEndpointSuccess(t *testing.T) {
	url := "https://zhuanlan.zhihu.com/p/1"
	h := newTestHandler(&stubRenderer{pages: map[string]*browser.Page{
		url: {
			HTML:     `<h1 class="Post-Title">标题</h1>`,
			Markdown: "正文。",
			URL:      url,
			Success:  true,
		},
	}})

	rec := postJSON(t, h, "/crawl", `{"url":"`+url+`","cookies":"session=abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	code, message, data := decodeEnvelope(t, rec)
	if code != 200 || message != "Success" {
		t.Fatalf("envelope = %d %q", code, message)
	}

	var result crawler.CrawlResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Title != "标题" || result.Platform != "zhihu" {
		t.Errorf("result = %+v", result)
	}
}

func TestCrawlEndpointFailure(t *testing.T) {
	url := "https://example.com/down"
	h := newTestHandler(&stubRenderer{errs: map[string]error{
		url: errors.New("net::ERR_TIMED_OUT"),
	}})

	rec := postJSON(t, h, "/crawl", `{"url":"`+url+`"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	code, message, data := decodeEnvelope(t, rec)
	if code != 500 || message != "net::ERR_TIMED_OUT" {
		t.Errorf("envelope = %d %q", code, message)
	}

	var result crawler.CrawlResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Success || result.URL != url {
		t.Errorf("result = %+v", result)
	}
}

func TestBatchEndpointValidation(t *testing.T) {
	h := newTestHandler(&stubRenderer{})

	rec := postJSON(t, h, "/crawl/batch", `{"urls":[]}`)
	if code, message, _ := decodeEnvelope(t, rec); code != 400 || message != "URLs array is required" {
		t.Errorf("empty batch envelope = %d %q", code, message)
	}

	urls := make([]string, 0, maxBatchSize+1)
	for i := 0; i <= maxBatchSize; i++ {
		urls = append(urls, `"https://example.com/p"`)
	}
	rec = postJSON(t, h, "/crawl/batch", `{"urls":[`+strings.Join(urls, ",")+`]}`)
	if code, message, _ := decodeEnvelope(t, rec); code != 400 || message != "Maximum 10 URLs per batch" {
		t.Errorf("oversize batch envelope = %d %q", code, message)
	}
}

func TestBatchEndpointKeepsOrder(t *testing.T) {
	h := newTestHandler(&stubRenderer{errs: map[string]error{
		"https://example.com/b": errors.New("boom"),
	}})

	rec := postJSON(t, h, "/crawl/batch",
		`{"urls":["https://example.com/a","https://example.com/b","https://example.com/c"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	code, _, data := decodeEnvelope(t, rec)
	if code != 200 {
		t.Fatalf("envelope code = %d", code)
	}

	var results []crawler.CrawlResult
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	wantURLs := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
	for i, want := range wantURLs {
		if results[i].URL != want {
			t.Errorf("results[%d].URL = %q, want %q", i, results[i].URL, want)
		}
	}
	if !results[0].Success || results[1].Success || !results[2].Success {
		t.Errorf("success flags = %v %v %v", results[0].Success, results[1].Success, results[2].Success)
	}
}

func TestRenderTimeoutDefaults(t *testing.T) {
	stub := &stubRenderer{}
	h := New(crawler.New(stub), 5*time.Second).Handler()

	postJSON(t, h, "/crawl", `{"url":"https://example.com/a"}`)
	postJSON(t, h, "/crawl", `{"url":"https://example.com/b","timeout":1000}`)

	if len(stub.seen) != 2 {
		t.Fatalf("renderer saw %d requests", len(stub.seen))
	}
	if stub.seen[0].Timeout != 5*time.Second {
		t.Errorf("omitted timeout = %v, want configured default 5s", stub.seen[0].Timeout)
	}
	if stub.seen[1].Timeout != time.Second {
		t.Errorf("explicit timeout = %v, want 1s", stub.seen[1].Timeout)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(&stubRenderer{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("timestamp missing")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubRenderer{})

	req := httptest.NewRequest(http.MethodGet, "/crawl", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
