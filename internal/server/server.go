// Package server exposes the crawler over HTTP.
//
// Responses use a {code, message, data} envelope and the HTTP status always
// matches the envelope code. Crawl failures are reported as code 500 with
// the failure's error message but still carry the failed result in data, so
// clients get the platform and timestamp even for a dead URL.
package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/crawler"
)

// maxBatchSize bounds one batch request; batches run sequentially, so this
// also bounds how long a single request can hold a connection.
const maxBatchSize = 10

// defaultRenderTimeout applies when neither the service configuration nor
// the request sets a timeout.
const defaultRenderTimeout = 30 * time.Second

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type crawlRequest struct {
	URL     string             `json:"url"`
	Timeout int                `json:"timeout"`
	Cookies browser.CookieSpec `json:"cookies"`
}

type batchCrawlRequest struct {
	URLs    []string           `json:"urls"`
	Timeout int                `json:"timeout"`
	Cookies browser.CookieSpec `json:"cookies"`
}

// Server routes HTTP requests to a crawler.
type Server struct {
	crawler *crawler.Crawler
	// renderTimeout is the configured default for requests that omit the
	// timeout field; an explicit per-request timeout still wins.
	renderTimeout time.Duration
}

func New(c *crawler.Crawler, renderTimeout time.Duration) *Server {
	if renderTimeout <= 0 {
		renderTimeout = defaultRenderTimeout
	}
	return &Server{crawler: c, renderTimeout: renderTimeout}
}

// Handler returns the full route set wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /crawl", s.handleCrawl)
	mux.HandleFunc("POST /crawl/batch", s.handleCrawlBatch)
	mux.HandleFunc("GET /health", s.handleHealth)
	return logRequests(mux)
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, apiResponse{Code: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}
	if req.URL == "" {
		writeEnvelope(w, apiResponse{Code: http.StatusBadRequest, Message: "URL is required"})
		return
	}
	if !validURL(req.URL) {
		writeEnvelope(w, apiResponse{Code: http.StatusBadRequest, Message: "Invalid URL format"})
		return
	}

	result := s.crawler.Crawl(r.Context(), req.URL, s.options(req.Timeout, req.Cookies))
	if result.Success {
		writeEnvelope(w, apiResponse{Code: http.StatusOK, Message: "Success", Data: result})
		return
	}
	msg := result.Error
	if msg == "" {
		msg = "Crawl failed"
	}
	writeEnvelope(w, apiResponse{Code: http.StatusInternalServerError, Message: msg, Data: result})
}

func (s *Server) handleCrawlBatch(w http.ResponseWriter, r *http.Request) {
	var req batchCrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, apiResponse{Code: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}
	if len(req.URLs) == 0 {
		writeEnvelope(w, apiResponse{Code: http.StatusBadRequest, Message: "URLs array is required"})
		return
	}
	if len(req.URLs) > maxBatchSize {
		writeEnvelope(w, apiResponse{Code: http.StatusBadRequest, Message: "Maximum 10 URLs per batch"})
		return
	}

	results := s.crawler.CrawlBatch(r.Context(), req.URLs, s.options(req.Timeout, req.Cookies))
	writeEnvelope(w, apiResponse{Code: http.StatusOK, Message: "Success", Data: results})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) options(timeoutMs int, cookies browser.CookieSpec) crawler.Options {
	timeout := s.renderTimeout
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	return crawler.Options{
		Timeout: timeout,
		Cookies: cookies,
	}
}

// validURL requires an absolute URL with a host; anything else would be
// handed to the browser as a navigation to nowhere.
func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func writeEnvelope(w http.ResponseWriter, resp apiResponse) {
	writeJSON(w, resp.Code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}

// logRequests emits one structured line per request with the final status
// and elapsed time.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
