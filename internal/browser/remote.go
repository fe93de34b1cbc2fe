package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Remote renders pages through a crawl4ai-compatible render service. The
// service owns the browser; this client only speaks its JSON contract.
type Remote struct {
	BaseURL    string
	HTTPClient *http.Client
}

type renderRequest struct {
	URL          string            `json:"url"`
	Cookies      []Cookie          `json:"cookies,omitempty"`
	PageTimeout  int64             `json:"page_timeout"`
	WaitUntil    string            `json:"wait_until"`
	DelaySeconds float64           `json:"delay_before_return_html"`
	Magic        bool              `json:"magic"`
	Viewport     viewport          `json:"viewport"`
	Headers      map[string]string `json:"headers,omitempty"`
}

type viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type renderResponse struct {
	Success      bool           `json:"success"`
	HTML         string         `json:"html"`
	Markdown     renderMarkdown `json:"markdown"`
	ErrorMessage string         `json:"error_message"`
}

// renderMarkdown tolerates both shapes the service emits: a plain string or
// an object carrying raw_markdown.
type renderMarkdown struct {
	Raw string
}

func (m *renderMarkdown) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Raw = s
		return nil
	}
	var obj struct {
		RawMarkdown string `json:"raw_markdown"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	m.Raw = obj.RawMarkdown
	return nil
}

func (r *Remote) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// Render posts the render request and maps the service's reply onto a Page.
// A reply with success=false is not an error here; the crawler turns it into
// a failure result carrying the service's message.
func (r *Remote) Render(ctx context.Context, req Request) (*Page, error) {
	payload := renderRequest{
		URL:          req.URL,
		Cookies:      req.Cookies,
		PageTimeout:  req.timeout().Milliseconds(),
		WaitUntil:    "domcontentloaded",
		DelaySeconds: req.postLoadDelay().Seconds(),
		Magic:        req.AntiDetection,
		Viewport:     viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		Headers:      req.headers(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("render service status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var rr renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}

	log.Debug().
		Str("url", req.URL).
		Bool("success", rr.Success).
		Int("html_bytes", len(rr.HTML)).
		Msg("remote render finished")

	markdown := rr.Markdown.Raw
	if markdown == "" && rr.HTML != "" {
		markdown = DeriveMarkdown(rr.HTML)
	}

	return &Page{
		HTML:         rr.HTML,
		Markdown:     markdown,
		URL:          req.URL,
		Success:      rr.Success,
		ErrorMessage: rr.ErrorMessage,
	}, nil
}
