package extract

import (
	"regexp"
	"strings"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/platform"
	"github.com/mirrorops/contentmirror/internal/textutil"
)

const (
	twitterContentCap = 5000
	twitterImageCap   = 10
)

// Tweet pages render the whole tweet into <title> as
// `X 上的 <author>："<text>"` (or `<author> on X: "<text>"`), which survives
// even when the timeline DOM is obfuscated, so title parsing is the primary
// source for author and body.
var (
	twitterAuthorRe    = regexp.MustCompile(`X 上的 ([^：:]+)[：:]`)
	twitterHandleRe    = regexp.MustCompile(`@(\w+)`)
	twitterQuotedRe    = regexp.MustCompile(`[：:]\s*["“”](.+?)["“”]\s*$`)
	twitterAfterColon  = regexp.MustCompile(`[：:]\s*(.+)$`)
	twitterShortLinkRe = regexp.MustCompile(`\s*https?://t\.co/\w+\s*$`)
)

var twitterVideoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"video_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"playbackUrl"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`src="([^"]*video\.twimg\.com[^"]+)"`),
	regexp.MustCompile(`"variants"\s*:\s*\[[^\]]*"url"\s*:\s*"([^"]+\.mp4[^"]*)"`),
	regexp.MustCompile(`"url"\s*:\s*"([^"]*video\.twimg\.com[^"]+\.mp4[^"]*)"`),
}

var (
	twitterImageRe    = regexp.MustCompile(`src="([^"]*pbs\.twimg\.com[^"]+)"`)
	twitterDatetimeRe = regexp.MustCompile(`datetime="([^"]+)"`)
)

type twitterExtractor struct{}

func (twitterExtractor) Platform() platform.Platform { return platform.Twitter }

func (twitterExtractor) Extract(page *browser.Page) Content {
	html := page.HTML
	pt := pageTitle(html)

	// The " / X" suffix is site chrome; it has to go before the body regexes
	// run because they anchor on the closing quote.
	base := strings.ReplaceAll(pt, " / X", "")

	var title, author string
	if pt != "" {
		title = strings.ReplaceAll(base, " on X:", ": ")
		author = twitterAuthor(pt)
	}

	content := twitterBody(base)

	images := twitterImages(html)

	videos := allMatches(html, twitterVideoPatterns)
	for i, v := range videos {
		videos[i] = unescapeSlashes(v)
	}
	videos = append(videos, scanVideos(html)...)
	videos = dedupeOrderedNoBlob(videos, maxVideos)

	var publishedAt string
	if m := twitterDatetimeRe.FindStringSubmatch(html); m != nil {
		// Used verbatim; the site already emits ISO 8601 here.
		publishedAt = m[1]
	}

	return Content{
		Title:       textutil.Clean(title),
		Author:      author,
		Content:     textutil.Truncate(content, twitterContentCap),
		Images:      images,
		Videos:      videos,
		PublishedAt: publishedAt,
	}
}

// twitterAuthor takes the name before the colon, falling back to the first
// @handle anywhere in the title.
func twitterAuthor(pt string) string {
	if m := twitterAuthorRe.FindStringSubmatch(pt); m != nil {
		return textutil.Clean(m[1])
	}
	if m := twitterHandleRe.FindStringSubmatch(pt); m != nil {
		return "@" + m[1]
	}
	return ""
}

// twitterBody prefers the quoted tweet text after the colon; without quote
// marks it falls back to the raw text after the colon. A trailing t.co
// shortlink is stripped either way.
func twitterBody(pt string) string {
	if pt == "" {
		return ""
	}
	if m := twitterQuotedRe.FindStringSubmatch(pt); m != nil {
		return twitterShortLinkRe.ReplaceAllString(textutil.Clean(m[1]), "")
	}
	if m := twitterAfterColon.FindStringSubmatch(pt); m != nil {
		body := textutil.Clean(strings.Trim(m[1], `"“” `))
		return twitterShortLinkRe.ReplaceAllString(body, "")
	}
	return ""
}

// twitterImages keeps media CDN URLs but drops avatar thumbnails.
func twitterImages(html string) []string {
	var candidates []string
	for _, m := range twitterImageRe.FindAllStringSubmatch(html, -1) {
		u := m[1]
		if strings.Contains(u, "_normal") || strings.Contains(u, "profile_images") {
			continue
		}
		candidates = append(candidates, u)
	}
	return uniqueUnordered(candidates, twitterImageCap)
}

func dedupeOrderedNoBlob(in []string, max int) []string {
	filtered := in[:0]
	for _, v := range in {
		if !strings.HasPrefix(v, "blob:") {
			filtered = append(filtered, v)
		}
	}
	return dedupeOrdered(filtered, max)
}
