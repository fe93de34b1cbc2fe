package extract

import (
	"regexp"
	"strings"
)

const maxVideos = 10

// The four generic video pattern families, applied in fixed order: direct
// <video> src, typed <source> src, lazy data-src attributes with a video
// extension, and hydration-JSON keys known to carry stream URLs.
var genericVideoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<video[^>]*src="([^"]+)"`),
	regexp.MustCompile(`(?i)<source[^>]*src="([^"]+)"[^>]*type="video`),
	regexp.MustCompile(`(?i)data-(?:video-)?src="([^"]+\.(?:mp4|m3u8|webm)[^"]*)"`),
	regexp.MustCompile(`"(?:video_?url|videoUrl|video_src|stream_url|playUrl)"\s*:\s*"([^"]+)"`),
}

// scanVideos is the platform-agnostic video pass every extractor runs after
// its own patterns. blob: URLs reference ephemeral in-page streams and are
// useless outside the browser, so they are dropped.
func scanVideos(html string) []string {
	matches := allMatches(html, genericVideoPatterns)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, v := range matches {
		v = unescapeSlashes(v)
		if v == "" || strings.HasPrefix(v, "blob:") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == maxVideos {
			break
		}
	}
	return out
}
