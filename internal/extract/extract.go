// Package extract turns rendered pages into normalized content records.
//
// Each platform has its own strategy built from ordered fallback chains: the
// target sites embed the canonical data in several redundant forms (semantic
// HTML, hydration JSON, meta tags), and markup changes frequently, so every
// field is resolved by trying the most specific pattern first and degrading
// to progressively more generic ones. Strategies never fail; a field whose
// chain finds nothing is simply left empty.
package extract

import (
	"regexp"
	"strings"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/platform"
	"github.com/mirrorops/contentmirror/internal/textutil"
)

// Content is the normalized record produced by one extraction.
type Content struct {
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Content     string   `json:"content"`
	Images      []string `json:"images"`
	Videos      []string `json:"videos"`
	PublishedAt string   `json:"published_at,omitempty"`
}

// Extractor is one platform strategy. Implementations are stateless and
// must not panic on arbitrary markup.
type Extractor interface {
	Platform() platform.Platform
	Extract(page *browser.Page) Content
}

var extractors = map[platform.Platform]Extractor{
	platform.Zhihu:       zhihuExtractor{},
	platform.Xiaohongshu: xiaohongshuExtractor{},
	platform.Twitter:     twitterExtractor{},
	platform.Wechat:      wechatExtractor{},
	platform.Unknown:     genericExtractor{},
}

// ForPlatform returns the strategy for a platform, defaulting to the
// generic one. The extractor set is closed: new platforms are added here
// and in the platform package, not registered at runtime.
func ForPlatform(p platform.Platform) Extractor {
	if e, ok := extractors[p]; ok {
		return e
	}
	return genericExtractor{}
}

var (
	pageTitleRe = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
)

// pageTitle pulls the <title> text, cleaned. Empty when absent.
func pageTitle(html string) string {
	m := pageTitleRe.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return textutil.Clean(m[1])
}

// unescapeSlashes undoes the two slash escapes hydration JSON uses.
func unescapeSlashes(s string) string {
	s = strings.ReplaceAll(s, "\\u002F", "/")
	return strings.ReplaceAll(s, "\\/", "/")
}

// stripTags removes embedded markup, leaving a space so adjacent text does
// not run together.
func stripTags(s string) string {
	return tagRe.ReplaceAllString(s, " ")
}

// dedupeOrdered keeps the first occurrence of each entry, capped at max.
func dedupeOrdered(in []string, max int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}

// uniqueUnordered de-duplicates with set semantics; order is whatever map
// iteration yields. Callers that need stable ordering use dedupeOrdered.
func uniqueUnordered(in []string, max int) []string {
	set := make(map[string]struct{}, len(in))
	for _, v := range in {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}

// firstMatch runs an ordered fallback chain over the input and returns the
// first capture group of the first pattern that matches.
func firstMatch(input string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(input); m != nil {
			return m[1]
		}
	}
	return ""
}

// allMatches collects the first capture group of every match of every
// pattern, in pattern order.
func allMatches(input string, patterns []*regexp.Regexp) []string {
	var out []string
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(input, -1) {
			out = append(out, m[1])
		}
	}
	return out
}
