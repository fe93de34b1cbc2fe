package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/platform"
	"github.com/mirrorops/contentmirror/internal/textutil"
)

const (
	xhsContentCap = 10000
	xhsImageCap   = 20

	// Nicknames shorter or longer than this are navigation labels or
	// corrupted captures, not real authors.
	xhsNicknameMin = 2
	xhsNicknameMax = 30

	// The hydration JSON embeds the note author before the comment thread;
	// only trust the pre-comments region when the marker sits past this
	// offset, otherwise the marker is part of head metadata.
	xhsCommentsMinOffset = 500

	// A "desc" capture longer than this is not the note description; fall
	// through to the DOM-based chains instead.
	xhsDescMax = 5000
)

// UI strings that show up in nickname-shaped JSON fields but are never an
// author name.
var xhsInvalidNames = []string{
	"登录", "关注", "http", "小红书", "发现", "通知", "我", "null",
	"评论", "wowo", "分享", "收藏", "首页",
}

// Boilerplate markers for the markdown line scan: legal footers, creator
// tooling, navigation, bare links.
var xhsSkipLineKeywords = []string{
	"沪ICP备", "营业执照", "违法不良信息", "增值电信",
	"创作中心", "业务合作", "发现", "发布", "通知", "登录",
	"[![", "http://", "https://",
}

// Infra assets embedded all over a note page; rejecting these first keeps
// avatars and sprite sheets out of the image list.
var xhsInvalidImageKeywords = []string{
	"avatar", "icon", "logo", ".js", ".css",
	"fe-static", "formula-static", "fe-video", "html2canvas",
}

// Content images always live under one of these CDN paths.
var xhsValidImageKeywords = []string{"webpic", "sns-webpic", "img.xhscdn"}

var (
	xhsOgTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<meta[^>]*property="og:title"[^>]*content="([^"]+)"`),
		regexp.MustCompile(`<meta[^>]*content="([^"]+)"[^>]*property="og:title"`),
	}

	xhsNicknameRe    = regexp.MustCompile(`"nickname"\s*:\s*"([^"]{2,50})"`)
	xhsProfileLinkRe = regexp.MustCompile(`/user/profile/[^"]*"[^>]*>([^<]{2,30})</a>`)

	xhsContentPatterns = []*regexp.Regexp{
		// The desc length ceiling is enforced in code; RE2 rejects repeat
		// counts above 1000.
		regexp.MustCompile(`"desc"\s*:\s*"([^"]{10,})"`),
		regexp.MustCompile(`(?s)id="detail-desc"[^>]*>([^<]+(?:<[^>]*>[^<]*)*)</[^>]*>`),
		regexp.MustCompile(`class="[^"]*desc[^"]*"[^>]*>([^<]+)`),
	}

	xhsImagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"urlDefault"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"url"\s*:\s*"([^"]*(?:webpic|img)[^"]*xhscdn[^"]+)"`),
		regexp.MustCompile(`(?:src|data-src)="([^"]*(?:webpic|sns-webpic)[^"]*xhscdn\.com[^"]+)"`),
	}
	xhsImageListRe = regexp.MustCompile(`"imageList"\s*:\s*\[([^\]]+)\]`)
	xhsCDNURLRe    = regexp.MustCompile(`"([^"]+xhscdn[^"]+)"`)

	xhsVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"masterUrl"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"videoUrl"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"originVideoKey"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"url"\s*:\s*"([^"]*sns-video[^"]+)"`),
		regexp.MustCompile(`video[^>]*src="([^"]+\.mp4[^"]*)"`),
	}

	// Relative Chinese timestamp with an optional leading verb and trailing
	// city qualifier, e.g. `发布于 3天前 上海`.
	xhsTimeRe = regexp.MustCompile(`(编辑于|发布于)?\s*(\d+[天小时分钟]+前)\s*(上海|北京|广州|深圳|杭州)?`)
)

type xiaohongshuExtractor struct{}

func (xiaohongshuExtractor) Platform() platform.Platform { return platform.Xiaohongshu }

func (xiaohongshuExtractor) Extract(page *browser.Page) Content {
	html := page.HTML

	content := xhsContent(html, page.Markdown)

	var publishedAt string
	if m := xhsTimeRe.FindString(html); m != "" {
		publishedAt = textutil.Clean(m)
	}

	return Content{
		Title:       xhsTitle(html),
		Author:      xhsAuthor(html),
		Content:     textutil.Truncate(textutil.Clean(content), xhsContentCap),
		Images:      xhsImages(html),
		Videos:      xhsVideos(html),
		PublishedAt: publishedAt,
	}
}

func xhsTitle(html string) string {
	if pt := pageTitle(html); pt != "" {
		if strings.Contains(pt, " - 小红书") {
			return strings.TrimSpace(strings.ReplaceAll(pt, " - 小红书", ""))
		}
		if !strings.Contains(pt, "小红书") && !strings.Contains(pt, "登录") {
			return pt
		}
	}
	return textutil.Clean(firstMatch(html, xhsOgTitlePatterns))
}

// xhsAuthor resolves the note author, not a commenter. The comment thread
// serializes commenter nicknames after a "comments" key, so the first pass
// searches only the region before that marker; the second pass widens to
// the whole document; the last resort is the profile-link anchor text.
func xhsAuthor(html string) string {
	commentsPos := strings.Index(html, `"comments"`)

	if commentsPos > xhsCommentsMinOffset {
		if a := xhsFirstValidNickname(html[:commentsPos]); a != "" {
			return a
		}
	}
	if a := xhsFirstValidNickname(html); a != "" {
		return a
	}
	if m := xhsProfileLinkRe.FindStringSubmatch(html); m != nil {
		candidate := textutil.Clean(m[1])
		if xhsNicknameLengthOK(candidate) && !xhsIsStoplistedExact(candidate) {
			return candidate
		}
	}
	return ""
}

func xhsFirstValidNickname(region string) string {
	for _, m := range xhsNicknameRe.FindAllStringSubmatch(region, -1) {
		candidate := textutil.Clean(m[1])
		if candidate == "" || !xhsNicknameLengthOK(candidate) {
			continue
		}
		if xhsContainsStoplisted(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func xhsNicknameLengthOK(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= xhsNicknameMin && n <= xhsNicknameMax
}

func xhsContainsStoplisted(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, bad := range xhsInvalidNames {
		if strings.Contains(lower, bad) {
			return true
		}
	}
	return false
}

func xhsIsStoplistedExact(candidate string) bool {
	for _, bad := range xhsInvalidNames {
		if candidate == bad {
			return true
		}
	}
	return false
}

// xhsContent tries the hydration "desc" field, then the detail-description
// DOM node, then any desc-classed node, each with embedded tags stripped; if
// all miss, it salvages the markdown by dropping boilerplate lines.
func xhsContent(html, markdown string) string {
	for i, re := range xhsContentPatterns {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		if i == 0 && utf8.RuneCountInString(m[1]) > xhsDescMax {
			continue
		}
		candidate := strings.ReplaceAll(m[1], `\n`, "\n")
		candidate = unescapeSlashes(candidate)
		candidate = textutil.Clean(stripTags(candidate))
		if utf8.RuneCountInString(candidate) > 20 {
			return candidate
		}
	}
	return xhsContentFromMarkdown(markdown)
}

func xhsContentFromMarkdown(markdown string) string {
	if markdown == "" {
		return ""
	}
	var kept []string
line:
	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		if utf8.RuneCountInString(line) <= 5 {
			continue
		}
		for _, kw := range xhsSkipLineKeywords {
			if strings.Contains(line, kw) {
				continue line
			}
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// xhsIsValidImage applies the blocklist before the allowlist: anything that
// looks like an infra asset is out, and what remains must sit on a known
// content CDN path.
func xhsIsValidImage(url string) bool {
	lower := strings.ToLower(url)
	for _, kw := range xhsInvalidImageKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range xhsValidImageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func xhsImages(html string) []string {
	var candidates []string
	if m := xhsImageListRe.FindStringSubmatch(html); m != nil {
		for _, u := range xhsCDNURLRe.FindAllStringSubmatch(m[1], -1) {
			candidates = append(candidates, u[1])
		}
	}
	candidates = append(candidates, allMatches(html, xhsImagePatterns)...)

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, u := range candidates {
		u = unescapeSlashes(strings.SplitN(u, "?", 2)[0])
		if !xhsIsValidImage(u) {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if len(out) == xhsImageCap {
			break
		}
	}
	return out
}

// xhsVideos requires the site's video CDN marker or a direct .mp4 even for
// URLs the generic scanner surfaces; anything else on a note page is a
// player asset, not the note's video.
func xhsVideos(html string) []string {
	var candidates []string
	for _, u := range allMatches(html, xhsVideoPatterns) {
		u = unescapeSlashes(u)
		if u == "" || strings.HasPrefix(u, "blob:") {
			continue
		}
		if strings.HasPrefix(u, "//") {
			u = "https:" + u
		}
		candidates = append(candidates, u)
	}
	candidates = append(candidates, scanVideos(html)...)

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, u := range candidates {
		if strings.HasPrefix(u, "blob:") {
			continue
		}
		if strings.HasPrefix(u, "//") {
			u = "https:" + u
		}
		if !strings.Contains(u, "sns-video") && !strings.Contains(u, ".mp4") && !strings.Contains(u, "stream") {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if len(out) == maxVideos {
			break
		}
	}
	return out
}
