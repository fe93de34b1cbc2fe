package extract

import (
	"regexp"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/platform"
	"github.com/mirrorops/contentmirror/internal/textutil"
)

const (
	wechatContentCap = 10000
	wechatImageCap   = 30
)

var wechatTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)id="activity-name"[^>]*>\s*([^<]+?)\s*<`),
	regexp.MustCompile(`(?i)class="[^"]*rich_media_title[^"]*"[^>]*>\s*([^<]+?)\s*<`),
	regexp.MustCompile(`(?i)<meta[^>]*property="og:title"[^>]*content="([^"]+)"`),
}

// Official-account name, not the article byline.
var wechatAuthorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)id="js_name"[^>]*>\s*([^<]+?)\s*<`),
	regexp.MustCompile(`(?i)class="[^"]*profile_nickname[^"]*"[^>]*>\s*([^<]+?)\s*<`),
}

var wechatVideoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)data-src="([^"]+\.mp4[^"]*)"`),
	regexp.MustCompile(`(?i)"url_info"\s*:\s*\{[^}]*"url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`(?i)<iframe[^>]*class="[^"]*video[^"]*"[^>]*src="([^"]+)"`),
	regexp.MustCompile(`(?i)data-vidtype="[^"]*"[^>]*data-src="([^"]+)"`),
}

var wechatTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`id="publish_time"[^>]*>\s*([^<]+?)\s*<`),
	regexp.MustCompile(`"publish_time"[^>]*>\s*(\d{4}-\d{2}-\d{2})`),
}

// Article images are lazy-loaded through data-src.
var wechatImageRe = regexp.MustCompile(`data-src="([^"]+)"`)

type wechatExtractor struct{}

func (wechatExtractor) Platform() platform.Platform { return platform.Wechat }

func (wechatExtractor) Extract(page *browser.Page) Content {
	html := page.HTML

	var images []string
	for _, m := range wechatImageRe.FindAllStringSubmatch(html, -1) {
		images = append(images, m[1])
	}

	videos := allMatches(html, wechatVideoPatterns)
	for i, v := range videos {
		videos[i] = unescapeSlashes(v)
	}
	videos = append(videos, scanVideos(html)...)

	return Content{
		Title:       textutil.Clean(firstMatch(html, wechatTitlePatterns)),
		Author:      textutil.Clean(firstMatch(html, wechatAuthorPatterns)),
		Content:     textutil.Truncate(textutil.Clean(page.Markdown), wechatContentCap),
		Images:      dedupeOrdered(images, wechatImageCap),
		Videos:      dedupeOrdered(videos, maxVideos),
		PublishedAt: textutil.Clean(firstMatch(html, wechatTimePatterns)),
	}
}
