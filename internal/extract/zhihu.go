package extract

import (
	"regexp"
	"strings"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/platform"
	"github.com/mirrorops/contentmirror/internal/textutil"
)

const (
	zhihuContentCap = 10000
	zhihuImageCap   = 20
	zhihuTitleTail  = " - 知乎"
)

// Answer and article pages use different heading classes; the JSON "title"
// key covers pages where the heading is rendered client-side.
var zhihuTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`<h1[^>]*class="[^"]*Post-Title[^"]*"[^>]*>([^<]+)</h1>`),
	regexp.MustCompile(`<h1[^>]*class="[^"]*QuestionHeader-title[^"]*"[^>]*>([^<]+)</h1>`),
	regexp.MustCompile(`"title"\s*:\s*"([^"]+)"`),
}

var zhihuAuthorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`class="[^"]*AuthorInfo-name[^"]*"[^>]*>([^<]+)<`),
	regexp.MustCompile(`"author"\s*:\s*\{[^}]*"name"\s*:\s*"([^"]+)"`),
}

var zhihuVideoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"play_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"video_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`data-video="([^"]+)"`),
	regexp.MustCompile(`class="[^"]*VideoCard[^"]*"[^>]*data-url="([^"]+)"`),
}

var zhihuImageAttrRe = regexp.MustCompile(`(?:src|data-original)="([^"]+)"`)

type zhihuExtractor struct{}

func (zhihuExtractor) Platform() platform.Platform { return platform.Zhihu }

func (zhihuExtractor) Extract(page *browser.Page) Content {
	html := page.HTML

	title := textutil.Clean(firstMatch(html, zhihuTitlePatterns))
	if title == "" {
		if pt := pageTitle(html); strings.Contains(pt, zhihuTitleTail) {
			title = strings.ReplaceAll(pt, zhihuTitleTail, "")
		}
	}

	author := textutil.Clean(firstMatch(html, zhihuAuthorPatterns))

	// Body comes from the readability markdown; the answer DOM is too noisy
	// to scrape directly.
	content := textutil.Truncate(textutil.Clean(page.Markdown), zhihuContentCap)

	images := zhihuImages(html)

	videos := allMatches(html, zhihuVideoPatterns)
	for i, v := range videos {
		videos[i] = unescapeSlashes(v)
	}
	videos = append(videos, scanVideos(html)...)
	videos = dedupeOrdered(videos, maxVideos)

	return Content{
		Title:   title,
		Author:  author,
		Content: content,
		Images:  images,
		Videos:  videos,
	}
}

// zhihuImages keeps only URLs on the zhimg CDN or with a "pic" fragment;
// everything else on an answer page is site chrome.
func zhihuImages(html string) []string {
	var candidates []string
	for _, m := range zhihuImageAttrRe.FindAllStringSubmatch(html, -1) {
		if strings.Contains(m[1], "zhimg.com") || strings.Contains(m[1], "pic") {
			candidates = append(candidates, m[1])
		}
	}
	return uniqueUnordered(candidates, zhihuImageCap)
}
