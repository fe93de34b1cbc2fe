package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/platform"
	"github.com/mirrorops/contentmirror/internal/textutil"
)

const (
	genericContentCap = 10000
	genericImageCap   = 20

	// GitHub repo descriptions get folded into the title; long ones are
	// clipped so the title stays a title.
	githubDescCap = 100
)

var (
	githubRepoRe = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`)

	// Repo "About" blurb as GitHub renders it server-side, with the
	// hydration-JSON description as the last resort.
	githubAboutPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<p[^>]*class="[^"]*f4[^"]*"[^>]*>\s*(.+?)\s*</p>`),
		regexp.MustCompile(`(?s)<p[^>]*itemprop="about"[^>]*>\s*(.+?)\s*</p>`),
		regexp.MustCompile(`"description"\s*:\s*"([^"]+)"`),
	}

	genericImageRe = regexp.MustCompile(`(?i)src="(https?://[^"]+\.(?:jpg|jpeg|png|gif|webp)[^"]*)"`)
)

// genericExtractor handles every site without a dedicated strategy. It leans
// on the rendered markdown for the body and on standard meta tags for the
// rest, with one special case for GitHub repository pages whose useful
// content is the About blurb rather than the README-heavy page body.
type genericExtractor struct{}

func (genericExtractor) Platform() platform.Platform { return platform.Unknown }

func (genericExtractor) Extract(page *browser.Page) Content {
	html := page.HTML
	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))
	haveDoc := docErr == nil

	isGitHub := strings.Contains(page.URL, "github.com")
	if isGitHub {
		if c, ok := githubContent(page, doc, haveDoc); ok {
			return c
		}
	}

	title := pageTitle(html)
	if isGitHub && haveDoc {
		// Profile and marketing pages carry a better og:title than the
		// window title ("<name> · GitHub").
		if og := textutil.Clean(metaContent(doc, `meta[property="og:title"]`)); og != "" {
			title = og
		}
	}
	if title == "" && haveDoc {
		title = textutil.Clean(metaContent(doc, `meta[property="og:title"]`))
	}

	content := textutil.Clean(page.Markdown)
	if content == "" && docErr == nil {
		content = textutil.Clean(metaContent(doc, `meta[name="description"]`))
	}

	return Content{
		Title:   title,
		Content: textutil.Truncate(content, genericContentCap),
		Images:  genericImages(html),
		Videos:  scanVideos(html),
	}
}

// githubContent builds the record for a repository page: the owner is the
// author and the About description is appended to the title. Non-repository
// GitHub pages (profiles, marketing) fall through to the generic path.
func githubContent(page *browser.Page, doc *goquery.Document, haveDoc bool) (Content, bool) {
	m := githubRepoRe.FindStringSubmatch(page.URL)
	if m == nil {
		return Content{}, false
	}
	owner, repo := m[1], m[2]

	var desc string
	if haveDoc {
		desc = textutil.Clean(metaContent(doc, `meta[property="og:description"]`))
	}
	if desc == "" {
		desc = textutil.Clean(stripTags(firstMatch(page.HTML, githubAboutPatterns)))
	}

	title := fmt.Sprintf("GitHub - %s/%s", owner, repo)
	if desc != "" {
		title = fmt.Sprintf("%s: %s", title, textutil.Truncate(desc, githubDescCap))
	}

	// No markdown fallback here: a repo page's markdown is navigation
	// noise, so an absent description means empty content.
	return Content{
		Title:   title,
		Author:  owner,
		Content: textutil.Truncate(desc, genericContentCap),
		Images:  genericImages(page.HTML),
		Videos:  scanVideos(page.HTML),
	}, true
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return content
}

// genericImages keeps absolute URLs with a raster-image extension, query
// strings dropped.
func genericImages(html string) []string {
	var candidates []string
	for _, m := range genericImageRe.FindAllStringSubmatch(html, -1) {
		candidates = append(candidates, strings.SplitN(m[1], "?", 2)[0])
	}
	return uniqueUnordered(candidates, genericImageCap)
}
