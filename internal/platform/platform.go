// Package platform maps URLs to the source sites this service knows how to
// extract, and carries the per-site cookie domains used when injecting
// caller-supplied cookies into the browser context.
package platform

import (
	"net/url"
	"strings"
)

// Platform identifies the source site of a URL.
type Platform string

const (
	Zhihu       Platform = "zhihu"
	Xiaohongshu Platform = "xiaohongshu"
	Twitter     Platform = "twitter"
	Wechat      Platform = "wechat"
	Unknown     Platform = "unknown"
)

// hostSuffixes is checked in order; first match wins.
var hostSuffixes = []struct {
	platform Platform
	hosts    []string
}{
	{Zhihu, []string{"zhihu.com"}},
	{Xiaohongshu, []string{"xiaohongshu.com", "xhslink.com"}},
	{Twitter, []string{"twitter.com", "x.com"}},
	{Wechat, []string{"weixin.qq.com", "mp.weixin.qq.com"}},
}

// Detect returns the platform for a URL. It is total: malformed URLs and
// unrecognized hosts yield Unknown.
func Detect(raw string) Platform {
	u, err := url.Parse(raw)
	if err != nil {
		return Unknown
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Unknown
	}
	for _, entry := range hostSuffixes {
		for _, h := range entry.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return entry.platform
			}
		}
	}
	return Unknown
}

// CookieDomain returns the canonical cookie domain for a platform, used as
// the default domain for cookies supplied without one. Unknown has no
// canonical domain.
func CookieDomain(p Platform) string {
	switch p {
	case Zhihu:
		return ".zhihu.com"
	case Xiaohongshu:
		return ".xiaohongshu.com"
	case Twitter:
		return ".x.com"
	case Wechat:
		return ".qq.com"
	default:
		return ""
	}
}
