package browser

import (
	"encoding/json"
	"strings"
)

// Cookie is one normalized cookie injected into the browser context.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// CookieSpec accepts the two request forms: a raw "name=value; n2=v2" string
// or an explicit list of cookie objects.
type CookieSpec struct {
	raw  string
	list []Cookie
}

// UnmarshalJSON accepts either a JSON string or a JSON array of cookies.
func (c *CookieSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.raw = s
		c.list = nil
		return nil
	}
	var list []Cookie
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	c.raw = ""
	c.list = list
	return nil
}

// IsZero reports whether no cookies were supplied.
func (c CookieSpec) IsZero() bool {
	return c.raw == "" && len(c.list) == 0
}

// Normalize expands the spec into cookie tuples, defaulting domain to the
// given target domain and path to "/". String-form entries without "=" are
// skipped. Empty input yields nil.
func (c CookieSpec) Normalize(domain string) []Cookie {
	if len(c.list) > 0 {
		out := make([]Cookie, 0, len(c.list))
		for _, ck := range c.list {
			if ck.Domain == "" {
				ck.Domain = domain
			}
			if ck.Path == "" {
				ck.Path = "/"
			}
			out = append(out, ck)
		}
		return out
	}
	if c.raw == "" {
		return nil
	}
	var out []Cookie
	for _, pair := range strings.Split(c.raw, ";") {
		pair = strings.TrimSpace(pair)
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out = append(out, Cookie{
			Name:   strings.TrimSpace(name),
			Value:  strings.TrimSpace(value),
			Domain: domain,
			Path:   "/",
		})
	}
	return out
}
