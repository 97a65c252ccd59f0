package sanitizer

import "github.com/microcosm-cc/bluemonday"

// Sanitizer strips scripts and unsafe markup from rich-text note content,
// keeping a fixed tag set (including img, figure and figcaption) and only
// http, https and mailto URLs. Sanitize is idempotent.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	p := bluemonday.UGCPolicy()

	p.AllowElements("figure", "figcaption")
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	p.AllowAttrs("href", "name", "target", "rel").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")

	return &Sanitizer{policy: p}
}

func (s *Sanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
