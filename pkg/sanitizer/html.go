// Package sanitizer cleans user supplied HTML before it reaches a page.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy   *bluemonday.Policy
	markdownPolicy *bluemonday.Policy
	initOnce       sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Rendered markdown: text formatting, lists, quotes, code and
		// nofollow links. No images or raw attributes.
		markdownPolicy = bluemonday.NewPolicy()
		markdownPolicy.AllowStandardURLs()
		markdownPolicy.AllowElements(
			"p", "br", "hr",
			"h3", "h4", "h5", "h6",
			"strong", "b", "em", "i", "del",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		markdownPolicy.AllowAttrs("href").OnElements("a")
		markdownPolicy.RequireNoFollowOnLinks(true)
		markdownPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// StripTags removes all markup and returns plain text.
func StripTags(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// SanitizeMarkdownHTML keeps the subset of HTML produced by rendering
// album and tour descriptions.
func SanitizeMarkdownHTML(s string) string {
	initPolicies()
	return markdownPolicy.Sanitize(s)
}
