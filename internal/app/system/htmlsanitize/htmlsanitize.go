// Package htmlsanitize cleans user-supplied text before it is stored.
// Message bodies may carry limited formatting; group names and
// descriptions are reduced to plain text.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize removes dangerous markup from user-generated content while
// keeping common formatting (paragraphs, emphasis, lists, links).
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// StripTags reduces input to plain text, removing all markup. Used for
// group names and descriptions, which are never rendered as HTML.
func StripTags(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
