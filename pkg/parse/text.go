package parse

import (
	"regexp"
	"strings"
)

var (
	spacesRe        = regexp.MustCompile(`\p{Z}+`)
	formatControlRe = regexp.MustCompile(`\p{Cf}+`)
)

// TrimText collapses Unicode spaces, strips format control characters (soft
// hyphens and friends, which podcast publishers love to paste from CMS
// editors) and trims the result.
func TrimText(text string) string {
	text = spacesRe.ReplaceAllString(text, " ")
	text = formatControlRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
