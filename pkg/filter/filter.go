package filter

import (
	"strings"
)

// Blocklist drops configured category names during feed parsing. Matching is
// case-insensitive because feeds disagree on capitalization of even their own
// categories between releases.
type Blocklist []string

func (b Blocklist) IsBlocked(category string) bool {
	for _, blocked := range b {
		if strings.EqualFold(strings.TrimSpace(blocked), category) {
			return true
		}
	}
	return false
}
