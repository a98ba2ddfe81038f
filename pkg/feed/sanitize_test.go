package feed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podcastd/pkg/url"
)

func TestSanitizeHTML(t *testing.T) {
	base := url.MustURL("https://example.org/podcast/feed")

	require.Empty(t, sanitizeHTML("", base))
	require.Empty(t, sanitizeHTML("   ", base))

	require.Equal(t, "plain text", sanitizeHTML("  plain text  ", base))
	require.Equal(t, "before after", sanitizeHTML("before <script>track()</script>after", base))

	require.Equal(t,
		`<a href="https://example.org/about">about</a>`,
		sanitizeHTML(`<a href="/about">about</a>`, base))
	require.Equal(t,
		`<img src="https://cdn.example.org/cover.png"/>`,
		sanitizeHTML(`<img src="https://cdn.example.org/cover.png">`, base))

	// Non-web schemes don't survive resolution, so the attribute goes away.
	require.Equal(t,
		"<a>write us</a>",
		sanitizeHTML(`<a href="mailto:show@example.org">write us</a>`, base))
}
