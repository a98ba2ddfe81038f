package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"podcastd/pkg/parse"
	"podcastd/pkg/url"
)

// sanitizeHTML cleans a show notes fragment for storage: scripts and embeds
// are dropped, and link targets are resolved against base so that relative
// URLs survive outside the publisher's site. Returns the inner body HTML.
func sanitizeHTML(value string, base *url.URL) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	root, err := html.Parse(strings.NewReader(value))
	if err != nil {
		return parse.TrimText(value)
	}

	document := goquery.NewDocumentFromNode(root)
	document.Find("script, style, iframe").Remove()

	resolveAttr := func(selection *goquery.Selection, name string) {
		link, _ := selection.Attr(name)
		if resolved, err := url.Get(base, link); err == nil {
			selection.SetAttr(name, resolved.String())
		} else {
			selection.RemoveAttr(name)
		}
	}

	document.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		resolveAttr(selection, "href")
	})
	document.Find("img[src]").Each(func(_ int, selection *goquery.Selection) {
		resolveAttr(selection, "src")
	})

	rendered, err := document.Find("body").Html()
	if err != nil {
		return parse.TrimText(value)
	}

	return strings.TrimSpace(rendered)
}
