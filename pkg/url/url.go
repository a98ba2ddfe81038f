package url

import (
	"fmt"
	"net/url"
)

type URL = url.URL

func MustURL(value string) *url.URL {
	url, err := Parse(value)
	if err != nil {
		panic(fmt.Sprintf("Invalid URL: %s", value))
	}
	return url
}

// Parse is url.Parse restricted to absolute http(s) URLs, the only kind a
// feed list or a link attribute is allowed to point at.
func Parse(value string) (*url.URL, error) {
	url, err := url.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("got an invalid URL: %q", value)
	}

	switch url.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("got an URL with unsupported scheme: %q", value)
	}

	return url, nil
}

// Get resolves link against base, so that relative links inside feed
// descriptions become absolute. Non-web schemes don't resolve: a feed is
// only allowed to link to things a podcast client can open.
func Get(base *url.URL, link string) (*url.URL, error) {
	url, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("got an invalid link: %q", link)
	}

	if !url.IsAbs() {
		if base == nil {
			return nil, fmt.Errorf("got a relative link with no base URL: %q", link)
		}
		url = base.ResolveReference(url)
	}

	switch url.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("got a link with unsupported scheme: %q", link)
	}

	return url, nil
}
