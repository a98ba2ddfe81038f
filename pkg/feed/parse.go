package feed

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"podcastd/pkg/filter"
	"podcastd/pkg/parse"
	"podcastd/pkg/url"
)

type Option func(o *options)

type options struct {
	blockedCategories filter.Blocklist
}

func newOptions(opts []Option) options {
	var result options
	for _, opt := range opts {
		opt(&result)
	}
	return result
}

// BlockCategories drops the listed category names from parsed feeds.
func BlockCategories(blocklist filter.Blocklist) Option {
	return func(o *options) {
		o.blockedCategories = blocklist
	}
}

// Parse reads a single RSS or Atom document and maps it onto a Podcast.
//
// feedURL identifies the podcast and serves as the base for resolving
// relative links: feeds routinely self-report wrong or relative URLs, so the
// address the document was fetched from is the only trustworthy identity.
func Parse(feedURL string, reader io.Reader, opts ...Option) (*Podcast, error) {
	base, err := url.Parse(feedURL)
	if err != nil {
		return nil, err
	}

	source, err := gofeed.NewParser().Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the feed: %w", err)
	}

	parser := parser{options: newOptions(opts), base: base}
	return parser.podcast(feedURL, source), nil
}

type parser struct {
	options options
	base    *url.URL
}

func (p *parser) podcast(feedURL string, source *gofeed.Feed) *Podcast {
	link := p.resolveLink(source.Link)
	if link != "" {
		if parsed, err := url.Parse(link); err == nil {
			p.base = parsed
		}
	}

	title := parse.TrimText(source.Title)
	if title == "" {
		// Some feeds ship without a title. The identity is all we've got then.
		title = feedURL
	}

	podcast := &Podcast{
		FeedURL:     feedURL,
		Title:       title,
		Link:        link,
		Description: p.sanitize(firstText(source.Description, itunesFeedSummary(source.ITunesExt))),
		Author:      parse.TrimText(firstText(itunesFeedAuthor(source.ITunesExt), personName(source.Authors))),
		ImageURL:    p.resolveLink(feedImage(source)),
		Copyright:   parse.TrimText(source.Copyright),
		Categories:  p.categories(source),
	}

	for _, item := range source.Items {
		if episode, ok := p.episode(item); ok {
			podcast.Episodes = append(podcast.Episodes, episode)
		}
	}

	slices.SortStableFunc(podcast.Episodes, func(a, b Episode) int {
		return b.Published.Compare(a.Published)
	})

	return podcast
}

func (p *parser) categories(source *gofeed.Feed) []string {
	names := slices.Clone(source.Categories)

	if itunes := source.ITunesExt; itunes != nil {
		for _, category := range itunes.Categories {
			names = append(names, category.Text)
			if category.Subcategory != nil {
				names = append(names, category.Subcategory.Text)
			}
		}
	}

	names = lo.FilterMap(names, func(name string, _ int) (string, bool) {
		name = parse.TrimText(name)
		return name, name != "" && !p.options.blockedCategories.IsBlocked(name)
	})

	return lo.UniqBy(names, strings.ToLower)
}

// episode maps one feed item, dropping items that lack an identity or a
// publication time: without them the episode can't be stored or ordered.
func (p *parser) episode(item *gofeed.Item) (Episode, bool) {
	uri := strings.TrimSpace(item.GUID)
	if uri == "" {
		uri = strings.TrimSpace(item.Link)
	}
	if uri == "" {
		return Episode{}, false
	}

	published, ok := itemTime(item)
	if !ok {
		return Episode{}, false
	}

	episode := Episode{
		URI:       uri,
		Title:     parse.TrimText(item.Title),
		Summary:   p.sanitize(firstText(item.Description, itunesItemSummary(item.ITunesExt), item.Content)),
		Author:    parse.TrimText(firstText(itunesItemAuthor(item.ITunesExt), personName(item.Authors))),
		Published: published,
		Duration:  mo.None[time.Duration](),
	}

	if itunes := item.ITunesExt; itunes != nil {
		episode.Subtitle = parse.TrimText(itunes.Subtitle)
		if duration, err := parse.Duration(itunes.Duration); err == nil {
			episode.Duration = mo.Some(duration)
		}
	}

	if enclosure := selectEnclosure(item.Enclosures); enclosure != nil {
		episode.MediaURL = p.resolveLink(enclosure.URL)
		episode.MediaType = strings.TrimSpace(enclosure.Type)
		if length, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil && length > 0 {
			episode.MediaLength = length
		}
	}

	return episode, true
}

func (p *parser) resolveLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	resolved, err := url.Get(p.base, link)
	if err != nil {
		return ""
	}

	return resolved.String()
}

func (p *parser) sanitize(value string) string {
	return sanitizeHTML(value, p.base)
}

// selectEnclosure prefers the first audio attachment, falling back to
// whatever the item carries first.
func selectEnclosure(enclosures []*gofeed.Enclosure) *gofeed.Enclosure {
	for _, enclosure := range enclosures {
		if strings.HasPrefix(enclosure.Type, "audio/") {
			return enclosure
		}
	}

	if len(enclosures) != 0 {
		return enclosures[0]
	}

	return nil
}

func itemTime(item *gofeed.Item) (time.Time, bool) {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed, true
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed, true
	}
	if published, err := parse.Date(item.Published); err == nil {
		return published, true
	}
	return time.Time{}, false
}

func personName(persons []*gofeed.Person) string {
	for _, person := range persons {
		if person.Name != "" {
			return person.Name
		}
	}
	return ""
}

func feedImage(source *gofeed.Feed) string {
	if source.Image != nil && source.Image.URL != "" {
		return source.Image.URL
	}
	if source.ITunesExt != nil {
		return source.ITunesExt.Image
	}
	return ""
}

func itunesFeedAuthor(itunes *ext.ITunesFeedExtension) string {
	if itunes == nil {
		return ""
	}
	return itunes.Author
}

func itunesFeedSummary(itunes *ext.ITunesFeedExtension) string {
	if itunes == nil {
		return ""
	}
	return itunes.Summary
}

func itunesItemAuthor(itunes *ext.ITunesItemExtension) string {
	if itunes == nil {
		return ""
	}
	return itunes.Author
}

func itunesItemSummary(itunes *ext.ITunesItemExtension) string {
	if itunes == nil {
		return ""
	}
	return itunes.Summary
}

func firstText(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
