// Package feed turns syndication documents into podcast records.
package feed

import (
	"time"

	"github.com/samber/mo"
)

// Podcast is a parsed feed with its episodes, identified by feed URL.
type Podcast struct {
	FeedURL     string
	Title       string
	Link        string
	Description string
	Author      string
	ImageURL    string
	Copyright   string

	Categories []string
	Episodes   []Episode
}

// Episode is identified by URI, which is the item GUID when the feed
// provides one and the item link otherwise.
type Episode struct {
	URI      string
	Title    string
	Subtitle string
	Summary  string
	Author   string

	Published time.Time
	Duration  mo.Option[time.Duration]

	MediaURL    string
	MediaType   string
	MediaLength int64
}
