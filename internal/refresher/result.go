package refresher

import "time"

type Status string

const (
	StatusSuccess     Status = "success"
	StatusUnavailable Status = "unavailable"
	StatusError       Status = "error"
	StatusPanic       Status = "panic"
)

// FeedResult is the outcome of refreshing a single feed. Failures are
// recorded here and never abort sibling feeds.
type FeedResult struct {
	FeedURL  string
	Status   Status
	Cached   bool
	Episodes int
	Err      error
}

// Result describes one completed refresh run over all configured feeds.
type Result struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Feeds    []FeedResult
	Podcasts int
	Episodes int
}

func (r *Result) Succeeded() int {
	return r.countStatus(StatusSuccess)
}

func (r *Result) Failed() int {
	return len(r.Feeds) - r.Succeeded()
}

func (r *Result) countStatus(status Status) int {
	var count int
	for _, feed := range r.Feeds {
		if feed.Status == status {
			count++
		}
	}
	return count
}
