// Package refresher periodically pulls the configured feeds into the store,
// making sure that at most one refresh runs at a time.
package refresher

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/samber/mo"

	"podcastd/internal/config"
	"podcastd/internal/store"
	"podcastd/internal/util"
	"podcastd/pkg/cache"
	"podcastd/pkg/feed"
	"podcastd/pkg/filter"
	"podcastd/pkg/url"
)

// ErrStopped is returned to refresh callers caught by daemon shutdown.
var ErrStopped = errors.New("the refresher is stopped")

type Refresher struct {
	store     *store.Store
	config    config.RefreshConfig
	feeds     []*url.URL
	blocklist filter.Blocklist
	cache     *cache.Cache[*feed.Podcast]
	metrics   *metrics

	force     chan struct{}
	stopped   chan struct{}
	waitGroup sync.WaitGroup

	lock       util.GuardedLock
	refreshing bool
	result     mo.Option[Result]
	waiters    []chan<- Result
}

func New(store *store.Store, config config.RefreshConfig) *Refresher {
	return &Refresher{
		store:     store,
		config:    config,
		feeds:     config.FeedURLs(),
		blocklist: config.Blocklist(),
		cache:     cache.New[*feed.Podcast](config.MaxStale.Value()),
		metrics:   newMetrics(),

		force:   make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Start launches the background daemon. In devel mode the daemon never
// refreshes on its own and waits to be triggered.
func (r *Refresher) Start(ctx context.Context, develMode bool) {
	r.metrics.startTime.SetToCurrentTime()
	r.waitGroup.Go(func() {
		r.daemon(ctx, develMode)
	})
}

func (r *Refresher) Stop(ctx context.Context) {
	logging.L(ctx).Infof("Stopping the refresher...")
	close(r.stopped)
	r.waitGroup.Wait()
	logging.L(ctx).Infof("The refresher has stopped.")
}

// Refresh returns a completed refresh result, which is the single-flight
// guard of the daemon: when a run is in flight, callers join it instead of
// starting a new one.
//
// Without force, the last completed result is served as long as no run is in
// flight, and a run is triggered only when there is nothing to serve yet.
// With force, the caller always joins a run: the in-flight one if any,
// otherwise a newly triggered one on a purged fetch cache.
func (r *Refresher) Refresh(ctx context.Context, force bool) (Result, error) {
	lock := r.lock.Lock()
	defer lock.UnlockIfLocked()

	if !force && !r.refreshing {
		if result, ok := r.result.Get(); ok {
			return result, nil
		}
	}
	if force && !r.refreshing {
		r.cache.Purge()
	}

	waiter := make(chan Result, 1)
	r.waiters = append(r.waiters, waiter)
	lock.Unlock()

	select {
	case r.force <- struct{}{}:
	default:
	}

	select {
	case result := <-waiter:
		return result, nil

	case <-r.stopped:
		return Result{}, ErrStopped

	case <-ctx.Done():
		lock.Lock()
		if index := slices.Index(r.waiters, waiter); index != -1 {
			r.waiters = slices.Delete(r.waiters, index, index+1)
		}
		return Result{}, ctx.Err()
	}
}

// RunOnce performs a single refresh in the caller's goroutine, without the
// daemon and its guard.
func (r *Refresher) RunOnce(ctx context.Context) Result {
	return r.refresh(ctx)
}

func (r *Refresher) daemon(ctx context.Context, develMode bool) {
	// An empty store gets populated right away. Otherwise, the first run is
	// spread randomly over the interval so that a fleet of restarts doesn't
	// hammer the publishers at the same moment.
	delay := rand.N(r.config.Interval.Value())
	if empty, err := r.store.IsEmpty(ctx); err != nil {
		logging.L(ctx).Errorf("Failed to check whether the store is empty: %s.", err)
	} else if empty {
		delay = 0
	}

	updateTimer := time.NewTimer(delay)
	defer updateTimer.Stop()

	updateChan := updateTimer.C
	if develMode {
		updateChan = make(chan time.Time)
	}

	for {
		select {
		case <-updateChan:

		case <-r.force:
			updateTimer.Stop()
			select {
			case <-updateTimer.C:
			default:
			}

		case <-r.stopped:
			return
		}

		lock := r.lock.Lock()
		r.refreshing = true
		lock.Unlock()

		result := r.refresh(ctx)

		// Triggers that arrived during the run were joined to it, so they
		// must not cause another one.
		select {
		case <-r.force:
		default:
		}

		lock = r.lock.Lock()
		r.refreshing = false
		r.result = mo.Some(result)
		waiters := r.waiters
		r.waiters = nil
		lock.Unlock()

		for _, waiter := range waiters {
			waiter <- result
		}

		updateTimer.Reset(r.config.Interval.Value())
	}
}
