package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/ggicci/httpin"
	"github.com/samber/lo"

	"podcastd/internal/refresher"
	"podcastd/internal/store"
)

type podcastsParams struct {
	Category string `in:"query=category"`
	Search   string `in:"query=q"`
	Followed bool   `in:"query=followed"`
	Limit    int    `in:"query=limit;default=100"`
}

func (s *Server) handlePodcasts(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[podcastsParams](ctx, writer, request)
	if !ok {
		return
	}

	podcasts, err := s.store.Podcasts(ctx, store.PodcastFilter{
		Category:     params.Category,
		Search:       params.Search,
		FollowedOnly: params.Followed,
		Limit:        params.Limit,
	})
	if err != nil {
		writeInternalError(ctx, writer, err)
		return
	}

	writeJSON(ctx, writer, http.StatusOK, lo.Map(podcasts, func(podcast store.PodcastSummary, _ int) podcastResponse {
		return makePodcastResponse(podcast)
	}))
}

type podcastEpisodesParams struct {
	FeedURL string `in:"query=feed_url;required"`
	Limit   int    `in:"query=limit;default=100"`
	Offset  int    `in:"query=offset"`
}

func (s *Server) handlePodcastEpisodes(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[podcastEpisodesParams](ctx, writer, request)
	if !ok {
		return
	}

	podcast, err := s.store.Podcast(ctx, params.FeedURL)
	if err != nil {
		writeInternalError(ctx, writer, err)
		return
	} else if podcast.IsAbsent() {
		writeError(ctx, writer, http.StatusNotFound, "unknown podcast")
		return
	}

	episodes, err := s.store.Episodes(ctx, store.EpisodeFilter{
		FeedURL: params.FeedURL,
		Limit:   params.Limit,
		Offset:  params.Offset,
	})
	if err != nil {
		writeInternalError(ctx, writer, err)
		return
	}

	writeEpisodes(ctx, writer, episodes)
}

type episodesParams struct {
	Category string `in:"query=category"`
	Limit    int    `in:"query=limit;default=100"`
}

// The home feed: latest episodes of the followed podcasts, or of a single
// category when one is requested.
func (s *Server) handleEpisodes(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[episodesParams](ctx, writer, request)
	if !ok {
		return
	}

	filter := store.EpisodeFilter{Limit: params.Limit}
	if params.Category != "" {
		category, err := s.store.Category(ctx, params.Category)
		if err != nil {
			writeInternalError(ctx, writer, err)
			return
		} else if category.IsAbsent() {
			writeError(ctx, writer, http.StatusNotFound, "unknown category")
			return
		}
		filter.Category = category.MustGet().Name
	} else {
		filter.FollowedOnly = true
	}

	episodes, err := s.store.Episodes(ctx, filter)
	if err != nil {
		writeInternalError(ctx, writer, err)
		return
	}

	writeEpisodes(ctx, writer, episodes)
}

type categoriesParams struct {
	Limit int `in:"query=limit;default=100"`
}

func (s *Server) handleCategories(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[categoriesParams](ctx, writer, request)
	if !ok {
		return
	}

	categories, err := s.store.Categories(ctx, params.Limit)
	if err != nil {
		writeInternalError(ctx, writer, err)
		return
	}

	writeJSON(ctx, writer, http.StatusOK, lo.Map(categories, func(category store.CategorySummary, _ int) categoryResponse {
		return categoryResponse(category)
	}))
}

type followParams struct {
	FeedURL string `in:"query=feed_url;required"`
}

func (s *Server) handleFollow(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[followParams](ctx, writer, request)
	if !ok {
		return
	}

	if err := s.store.Follow(ctx, params.FeedURL); err != nil {
		writeStoreError(ctx, writer, err)
		return
	}

	writeJSON(ctx, writer, http.StatusOK, followResponse{FeedURL: params.FeedURL, Followed: true})
}

func (s *Server) handleUnfollow(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[followParams](ctx, writer, request)
	if !ok {
		return
	}

	if err := s.store.Unfollow(ctx, params.FeedURL); err != nil {
		writeStoreError(ctx, writer, err)
		return
	}

	writeJSON(ctx, writer, http.StatusOK, followResponse{FeedURL: params.FeedURL, Followed: false})
}

func (s *Server) handleToggleFollowed(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[followParams](ctx, writer, request)
	if !ok {
		return
	}

	followed, err := s.store.ToggleFollowed(ctx, params.FeedURL)
	if err != nil {
		writeStoreError(ctx, writer, err)
		return
	}

	writeJSON(ctx, writer, http.StatusOK, followResponse{FeedURL: params.FeedURL, Followed: followed})
}

func (s *Server) handleRefresh(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	result, err := s.refresher.Refresh(ctx, true)

	switch {
	case errors.Is(err, refresher.ErrStopped):
		writeError(ctx, writer, http.StatusServiceUnavailable, err.Error())

	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeError(ctx, writer, http.StatusGatewayTimeout, "the refresh hasn't finished in time")

	case err != nil:
		writeInternalError(ctx, writer, err)

	default:
		writeJSON(ctx, writer, http.StatusOK, makeRefreshResponse(result))
	}
}

func decode[T any](ctx context.Context, writer http.ResponseWriter, request *http.Request) (*T, bool) {
	params, err := httpin.Decode[T](request)
	if err != nil {
		logging.L(ctx).Warnf("Invalid request parameters: %s.", err)
		writeError(ctx, writer, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return params, true
}

func writeEpisodes(ctx context.Context, writer http.ResponseWriter, episodes []store.Episode) {
	writeJSON(ctx, writer, http.StatusOK, lo.Map(episodes, func(episode store.Episode, _ int) episodeResponse {
		return makeEpisodeResponse(episode)
	}))
}

func writeJSON(ctx context.Context, writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if err := json.NewEncoder(writer).Encode(value); err != nil {
		logging.L(ctx).Errorf("Failed to write a response: %s.", err)
	}
}

func writeError(ctx context.Context, writer http.ResponseWriter, status int, message string) {
	writeJSON(ctx, writer, status, errorResponse{Error: message})
}

func writeStoreError(ctx context.Context, writer http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrUnknownPodcast) {
		writeError(ctx, writer, http.StatusNotFound, err.Error())
		return
	}
	writeInternalError(ctx, writer, err)
}

func writeInternalError(ctx context.Context, writer http.ResponseWriter, err error) {
	logging.L(ctx).Errorf("Failed to handle the request: %s.", err)
	writeError(ctx, writer, http.StatusInternalServerError, "internal error")
}

type errorResponse struct {
	Error string `json:"error"`
}

type podcastResponse struct {
	FeedURL      string `json:"feed_url"`
	Title        string `json:"title"`
	Link         string `json:"link,omitempty"`
	Description  string `json:"description,omitempty"`
	Author       string `json:"author,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	EpisodeCount int    `json:"episode_count"`
	LastEpisode  string `json:"last_episode,omitempty"`
	Followed     bool   `json:"followed"`
}

func makePodcastResponse(podcast store.PodcastSummary) podcastResponse {
	response := podcastResponse{
		FeedURL:      podcast.FeedURL,
		Title:        podcast.Title,
		Link:         podcast.Link,
		Description:  podcast.Description,
		Author:       podcast.Author,
		ImageURL:     podcast.ImageURL,
		EpisodeCount: podcast.EpisodeCount,
		Followed:     podcast.Followed,
	}
	if lastEpisode, ok := podcast.LastEpisode.Get(); ok {
		response.LastEpisode = lastEpisode.Format(time.RFC3339)
	}
	return response
}

type episodeResponse struct {
	URI             string `json:"uri"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle,omitempty"`
	Summary         string `json:"summary,omitempty"`
	Author          string `json:"author,omitempty"`
	Published       string `json:"published"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	MediaURL        string `json:"media_url,omitempty"`
	MediaType       string `json:"media_type,omitempty"`
	MediaLength     int64  `json:"media_length,omitempty"`
	PodcastURL      string `json:"podcast_url"`
	PodcastTitle    string `json:"podcast_title"`
	PodcastImageURL string `json:"podcast_image_url,omitempty"`
}

func makeEpisodeResponse(episode store.Episode) episodeResponse {
	response := episodeResponse{
		URI:             episode.URI,
		Title:           episode.Title,
		Subtitle:        episode.Subtitle,
		Summary:         episode.Summary,
		Author:          episode.Author,
		Published:       episode.Published.Format(time.RFC3339),
		MediaURL:        episode.MediaURL,
		MediaType:       episode.MediaType,
		MediaLength:     episode.MediaLength,
		PodcastURL:      episode.PodcastURL,
		PodcastTitle:    episode.PodcastTitle,
		PodcastImageURL: episode.PodcastImageURL,
	}
	if duration, ok := episode.Duration.Get(); ok {
		response.DurationSeconds = int64(duration / time.Second)
	}
	return response
}

type categoryResponse struct {
	Name     string `json:"name"`
	Podcasts int    `json:"podcasts"`
}

type followResponse struct {
	FeedURL  string `json:"feed_url"`
	Followed bool   `json:"followed"`
}

type refreshResponse struct {
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at"`
	Podcasts   int            `json:"podcasts"`
	Episodes   int            `json:"episodes"`
	Feeds      []feedResponse `json:"feeds"`
}

type feedResponse struct {
	FeedURL  string `json:"feed_url"`
	Status   string `json:"status"`
	Cached   bool   `json:"cached,omitempty"`
	Episodes int    `json:"episodes"`
	Error    string `json:"error,omitempty"`
}

func makeRefreshResponse(result refresher.Result) refreshResponse {
	return refreshResponse{
		StartedAt:  result.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: result.FinishedAt.UTC().Format(time.RFC3339),
		Podcasts:   result.Podcasts,
		Episodes:   result.Episodes,
		Feeds: lo.Map(result.Feeds, func(feed refresher.FeedResult, _ int) feedResponse {
			response := feedResponse{
				FeedURL:  feed.FeedURL,
				Status:   string(feed.Status),
				Cached:   feed.Cached,
				Episodes: feed.Episodes,
			}
			if feed.Err != nil {
				response.Error = feed.Err.Error()
			}
			return response
		}),
	}
}
