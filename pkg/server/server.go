// Package server exposes the stored podcast catalog over a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/ggicci/httpin/integration"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"podcastd/internal/refresher"
	"podcastd/internal/store"
)

const shutdownTimeout = 10 * time.Second

func init() {
	integration.UseGorillaMux("path", mux.Vars)
}

type Server struct {
	router    *mux.Router
	store     *store.Store
	refresher *refresher.Refresher
}

func New(store *store.Store, refresher *refresher.Refresher) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		store:     store,
		refresher: refresher,
	}

	s.register(http.MethodGet, "/podcasts", s.handlePodcasts)
	s.register(http.MethodGet, "/podcasts/episodes", s.handlePodcastEpisodes)
	s.register(http.MethodPost, "/podcasts/follow", s.handleFollow)
	s.register(http.MethodPost, "/podcasts/unfollow", s.handleUnfollow)
	s.register(http.MethodPost, "/podcasts/toggle", s.handleToggleFollowed)
	s.register(http.MethodGet, "/episodes", s.handleEpisodes)
	s.register(http.MethodGet, "/categories", s.handleCategories)
	s.register(http.MethodPost, "/refresh", s.handleRefresh)

	s.router.NotFoundHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeError(request.Context(), writer, http.StatusNotFound, "unknown endpoint")
	})

	return s
}

// Serve runs the API and metrics listeners until ctx is canceled or one of
// them crashes. The refresher daemon lives for the duration of the serve.
func (s *Server) Serve(ctx context.Context, apiAddr string, metricsAddr string, develMode bool) error {
	var waitGroup sync.WaitGroup
	defer waitGroup.Wait()

	if err := prometheus.DefaultRegisterer.Register(s.refresher.Collector()); err != nil {
		return err
	}
	if err := prometheus.DefaultRegisterer.Register(store.NewStatsCollector(s.store)); err != nil {
		return err
	}

	//nolint:gosec
	apiServer := http.Server{
		Addr:     apiAddr,
		Handler:  s.router,
		ErrorLog: newErrorLog(logging.L(ctx), "API HTTP server: "),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	defer s.shutdown(ctx, "API", &apiServer)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: newPrometheusLogger(logging.L(ctx)),
	}))

	//nolint:gosec
	metricsServer := http.Server{
		Addr:     metricsAddr,
		Handler:  metricsMux,
		ErrorLog: newErrorLog(logging.L(ctx), "Metrics HTTP server: "),
	}
	defer s.shutdown(ctx, "metrics", &metricsServer)

	logging.L(ctx).Infof("Listening on %s (API) and %s (metrics)...", apiAddr, metricsAddr)

	apiSocket, err := net.Listen("tcp", apiAddr)
	if err != nil {
		return err
	}
	closeAPISocket := true
	defer func() {
		if closeAPISocket {
			if err := apiSocket.Close(); err != nil {
				logging.L(ctx).Errorf("Failed to close a socket: %s.", err)
			}
		}
	}()

	metricsSocket, err := net.Listen("tcp", metricsAddr)
	if err != nil {
		return err
	}
	closeMetricsSocket := true
	defer func() {
		if closeMetricsSocket {
			if err := metricsSocket.Close(); err != nil {
				logging.L(ctx).Errorf("Failed to close a socket: %s.", err)
			}
		}
	}()

	serverCrashed := make(chan error, 2)

	closeAPISocket = false
	waitGroup.Go(func() {
		if err := apiServer.Serve(apiSocket); !errors.Is(err, http.ErrServerClosed) {
			serverCrashed <- fmt.Errorf("API HTTP server has crashed: %w", err)
		}
	})

	closeMetricsSocket = false
	waitGroup.Go(func() {
		if err := metricsServer.Serve(metricsSocket); !errors.Is(err, http.ErrServerClosed) {
			serverCrashed <- fmt.Errorf("metrics HTTP server has crashed: %w", err)
		}
	})

	s.refresher.Start(ctx, develMode)
	defer s.refresher.Stop(ctx)

	select {
	case err := <-serverCrashed:
		return err
	case <-ctx.Done():
		logging.L(ctx).Infof("Shutting down...")
		return nil
	}
}

func (s *Server) shutdown(ctx context.Context, name string, server *http.Server) {
	// The serve context is canceled by the time we get here, so the graceful
	// period runs on its own clock.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.L(ctx).Errorf("Failed to shutdown %s HTTP server: %s.", name, err)
	}
}

func (s *Server) register(method string, path string, handler func(ctx context.Context, writer http.ResponseWriter, request *http.Request)) {
	s.router.HandleFunc(path, func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		logging.L(ctx).Debugf("%s %s...", request.Method, request.RequestURI)
		handler(ctx, writer, request)
		logging.L(ctx).Debugf("%s %s finished.", request.Method, request.RequestURI)
	}).Methods(method)
}
