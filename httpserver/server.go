package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ruteri/land-certificate-registry/api"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/ruteri/land-certificate-registry/metrics"
	"go.uber.org/atomic"
)

type HTTPServerConfig struct {
	ListenAddr  string
	MetricsAddr string
	EnablePprof bool
	Log         *slog.Logger

	// Store, when set, must be reachable for the server to report ready.
	Store interfaces.MetadataStore

	DrainDuration            time.Duration
	GracefulShutdownDuration time.Duration
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
}

type Server struct {
	cfg       *HTTPServerConfig
	isReady   atomic.Bool
	drainedAt atomic.Time
	log       *slog.Logger

	srv        *http.Server
	metricsSrv *metrics.MetricsServer
	handler    *Handler
}

// New creates the API server. metricsSrv may be nil when MetricsAddr is empty.
func New(cfg *HTTPServerConfig, handler *Handler, metricsSrv *metrics.MetricsServer) (srv *Server, err error) {
	if cfg.MetricsAddr != "" && metricsSrv == nil {
		return nil, errors.New("metrics address set without a metrics server")
	}

	srv = &Server{
		cfg:        cfg,
		log:        cfg.Log,
		srv:        nil,
		metricsSrv: metricsSrv,
		handler:    handler,
	}
	srv.isReady.Store(true)

	srv.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.getRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv, nil
}

// Handler returns the router serving the API, for tests and embedding.
func (srv *Server) Handler() http.Handler {
	return srv.srv.Handler
}

func (srv *Server) getRouter() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.Route("/api/admin/certificates", func(r chi.Router) {
		r.Use(srv.httpLogger)
		r.Post("/", srv.handler.HandleIssue)
		r.Put("/{id}", srv.handler.HandleUpdate)
	})
	mux.Route("/api/certificates/{id}", func(r chi.Router) {
		r.Use(srv.httpLogger)
		r.Get("/", srv.handler.HandleGet)
		r.Get("/descriptor", srv.handler.HandleDescriptor)
		r.Get("/account", srv.handler.HandleAccount)
	})

	mux.Group(func(r chi.Router) {
		r.Use(srv.httpLogger)
		r.Get("/livez", srv.handleLivenessCheck)
		r.Get("/readyz", srv.handleReadinessCheck)
		r.Get("/drain", srv.handleDrain)
		r.Get("/undrain", srv.handleUndrain)
	})

	if srv.cfg.EnablePprof {
		srv.log.Info("pprof API enabled")
		mux.Mount("/debug", middleware.Profiler())
	}
	return mux
}

func (srv *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(srv.log, next)
}

func (srv *Server) handleLivenessCheck(w http.ResponseWriter, r *http.Request) {
	srv.handler.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "alive"})
}

// handleReadinessCheck reports 503 while draining and while the metadata store is
// unreachable, since no certificate can be issued or read without it.
func (srv *Server) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !srv.isReady.Load() {
		srv.handler.writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "draining"})
		return
	}

	store := srv.cfg.Store
	if store == nil {
		srv.handler.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ready"})
		return
	}
	if !store.Available(r.Context()) {
		srv.log.Warn("Readiness check failed, metadata store unavailable", "store", store.LocationURI())
		srv.handler.writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "store unavailable", Store: store.LocationURI()})
		return
	}
	srv.handler.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ready", Store: store.LocationURI()})
}

func (srv *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	if !srv.drain() {
		srv.handler.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "already draining"})
		return
	}
	srv.log.Info("Registry draining, readiness now fails", "drainDuration", srv.cfg.DrainDuration)
	srv.handler.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "draining"})
}

func (srv *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	if srv.isReady.Swap(true) {
		srv.handler.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "already serving"})
		return
	}
	srv.log.Info("Registry serving again")
	srv.handler.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "serving"})
}

// drain marks the server not ready and records when draining began. It returns false
// if the server was already draining.
func (srv *Server) drain() bool {
	if !srv.isReady.Swap(false) {
		return false
	}
	srv.drainedAt.Store(time.Now())
	return true
}

// waitDrained blocks until DrainDuration has passed since draining began, so load
// balancers stop routing certificate requests before the listener closes.
func (srv *Server) waitDrained() {
	srv.drain()
	remaining := srv.cfg.DrainDuration - time.Since(srv.drainedAt.Load())
	if remaining <= 0 {
		return
	}
	srv.log.Info("Waiting for drain period before shutdown", "remaining", remaining)
	time.Sleep(remaining)
}

func (srv *Server) RunInBackground() {
	// metrics
	if srv.cfg.MetricsAddr != "" {
		go func() {
			srv.log.With("metricsAddress", srv.cfg.MetricsAddr).Info("Starting metrics server")
			err := srv.metricsSrv.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				srv.log.Error("HTTP server failed", "err", err)
			}
		}()
	}

	// api
	go func() {
		srv.log.Info("Starting HTTP server", "listenAddress", srv.cfg.ListenAddr)
		if err := srv.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.log.Error("HTTP server failed", "err", err)
		}
	}()
}

// Shutdown drains the server if no drain was requested, waits out the drain period and
// stops the API and metrics listeners.
func (srv *Server) Shutdown() {
	srv.waitDrained()

	// api
	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
	defer cancel()
	if err := srv.srv.Shutdown(ctx); err != nil {
		srv.log.Error("Graceful HTTP server shutdown failed", "err", err)
	} else {
		srv.log.Info("HTTP server gracefully stopped")
	}

	// metrics
	if len(srv.cfg.MetricsAddr) != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
		defer cancel()

		if err := srv.metricsSrv.Shutdown(ctx); err != nil {
			srv.log.Error("Graceful metrics server shutdown failed", "err", err)
		} else {
			srv.log.Info("Metrics server gracefully stopped")
		}
	}
}
