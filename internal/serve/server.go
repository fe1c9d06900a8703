package serve

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/upmkit/upmkit/internal/errors"
	"github.com/upmkit/upmkit/internal/refresh"
)

// Server is a read-only npm-compatible registry over a local Store,
// with a refresh hub that announces published packages.
type Server struct {
	store   *Store
	hub     *refresh.Hub
	metrics *metrics
	router  chi.Router
}

// NewServer builds a registry server over the directory at root.
func NewServer(root string) (*Server, error) {
	store, err := NewStore(root)
	if err != nil {
		return nil, err
	}

	// Per-server registry so repeated construction never collides on
	// metric registration.
	reg := prometheus.NewRegistry()

	s := &Server{
		store:   store,
		hub:     refresh.NewHub(),
		metrics: newMetrics(WithRegistry(reg)),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(tracing)
	r.Use(s.metrics.middleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/ws", s.hub.HandleWebSocket)
	r.Get("/{package}", s.handlePackument)
	r.Get("/{package}/-/{tarball}", s.handleTarball)

	s.router = r
	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Publish writes a package into the store and tells connected clients
// about it.
func (s *Server) Publish(name string, packument []byte, tarballName string, tarball []byte) error {
	if err := s.store.Publish(name, packument, tarballName, tarball); err != nil {
		return err
	}
	s.hub.PackagesChanged(name)
	return nil
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New("E402").WithPath(addr).Wrap(err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return errors.New("E402").WithPath(addr).Wrap(err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handlePackument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "package")

	data, err := s.store.Packument(name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleTarball(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "package")
	file := chi.URLParam(r, "tarball")

	data, err := s.store.Tarball(name, file)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.metrics.packagesServed.Inc()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// writeStoreError maps store errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.CodeOf(err) == "E302" {
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}
