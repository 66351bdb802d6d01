// Package server exposes a docs.Backend over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recdocs/internal/api"
	"recdocs/internal/docs"
)

// SetupValidator is implemented by backends that can check their storage.
type SetupValidator interface {
	ValidateSetup(ctx context.Context) error
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins  []string
	MaxRequestBytes int64
}

// Server routes document backend requests.
type Server struct {
	backend docs.Backend
	logger  docs.Logger
	opts    Options
	router  chi.Router
}

// New creates a server for backend.
func New(backend docs.Backend, logger docs.Logger, opts Options) *Server {
	s := &Server{backend: backend, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	r.Get("/healthz", s.health)
	r.Get("/readyz", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/folders/{owner}", s.checkFolder)
		r.Post("/folders", s.createFolder)
		r.Post("/files", s.uploadFiles)
		r.Delete("/files/{id}", s.deleteFile)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	v, ok := s.backend.(SetupValidator)
	if ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := v.ValidateSetup(ctx); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("storage unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) checkFolder(w http.ResponseWriter, r *http.Request) {
	owner := docs.OwnerRef(chi.URLParam(r, "owner"))

	lookup, err := s.backend.CheckFolder(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewFolderLookupResponse(lookup))
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var body api.CreateFolderRequest
	if err := decodeValidate(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	folder, err := s.backend.CreateFolder(r.Context(), docs.OwnerRef(body.Owner))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.FolderResponse{Folder: folder})
}

func (s *Server) uploadFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.requestLimit())

	var body api.UploadRequest
	if err := decodeValidate(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	uploaded, err := s.backend.UploadFiles(r.Context(), body.Batch())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if uploaded == nil {
		uploaded = []docs.UploadedFile{}
	}
	writeJSON(w, http.StatusCreated, api.UploadResponse{Files: uploaded})
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := s.backend.DeleteFile(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.DeleteResponse{Deleted: deleted})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}

func (s *Server) requestLimit() int64 {
	if s.opts.MaxRequestBytes <= 0 {
		return 64 << 20
	}
	return s.opts.MaxRequestBytes
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
