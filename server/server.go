// Package server exposes the content store over HTTP for networked
// deployments: category listings, the download counter and the live
// viewer count as a server-sent event stream.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"hymods/content"
	"hymods/store"
	"hymods/tracker"
)

// Server wires the store and the viewer tracker into an HTTP API.
type Server struct {
	store   store.Store
	tracker *tracker.Tracker
	log     *zap.SugaredLogger
}

// New creates a server over the given store.
func New(st store.Store, tr *tracker.Tracker, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{store: st, tracker: tr, log: log}
}

// Router builds the chi router with all routes wired up.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", s.handleEvents)
		r.Get("/{category}", s.handleList)
		r.Post("/download/{category}/{id}", s.handleDownload)
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "HyMods server is running")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	cat, err := content.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	records, err := s.store.ListAll(r.Context(), cat)
	if err != nil {
		s.log.Errorw("Failed to list category", zap.String("category", string(cat)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []content.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	cat, err := content.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	id := chi.URLParam(r, "id")

	if err := s.store.IncrementDownloads(r.Context(), cat, id); err != nil {
		s.log.Errorw("Failed to increment downloads",
			zap.String("category", string(cat)),
			zap.String("id", id),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleEvents streams online-count events to the client for as long as the
// connection stays open. Each connection counts as one viewer.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	counts := s.tracker.Subscribe()
	defer s.tracker.Unsubscribe(counts)

	s.log.Infow("Viewer connected", zap.Int("online", s.tracker.Connect()))
	defer func() {
		s.log.Infow("Viewer disconnected", zap.Int("online", s.tracker.Disconnect()))
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case count := <-counts:
			fmt.Fprintf(w, "event: online-count\ndata: %d\n\n", count)
			flusher.Flush()
		}
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		s.log.Infow("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
