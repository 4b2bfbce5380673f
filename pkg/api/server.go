// Package api exposes the REST and WebSocket surface of the platform
// backend: hybrid search, page extraction, the record catalog and the
// SDG 14 indicator panel.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/jairbenitez29/blueedu/pkg/extractor"
	"github.com/jairbenitez29/blueedu/pkg/indicators"
	"github.com/jairbenitez29/blueedu/pkg/ingest"
	"github.com/jairbenitez29/blueedu/pkg/log"
	"github.com/jairbenitez29/blueedu/pkg/realtime"
	"github.com/jairbenitez29/blueedu/pkg/search"
	"github.com/jairbenitez29/blueedu/pkg/storage"
)

type Server struct {
	store      *storage.Store
	search     *search.Service
	extractor  *extractor.Extractor
	sink       *ingest.Sink
	indicators *indicators.Cache
	hub        *realtime.Hub
	logger     *log.Logger
}

// Deps bundles the collaborators the server routes requests to. Optional
// fields (indicators, hub) may be nil; their endpoints then degrade.
type Deps struct {
	Store      *storage.Store
	Search     *search.Service
	Extractor  *extractor.Extractor
	Sink       *ingest.Sink
	Indicators *indicators.Cache
	Hub        *realtime.Hub
}

func NewServer(deps Deps) *Server {
	return &Server{
		store:      deps.Store,
		search:     deps.Search,
		extractor:  deps.Extractor,
		sink:       deps.Sink,
		indicators: deps.Indicators,
		hub:        deps.Hub,
		logger:     log.ForService("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
