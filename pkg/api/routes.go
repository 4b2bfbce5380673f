package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/search/quick", s.HandleQuickSearch)
	mux.HandleFunc("GET /api/extract", s.HandleExtract)
	mux.HandleFunc("GET /api/articles", s.HandleListArticles)
	mux.HandleFunc("GET /api/articles/{id}", s.HandleGetArticle)
	mux.HandleFunc("POST /api/articles/{id}/activate", s.HandleActivateArticle)
	mux.HandleFunc("GET /api/species", s.HandleListSpecies)
	mux.HandleFunc("GET /api/species/{id}", s.HandleGetSpecies)
	mux.HandleFunc("GET /api/indicators", s.HandleIndicators)
	mux.HandleFunc("GET /api/stats", s.HandleStats)
	mux.HandleFunc("GET /api/firehose", s.HandleFirehose)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
