package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jairbenitez29/blueedu/pkg/extractor"
	"github.com/jairbenitez29/blueedu/pkg/storage"
	"github.com/jairbenitez29/blueedu/pkg/version"
)

const defaultListLimit = 50

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}

	envelope, err := s.search.Aggregate(r.Context(), query)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, envelope)
}

func (s *Server) HandleQuickSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}

	results, err := s.search.Quick(r.Context(), query)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, results)
}

// HandleExtract fetches a page, ingests it opportunistically and returns
// the extracted document either way. A malformed URL is the caller's
// fault; an unreachable page maps to 502.
func (s *Server) HandleExtract(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		s.writeError(w, http.StatusBadRequest, "Missing url parameter", "Query parameter 'url' is required")
		return
	}

	doc, err := s.extractor.Extract(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, extractor.ErrUnavailable) {
			s.writeError(w, http.StatusBadGateway, "Extraction failed", err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid URL", err.Error())
		return
	}

	outcome := s.sink.Ingest(r.Context(), doc)

	s.writeJSON(w, http.StatusOK, ExtractResponse{
		Document: doc,
		Ingest: IngestResult{
			Status:   string(outcome.Status),
			RecordID: outcome.RecordID,
			Reason:   outcome.Reason,
		},
	})
}

func (s *Server) HandleListArticles(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	limit := parseLimit(r.URL.Query().Get("limit"))

	articles, err := s.store.ListArticles(r.Context(), includeInactive, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list articles", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ListArticlesResponse{Articles: articles, Count: len(articles)})
}

func (s *Server) HandleGetArticle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	article, err := s.store.GetArticle(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Article not found", fmt.Sprintf("Article '%s' does not exist", id))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get article", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, article)
}

// HandleActivateArticle promotes an unverified scraped article so it shows
// up in public search results.
func (s *Server) HandleActivateArticle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.store.ActivateArticle(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Article not found", fmt.Sprintf("Article '%s' does not exist", id))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to activate article", err.Error())
		return
	}

	article, err := s.store.GetArticle(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get article", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, article)
}

func (s *Server) HandleListSpecies(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	species, err := s.store.ListSpecies(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list species", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ListSpeciesResponse{Species: species, Count: len(species)})
}

func (s *Server) HandleGetSpecies(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	species, err := s.store.GetSpecies(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Species not found", fmt.Sprintf("Species '%s' does not exist", id))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get species", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, species)
}

func (s *Server) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	if s.indicators == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Indicators unavailable", "Indicator panel is not configured")
		return
	}

	panel := s.indicators.Get(r.Context())
	s.writeJSON(w, http.StatusOK, IndicatorsResponse{Indicators: panel, Count: len(panel)})
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get stats", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return limit
}
