package cmd

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jairbenitez29/blueedu/pkg/config"
	"github.com/jairbenitez29/blueedu/pkg/core"
	"github.com/jairbenitez29/blueedu/pkg/storage"
	"github.com/jairbenitez29/blueedu/pkg/websearch"
)

// openStore opens the SQLite store configured by cfg, running pending
// migrations on the way.
func openStore(cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", cfg.DBPath(), err)
	}
	return store, nil
}

func closeStore(store *storage.Store) {
	if err := store.Close(); err != nil {
		fmt.Printf("Warning: failed to close store: %v\n", err)
	}
}

// newWebClient builds the external search client from the config.
func newWebClient(cfg *config.Config, cache websearch.ResultCache) *websearch.Client {
	return websearch.NewClient(websearch.Config{
		APIKey:         cfg.WebSearch.APIKey,
		SearchEngineID: cfg.WebSearch.SearchEngineID,
		Language:       cfg.WebSearch.Language,
		CacheTTL:       cfg.WebSearch.CacheTTL.Duration,
		Timeout:        cfg.WebSearch.Timeout.Duration,
	}, cache)
}

// swappableWebClient lets the serve loop replace the search client when
// the configuration file changes, without restarting the HTTP server.
type swappableWebClient struct {
	current atomic.Pointer[websearch.Client]
}

func (s *swappableWebClient) Store(client *websearch.Client) {
	s.current.Store(client)
}

// Search delegates to whichever client is current.
func (s *swappableWebClient) Search(ctx context.Context, query string) []core.WebResult {
	return s.current.Load().Search(ctx, query)
}
