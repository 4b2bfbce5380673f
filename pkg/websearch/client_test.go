package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jairbenitez29/blueedu/pkg/core"
)

// memoryCache is an in-memory ResultCache for tests.
type memoryCache struct {
	mu     sync.Mutex
	rows   map[string]cacheRow
	writes int
}

type cacheRow struct {
	results   []core.WebResult
	expiresAt time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{rows: make(map[string]cacheRow)}
}

func (m *memoryCache) GetCachedResults(_ context.Context, query string) ([]core.WebResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[query]
	if !ok || !time.Now().Before(row.expiresAt) {
		return nil, false, nil
	}
	return row.results, true, nil
}

func (m *memoryCache) PutCachedResults(_ context.Context, query string, results []core.WebResult, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[query] = cacheRow{results: results, expiresAt: expiresAt}
	m.writes++
	return nil
}

func newSearchServer(t *testing.T, calls *int, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if got := r.URL.Query().Get("safe"); got != "active" {
			t.Errorf("safe = %q, want active", got)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

const itemsBody = `{"items":[
	{"title":"Coral reefs","link":"https://www.noaa.gov/coral","snippet":"About coral"},
	{"title":"","link":"https://ocean.org/reefs","snippet":""}
]}`

func testConfig(baseURL string) Config {
	return Config{
		APIKey:         "test-key",
		SearchEngineID: "test-cx",
		BaseURL:        baseURL,
	}
}

func TestSearchCachesSecondCall(t *testing.T) {
	calls := 0
	srv := newSearchServer(t, &calls, http.StatusOK, itemsBody)
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), newMemoryCache())

	first := client.Search(context.Background(), "Coral ")
	if len(first) != 2 {
		t.Fatalf("expected 2 results, got %d", len(first))
	}
	if first[0].Source != "noaa.gov" {
		t.Errorf("source = %q, want noaa.gov", first[0].Source)
	}
	if first[1].Title != "Sin título" || first[1].Description != "Sin descripción disponible" {
		t.Errorf("missing-field defaults not applied: %+v", first[1])
	}

	second := client.Search(context.Background(), "coral")
	if len(second) != 2 {
		t.Fatalf("expected cached results, got %d", len(second))
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 upstream call within the TTL, got %d", calls)
	}
}

func TestSearchWithoutCredentials(t *testing.T) {
	calls := 0
	srv := newSearchServer(t, &calls, http.StatusOK, itemsBody)
	defer srv.Close()

	cache := newMemoryCache()
	client := NewClient(Config{BaseURL: srv.URL}, cache)

	if got := client.Search(context.Background(), "coral"); len(got) != 0 {
		t.Fatalf("expected no results without credentials, got %d", len(got))
	}
	if calls != 0 {
		t.Errorf("no upstream call expected, got %d", calls)
	}
	if cache.writes != 0 {
		t.Errorf("no cache write expected, got %d", cache.writes)
	}
}

func TestSearchUpstreamFailureDegrades(t *testing.T) {
	calls := 0
	srv := newSearchServer(t, &calls, http.StatusForbidden, `{"error":"quota"}`)
	defer srv.Close()

	cache := newMemoryCache()
	client := NewClient(testConfig(srv.URL), cache)

	if got := client.Search(context.Background(), "coral"); len(got) != 0 {
		t.Fatalf("expected empty result on upstream failure, got %d", len(got))
	}
	if cache.writes != 0 {
		t.Errorf("failed fetches must not be cached")
	}
}

func TestSearchEmptyItemsNotCached(t *testing.T) {
	calls := 0
	srv := newSearchServer(t, &calls, http.StatusOK, `{}`)
	defer srv.Close()

	cache := newMemoryCache()
	client := NewClient(testConfig(srv.URL), cache)

	if got := client.Search(context.Background(), "nothing"); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
	if cache.writes != 0 {
		t.Errorf("empty result sets must not be cached")
	}
}

func TestSearchLimitBypassesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("num"); got != "3" {
			t.Errorf("num = %q, want 3", got)
		}
		fmt.Fprint(w, itemsBody)
	}))
	defer srv.Close()

	cache := newMemoryCache()
	client := NewClient(testConfig(srv.URL), cache)

	client.SearchLimit(context.Background(), "tortuga", 3)
	client.SearchLimit(context.Background(), "tortuga", 3)
	if calls != 2 {
		t.Fatalf("SearchLimit must not cache, expected 2 calls, got %d", calls)
	}
	if cache.writes != 0 {
		t.Errorf("SearchLimit must not write to the cache")
	}
}

func TestQueryIsEscaped(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, itemsBody)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), newMemoryCache())
	client.Search(context.Background(), "coral & algas 100%")

	if gotQuery != "coral & algas 100%" {
		t.Errorf("query roundtrip failed: %q", gotQuery)
	}
}
