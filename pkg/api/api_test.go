package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jairbenitez29/blueedu/pkg/core"
	"github.com/jairbenitez29/blueedu/pkg/extractor"
	"github.com/jairbenitez29/blueedu/pkg/indicators"
	"github.com/jairbenitez29/blueedu/pkg/ingest"
	"github.com/jairbenitez29/blueedu/pkg/realtime"
	"github.com/jairbenitez29/blueedu/pkg/search"
	"github.com/jairbenitez29/blueedu/pkg/storage"
)

type staticWeb struct {
	results []core.WebResult
}

func (f *staticWeb) Search(context.Context, string) []core.WebResult {
	return f.results
}

type staticIndicators struct{}

func (staticIndicators) Fetch(context.Context) []indicators.Indicator {
	return []indicators.Indicator{{Name: "Sobrepesca", Value: "35.4", Unit: "%"}}
}

func newTestServer(t *testing.T, web []core.WebResult) (*httptest.Server, *storage.Store, *realtime.Hub) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hub := realtime.NewHub(8)
	srv := NewServer(Deps{
		Store:      store,
		Search:     search.NewService(store, &staticWeb{results: web}),
		Extractor:  extractor.New(5 * time.Second),
		Sink:       ingest.NewSink(store, hub),
		Indicators: indicators.NewCache(staticIndicators{}, time.Hour),
		Hub:        hub,
	})

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(CorsMiddleware(mux))
	t.Cleanup(ts.Close)
	return ts, store, hub
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)

	var health HealthResponse
	getJSON(t, ts.URL+"/health", http.StatusOK, &health)
	if health.Status != "ok" {
		t.Errorf("status = %q", health.Status)
	}
	if health.Version == "" {
		t.Error("version missing")
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)
	getJSON(t, ts.URL+"/api/search", http.StatusBadRequest, nil)
	getJSON(t, ts.URL+"/api/search/quick", http.StatusBadRequest, nil)
}

func TestSearchEndpoint(t *testing.T) {
	web := []core.WebResult{{Title: "Coral", URL: "https://noaa.gov/coral", Source: "noaa.gov"}}
	ts, store, _ := newTestServer(t, web)

	err := store.InsertArticle(context.Background(), &core.Article{
		Title:       "El coral del Caribe",
		Summary:     "Resumen",
		Category:    "Investigación",
		PublishedAt: time.Now().UTC(),
		Active:      true,
	})
	if err != nil {
		t.Fatalf("seeding article: %v", err)
	}

	var env search.Envelope
	getJSON(t, ts.URL+"/api/search?q=coral", http.StatusOK, &env)
	if env.TotalLocal != 1 {
		t.Errorf("totalLocal = %d, want 1", env.TotalLocal)
	}
	if env.TotalWeb != 1 {
		t.Errorf("totalWeb = %d, want 1", env.TotalWeb)
	}
	if len(env.Local.Articles) != 1 || env.Local.Articles[0].Title != "El coral del Caribe" {
		t.Errorf("articles = %+v", env.Local.Articles)
	}
}

func TestExtractEndpointIngests(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Noticia marina</title></head><body><article><p>Texto de la noticia.</p></article></body></html>`)
	}))
	defer page.Close()

	ts, store, _ := newTestServer(t, nil)

	var out ExtractResponse
	getJSON(t, ts.URL+"/api/extract?url="+url.QueryEscape(page.URL), http.StatusOK, &out)
	if out.Document == nil || out.Document.Title != "Noticia marina" {
		t.Fatalf("document = %+v", out.Document)
	}
	if out.Ingest.Status != string(ingest.StatusCreated) {
		t.Errorf("ingest status = %q (%s)", out.Ingest.Status, out.Ingest.Reason)
	}

	stored, err := store.FindArticleBySourceOrTitle(context.Background(), page.URL, "")
	if err != nil {
		t.Fatalf("article not persisted: %v", err)
	}
	if stored.Active {
		t.Error("scraped article must start inactive")
	}
}

func TestExtractEndpointErrors(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)

	getJSON(t, ts.URL+"/api/extract", http.StatusBadRequest, nil)
	getJSON(t, ts.URL+"/api/extract?url=not-a-url", http.StatusBadRequest, nil)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer down.Close()
	getJSON(t, ts.URL+"/api/extract?url="+url.QueryEscape(down.URL), http.StatusBadGateway, nil)
}

func TestArticleLifecycle(t *testing.T) {
	ts, store, _ := newTestServer(t, nil)
	ctx := context.Background()

	article := &core.Article{
		Title:       "Artículo sin verificar",
		Summary:     "Resumen",
		Category:    core.CategoryWebUnverified,
		PublishedAt: time.Now().UTC(),
		Active:      false,
		Views:       1,
	}
	if err := store.InsertArticle(ctx, article); err != nil {
		t.Fatalf("seeding article: %v", err)
	}

	// Not visible in the public list.
	var list ListArticlesResponse
	getJSON(t, ts.URL+"/api/articles", http.StatusOK, &list)
	if list.Count != 0 {
		t.Fatalf("public list count = %d, want 0", list.Count)
	}
	getJSON(t, ts.URL+"/api/articles?include_inactive=true", http.StatusOK, &list)
	if list.Count != 1 {
		t.Fatalf("admin list count = %d, want 1", list.Count)
	}

	// Promote it.
	resp, err := http.Post(ts.URL+"/api/articles/"+article.ID+"/activate", "application/json", nil)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d", resp.StatusCode)
	}

	getJSON(t, ts.URL+"/api/articles", http.StatusOK, &list)
	if list.Count != 1 {
		t.Fatalf("list count after activation = %d, want 1", list.Count)
	}

	var got core.Article
	getJSON(t, ts.URL+"/api/articles/"+article.ID, http.StatusOK, &got)
	if !got.Active {
		t.Error("article not active after promotion")
	}

	getJSON(t, ts.URL+"/api/articles/missing-id", http.StatusNotFound, nil)
}

func TestSpeciesEndpoints(t *testing.T) {
	ts, store, _ := newTestServer(t, nil)

	sp := &core.Species{
		CommonName:     "Tortuga verde",
		ScientificName: "Chelonia mydas",
		Description:    "Tortuga marina",
		Habitat:        "Aguas tropicales",
	}
	if err := store.InsertSpecies(context.Background(), sp); err != nil {
		t.Fatalf("seeding species: %v", err)
	}

	var list ListSpeciesResponse
	getJSON(t, ts.URL+"/api/species", http.StatusOK, &list)
	if list.Count != 1 {
		t.Fatalf("species count = %d, want 1", list.Count)
	}

	var got core.Species
	getJSON(t, ts.URL+"/api/species/"+sp.ID, http.StatusOK, &got)
	if got.ScientificName != "Chelonia mydas" {
		t.Errorf("scientific name = %q", got.ScientificName)
	}

	getJSON(t, ts.URL+"/api/species/missing-id", http.StatusNotFound, nil)
}

func TestIndicatorsEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)

	var out IndicatorsResponse
	getJSON(t, ts.URL+"/api/indicators", http.StatusOK, &out)
	if out.Count != 1 || out.Indicators[0].Name != "Sobrepesca" {
		t.Errorf("indicators = %+v", out)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)

	var stats map[string]any
	getJSON(t, ts.URL+"/api/stats", http.StatusOK, &stats)
	if _, ok := stats["articles"]; !ok {
		t.Errorf("stats missing articles key: %v", stats)
	}
}

func TestCorsHeaders(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/search", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("OPTIONS status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestFirehoseStreamsIngestEvents(t *testing.T) {
	ts, _, hub := newTestServer(t, nil)

	u, _ := url.Parse(ts.URL)
	u.Scheme = "ws"
	u.Path = "/api/firehose"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	var init firehoseInit
	if err := conn.ReadJSON(&init); err != nil {
		t.Fatalf("read init: %v", err)
	}
	if init.Type != "init" {
		t.Fatalf("expected init frame, got %q", init.Type)
	}

	hub.Publish(realtime.IngestEvent{
		Kind:   "articulo",
		Title:  "Noticia",
		Status: "created",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env realtime.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if env.Type != "ingest" || env.Ingest.Title != "Noticia" {
		t.Errorf("event = %+v", env)
	}
}
