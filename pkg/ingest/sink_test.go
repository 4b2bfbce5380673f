package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jairbenitez29/blueedu/pkg/core"
	"github.com/jairbenitez29/blueedu/pkg/realtime"
	"github.com/jairbenitez29/blueedu/pkg/storage"
)

func newTestSink(t *testing.T) (*Sink, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewSink(store, nil), store
}

func articleDoc(url string) *core.WebDocument {
	return &core.WebDocument{
		Title:       "Corales del Caribe",
		Description: "Un estudio sobre los arrecifes.",
		Body:        "Los arrecifes de coral del Caribe están en declive.",
		URL:         url,
		Source:      "example.com",
		Kind:        core.KindArticle,
	}
}

func TestIngestArticleIdempotent(t *testing.T) {
	sink, store := newTestSink(t)
	ctx := context.Background()
	doc := articleDoc("https://example.com/corales")

	first := sink.Ingest(ctx, doc)
	if first.Status != StatusCreated {
		t.Fatalf("first ingest status = %q, want %q (%s)", first.Status, StatusCreated, first.Reason)
	}

	second := sink.Ingest(ctx, doc)
	if second.Status != StatusDuplicate {
		t.Fatalf("second ingest status = %q, want %q", second.Status, StatusDuplicate)
	}
	if second.RecordID != first.RecordID {
		t.Errorf("duplicate resolved to a different record: %s vs %s", second.RecordID, first.RecordID)
	}

	stored, err := store.FindArticleBySourceOrTitle(ctx, doc.URL, "")
	if err != nil {
		t.Fatalf("finding article: %v", err)
	}
	if stored.Views != 2 {
		t.Errorf("views = %d, want 2", stored.Views)
	}
	if stored.Category != core.CategoryWebUnverified {
		t.Errorf("category = %q", stored.Category)
	}
	if stored.Active {
		t.Error("scraped article must start inactive")
	}
	if stored.Author != "example.com" {
		t.Errorf("author = %q, want source domain", stored.Author)
	}
	if stored.Keywords != "Web, Externo" {
		t.Errorf("keywords = %q", stored.Keywords)
	}
}

func TestIngestArticleMatchesByTitle(t *testing.T) {
	sink, _ := newTestSink(t)
	ctx := context.Background()

	sink.Ingest(ctx, articleDoc("https://example.com/a"))
	outcome := sink.Ingest(ctx, articleDoc("https://example.com/b"))
	if outcome.Status != StatusDuplicate {
		t.Fatalf("same title from another URL should be a duplicate, got %q", outcome.Status)
	}
}

func TestIngestSpeciesInserts(t *testing.T) {
	sink, store := newTestSink(t)
	ctx := context.Background()

	doc := &core.WebDocument{
		Title:       "Tortuga verde",
		Description: "Tortuga marina de aguas tropicales.",
		Body:        "La tortuga verde. Scientific name: Chelonia mydas. Habita océanos cálidos.",
		URL:         "https://example.com/species/turtle",
		Source:      "example.com",
		Kind:        core.KindSpecies,
	}

	outcome := sink.Ingest(ctx, doc)
	if outcome.Status != StatusCreated {
		t.Fatalf("status = %q, want %q (%s)", outcome.Status, StatusCreated, outcome.Reason)
	}

	stored, err := store.FindSpeciesByName(ctx, "Tortuga verde", "")
	if err != nil {
		t.Fatalf("finding species: %v", err)
	}
	if stored.ScientificName != "Chelonia mydas" {
		t.Errorf("scientific name = %q, want %q", stored.ScientificName, "Chelonia mydas")
	}
	if stored.Category != core.CategoryWebUnverified {
		t.Errorf("category = %q", stored.Category)
	}
	if stored.DepthMin != nil || stored.TempMax != nil {
		t.Error("numeric ranges must stay null for scraped species")
	}

	// Second ingest of the same page leaves the record untouched.
	if again := sink.Ingest(ctx, doc); again.Status != StatusDuplicate {
		t.Errorf("second ingest status = %q, want %q", again.Status, StatusDuplicate)
	}
}

func TestIngestSpeciesWithoutScientificName(t *testing.T) {
	sink, store := newTestSink(t)
	ctx := context.Background()

	doc := &core.WebDocument{
		Title: "pez payaso",
		Body:  "un pez de colores que vive en anémonas",
		URL:   "https://example.com/especie/payaso",
		Kind:  core.KindSpecies,
	}
	if outcome := sink.Ingest(ctx, doc); outcome.Status != StatusCreated {
		t.Fatalf("status = %q (%s)", outcome.Status, outcome.Reason)
	}

	stored, err := store.FindSpeciesByName(ctx, "pez payaso", "")
	if err != nil {
		t.Fatalf("finding species: %v", err)
	}
	if stored.ScientificName != NotSpecified {
		t.Errorf("scientific name = %q, want %q", stored.ScientificName, NotSpecified)
	}
}

func TestIngestHabitatExcerpt(t *testing.T) {
	sink, store := newTestSink(t)
	ctx := context.Background()

	body := "Nombre científico: Chelonia mydas. "
	for len(body) < 1000 {
		body += "hábitat marino tropical "
	}
	doc := &core.WebDocument{
		Title: "Tortuga",
		Body:  body,
		URL:   "https://example.com/wiki/tortuga",
		Kind:  core.KindSpecies,
	}
	sink.Ingest(ctx, doc)

	stored, err := store.FindSpeciesByName(ctx, "Tortuga", "")
	if err != nil {
		t.Fatalf("finding species: %v", err)
	}
	if got := len([]rune(stored.Habitat)); got != 500 {
		t.Errorf("habitat excerpt = %d runes, want 500", got)
	}
}

func TestIngestPublishesEvents(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hub := realtime.NewHub(4)
	id, events := hub.Register()
	defer hub.Unregister(id)

	sink := NewSink(store, hub)
	sink.Ingest(context.Background(), articleDoc("https://example.com/evento"))

	select {
	case env := <-events:
		if env.Type != "ingest" {
			t.Errorf("envelope type = %q", env.Type)
		}
		if env.Ingest.Status != string(StatusCreated) {
			t.Errorf("event status = %q", env.Ingest.Status)
		}
		if env.Ingest.Title != "Corales del Caribe" {
			t.Errorf("event title = %q", env.Ingest.Title)
		}
	default:
		t.Fatal("no event published")
	}
}

func TestScientificName(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"spanish label", "El nombre científico: Chelonia mydas se usa", "Chelonia mydas"},
		{"english label", "Scientific name: Amphiprion ocellaris lives here", "Amphiprion ocellaris"},
		{"parenthesized", "La tortuga boba (Caretta caretta) anida aquí", "Caretta caretta"},
		{"bare binomial", "el delfín común Delphinus delphis frente a la costa", "Delphinus delphis"},
		{"nothing", "un texto sin nombres en latín", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScientificName(tc.text); got != tc.want {
				t.Errorf("ScientificName(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
