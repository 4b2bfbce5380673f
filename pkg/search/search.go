// Package search merges local database lookups with external web search
// results into a single response envelope.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jairbenitez29/blueedu/pkg/core"
	"github.com/jairbenitez29/blueedu/pkg/log"
	"github.com/jairbenitez29/blueedu/pkg/storage"
)

// Per-kind result caps for the hybrid search.
const (
	articleCap   = 3
	speciesCap   = 3
	ecosystemCap = 2
)

// WebSearcher is the slice of the external search client the aggregator
// needs. Implementations never return an error; failures degrade to an
// empty list.
type WebSearcher interface {
	Search(ctx context.Context, query string) []core.WebResult
}

// ArticleHit is an article projected into the uniform search shape.
type ArticleHit struct {
	ID          string    `json:"id"`
	Kind        string    `json:"tipo"`
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	Category    string    `json:"categoria"`
	Date        time.Time `json:"fecha"`
}

// SpeciesHit is a species projected into the uniform search shape; the
// description slot carries the scientific name.
type SpeciesHit struct {
	ID          string `json:"id"`
	Kind        string `json:"tipo"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Category    string `json:"categoria"`
	Status      string `json:"estado,omitempty"`
}

// EcosystemHit is an ecosystem projected into the uniform search shape.
type EcosystemHit struct {
	ID          string  `json:"id"`
	Kind        string  `json:"tipo"`
	Title       string  `json:"titulo"`
	Description string  `json:"descripcion"`
	Health      float64 `json:"salud"`
}

// LocalResults groups the three local record kinds.
type LocalResults struct {
	Articles   []ArticleHit   `json:"articulos"`
	Species    []SpeciesHit   `json:"especies"`
	Ecosystems []EcosystemHit `json:"ecosistemas"`
}

// Envelope is the merged hybrid search response.
type Envelope struct {
	Local      LocalResults     `json:"local"`
	Web        []core.WebResult `json:"web"`
	TotalLocal int              `json:"totalLocal"`
	TotalWeb   int              `json:"totalWeb"`
}

// QuickArticle and QuickSpecies are the minimal projections returned by
// the title-only quick search.
type QuickArticle struct {
	ID       string `json:"id"`
	Title    string `json:"titulo"`
	Category string `json:"categoria"`
}

type QuickSpecies struct {
	ID             string `json:"id"`
	CommonName     string `json:"nombre_comun"`
	ScientificName string `json:"nombre_cientifico"`
}

// QuickResults is the quick-search response.
type QuickResults struct {
	Articles []QuickArticle `json:"articulos"`
	Species  []QuickSpecies `json:"especies"`
}

// Service runs hybrid searches against the store and the web client.
type Service struct {
	store  *storage.Store
	web    WebSearcher
	logger *log.Logger
}

// NewService creates a search Service. web may be nil, in which case only
// local results are returned.
func NewService(store *storage.Store, web WebSearcher) *Service {
	return &Service{
		store:  store,
		web:    web,
		logger: log.ForService("search"),
	}
}

// Aggregate runs the three local lookups and the web search concurrently
// and merges everything into one envelope. Local store failures propagate;
// the web branch absorbs its own failures as an empty list.
func (s *Service) Aggregate(ctx context.Context, query string) (*Envelope, error) {
	var (
		wg         sync.WaitGroup
		articles   []core.Article
		species    []core.Species
		ecosystems []core.Ecosystem
		web        []core.WebResult

		articleErr   error
		speciesErr   error
		ecosystemErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		articles, articleErr = s.store.SearchArticles(ctx, query, articleCap)
	}()
	go func() {
		defer wg.Done()
		species, speciesErr = s.store.SearchSpecies(ctx, query, speciesCap)
	}()
	go func() {
		defer wg.Done()
		ecosystems, ecosystemErr = s.store.SearchEcosystems(ctx, query, ecosystemCap)
	}()

	if s.web != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			web = s.web.Search(ctx, query)
		}()
	}

	wg.Wait()

	for _, err := range []error{articleErr, speciesErr, ecosystemErr} {
		if err != nil {
			return nil, fmt.Errorf("searching local records: %w", err)
		}
	}

	local := LocalResults{
		Articles:   projectArticles(articles),
		Species:    projectSpecies(species),
		Ecosystems: projectEcosystems(ecosystems),
	}
	return &Envelope{
		Local:      local,
		Web:        web,
		TotalLocal: len(local.Articles) + len(local.Species) + len(local.Ecosystems),
		TotalWeb:   len(web),
	}, nil
}

// Quick runs the title-only search used by typeahead callers. It skips
// ecosystems and the web entirely.
func (s *Service) Quick(ctx context.Context, query string) (*QuickResults, error) {
	var (
		wg         sync.WaitGroup
		articles   []core.Article
		species    []core.Species
		articleErr error
		speciesErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		articles, articleErr = s.store.SearchArticleTitles(ctx, query, articleCap)
	}()
	go func() {
		defer wg.Done()
		species, speciesErr = s.store.SearchSpeciesNames(ctx, query, speciesCap)
	}()
	wg.Wait()

	if articleErr != nil {
		return nil, fmt.Errorf("searching article titles: %w", articleErr)
	}
	if speciesErr != nil {
		return nil, fmt.Errorf("searching species names: %w", speciesErr)
	}

	out := &QuickResults{
		Articles: make([]QuickArticle, 0, len(articles)),
		Species:  make([]QuickSpecies, 0, len(species)),
	}
	for _, a := range articles {
		out.Articles = append(out.Articles, QuickArticle{ID: a.ID, Title: a.Title, Category: a.Category})
	}
	for _, sp := range species {
		out.Species = append(out.Species, QuickSpecies{ID: sp.ID, CommonName: sp.CommonName, ScientificName: sp.ScientificName})
	}
	return out, nil
}

func projectArticles(articles []core.Article) []ArticleHit {
	hits := make([]ArticleHit, 0, len(articles))
	for _, a := range articles {
		hits = append(hits, ArticleHit{
			ID:          a.ID,
			Kind:        string(core.KindArticle),
			Title:       a.Title,
			Description: a.Summary,
			Category:    a.Category,
			Date:        a.PublishedAt,
		})
	}
	return hits
}

func projectSpecies(species []core.Species) []SpeciesHit {
	hits := make([]SpeciesHit, 0, len(species))
	for _, sp := range species {
		category := sp.Category
		if category == "" {
			category = "Sin categoría"
		}
		hits = append(hits, SpeciesHit{
			ID:          sp.ID,
			Kind:        string(core.KindSpecies),
			Title:       sp.CommonName,
			Description: sp.ScientificName,
			Category:    category,
			Status:      sp.ConservationStatus,
		})
	}
	return hits
}

func projectEcosystems(ecosystems []core.Ecosystem) []EcosystemHit {
	hits := make([]EcosystemHit, 0, len(ecosystems))
	for _, eco := range ecosystems {
		hits = append(hits, EcosystemHit{
			ID:          eco.ID,
			Kind:        "ecosistema",
			Title:       eco.Name,
			Description: fmt.Sprintf("Por %s", eco.OwnerName),
			Health:      eco.CoralHealth,
		})
	}
	return hits
}
