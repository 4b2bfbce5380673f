package extractor

import (
	"context"
	"fmt"

	"github.com/jairbenitez29/blueedu/pkg/core"
)

// Searcher is the slice of the web search client that lookups need.
type Searcher interface {
	SearchLimit(ctx context.Context, query string, limit int) []core.WebResult
}

const (
	lookupSearchCap  = 3
	lookupExtractCap = 2
)

// LookupSpecies searches the web for a marine species by name and extracts
// the top results. Extraction failures are skipped, never propagated, so
// the returned slice holds only the pages that could be parsed.
func (e *Extractor) LookupSpecies(ctx context.Context, searcher Searcher, name string) []core.WebDocument {
	query := fmt.Sprintf("%s especie marina nombre científico hábitat", name)
	return e.searchAndExtract(ctx, searcher, query)
}

// LookupTopic searches the web for scientific articles about a marine
// research topic and extracts the top results.
func (e *Extractor) LookupTopic(ctx context.Context, searcher Searcher, topic string) []core.WebDocument {
	query := fmt.Sprintf("%s investigación científica océano marina ODS 14", topic)
	return e.searchAndExtract(ctx, searcher, query)
}

func (e *Extractor) searchAndExtract(ctx context.Context, searcher Searcher, query string) []core.WebDocument {
	results := searcher.SearchLimit(ctx, query, lookupSearchCap)
	if len(results) > lookupExtractCap {
		results = results[:lookupExtractCap]
	}

	var docs []core.WebDocument
	for _, result := range results {
		doc, err := e.Extract(ctx, result.URL)
		if err != nil {
			e.logger.Warnf("extracting %s: %v", result.URL, err)
			continue
		}
		docs = append(docs, *doc)
	}
	return docs
}
