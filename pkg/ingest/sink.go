// Package ingest persists extracted web documents as unverified records.
// Persistence is opportunistic: the caller always gets its document back,
// and anything that goes wrong here is logged, reported in the Outcome and
// otherwise swallowed.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/jairbenitez29/blueedu/pkg/core"
	"github.com/jairbenitez29/blueedu/pkg/log"
	"github.com/jairbenitez29/blueedu/pkg/realtime"
	"github.com/jairbenitez29/blueedu/pkg/storage"
)

// NotSpecified is stored as the scientific name when none can be recovered
// from the page text.
const NotSpecified = "No especificado"

const habitatExcerptRunes = 500

// Status describes what the sink did with a document.
type Status string

const (
	// StatusCreated means a new unverified record was inserted.
	StatusCreated Status = "created"
	// StatusDuplicate means an existing record matched; for articles its
	// view count was incremented, for species nothing was changed.
	StatusDuplicate Status = "duplicate"
	// StatusSkipped means persistence failed or did not apply; Reason says why.
	StatusSkipped Status = "skipped"
)

// Outcome reports the persistence decision for one document. It exists for
// observability; callers that only want the document can ignore it.
type Outcome struct {
	Status   Status
	RecordID string
	Reason   string
}

// Sink decides whether an extracted document already exists in the store
// and either inserts it or bumps the existing record.
type Sink struct {
	store  *storage.Store
	hub    *realtime.Hub
	logger *log.Logger
}

// NewSink creates a Sink. hub may be nil when no firehose is wired.
func NewSink(store *storage.Store, hub *realtime.Hub) *Sink {
	return &Sink{
		store:  store,
		hub:    hub,
		logger: log.ForService("ingest"),
	}
}

// Ingest persists doc according to its kind. It never returns an error:
// store failures yield StatusSkipped with the reason recorded, because the
// extraction result must reach the caller regardless.
func (s *Sink) Ingest(ctx context.Context, doc *core.WebDocument) Outcome {
	var outcome Outcome
	switch doc.Kind {
	case core.KindSpecies:
		outcome = s.ingestSpecies(ctx, doc)
	default:
		outcome = s.ingestArticle(ctx, doc)
	}

	switch outcome.Status {
	case StatusCreated:
		s.logger.Infof("saved %s: %s", doc.Kind, doc.Title)
	case StatusDuplicate:
		s.logger.Infof("duplicate %s: %s", doc.Kind, doc.Title)
	case StatusSkipped:
		s.logger.Warnf("skipped %s %q: %s", doc.Kind, doc.Title, outcome.Reason)
	}

	if s.hub != nil {
		s.hub.Publish(realtime.IngestEvent{
			ID:         outcome.RecordID,
			Kind:       string(doc.Kind),
			Title:      doc.Title,
			URL:        doc.URL,
			Source:     doc.Source,
			Status:     string(outcome.Status),
			Reason:     outcome.Reason,
			OccurredAt: time.Now().UTC(),
		})
	}
	return outcome
}

func (s *Sink) ingestArticle(ctx context.Context, doc *core.WebDocument) Outcome {
	existing, err := s.store.FindArticleBySourceOrTitle(ctx, doc.URL, doc.Title)
	switch {
	case err == nil:
		if err := s.store.IncrementArticleViews(ctx, existing.ID); err != nil {
			return Outcome{Status: StatusSkipped, RecordID: existing.ID, Reason: err.Error()}
		}
		return Outcome{Status: StatusDuplicate, RecordID: existing.ID}
	case errors.Is(err, storage.ErrNotFound):
		article := &core.Article{
			Title:     doc.Title,
			Author:    doc.Source,
			Summary:   doc.Description,
			Body:      doc.Body,
			Category:  core.CategoryWebUnverified,
			SourceURL: doc.URL,
			Keywords:  "Web, Externo",
			Active:    false,
			Views:     1,
		}
		if err := s.store.InsertArticle(ctx, article); err != nil {
			return Outcome{Status: StatusSkipped, Reason: err.Error()}
		}
		return Outcome{Status: StatusCreated, RecordID: article.ID}
	default:
		return Outcome{Status: StatusSkipped, Reason: err.Error()}
	}
}

func (s *Sink) ingestSpecies(ctx context.Context, doc *core.WebDocument) Outcome {
	scientific := ScientificName(doc.Body)
	if scientific == "" {
		scientific = NotSpecified
	}

	existing, err := s.store.FindSpeciesByName(ctx, doc.Title, scientific)
	switch {
	case err == nil:
		// Species carry no view counter; an existing record is left as is.
		return Outcome{Status: StatusDuplicate, RecordID: existing.ID}
	case errors.Is(err, storage.ErrNotFound):
		species := &core.Species{
			CommonName:     doc.Title,
			ScientificName: scientific,
			Description:    doc.Description,
			Habitat:        habitatExcerpt(doc.Body),
			Category:       core.CategoryWebUnverified,
		}
		if err := s.store.InsertSpecies(ctx, species); err != nil {
			return Outcome{Status: StatusSkipped, Reason: err.Error()}
		}
		return Outcome{Status: StatusCreated, RecordID: species.ID}
	default:
		return Outcome{Status: StatusSkipped, Reason: err.Error()}
	}
}

func habitatExcerpt(body string) string {
	runes := []rune(body)
	if len(runes) <= habitatExcerptRunes {
		return body
	}
	return string(runes[:habitatExcerptRunes])
}
