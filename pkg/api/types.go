package api

import (
	"time"

	"github.com/jairbenitez29/blueedu/pkg/core"
	"github.com/jairbenitez29/blueedu/pkg/indicators"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ExtractResponse carries the extracted document plus what the ingestion
// sink did with it. The document is always present; ingestion is a side
// effect whose failure never voids the extraction.
type ExtractResponse struct {
	Document *core.WebDocument `json:"documento"`
	Ingest   IngestResult      `json:"ingesta"`
}

type IngestResult struct {
	Status   string `json:"estado"`
	RecordID string `json:"id,omitempty"`
	Reason   string `json:"motivo,omitempty"`
}

type ListArticlesResponse struct {
	Articles []core.Article `json:"articulos"`
	Count    int            `json:"total"`
}

type ListSpeciesResponse struct {
	Species []core.Species `json:"especies"`
	Count   int            `json:"total"`
}

type IndicatorsResponse struct {
	Indicators []indicators.Indicator `json:"indicadores"`
	Count      int                    `json:"total"`
}
