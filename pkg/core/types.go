// Package core defines the domain records and transient documents shared by
// the storage, search, extraction and ingestion layers.
package core

import (
	"net/url"
	"strings"
	"time"
)

// DocKind classifies extracted web content.
type DocKind string

const (
	KindArticle DocKind = "articulo"
	KindSpecies DocKind = "especie"
)

// CategoryWebUnverified marks records inserted automatically from scraped
// content. They stay inactive until an admin promotes them.
const CategoryWebUnverified = "Web - unverified"

// UnknownSource is returned by SourceDomain for URLs that cannot be parsed.
const UnknownSource = "Fuente desconocida"

// WebResult is a single hit returned by the external search API.
type WebResult struct {
	Title       string `json:"titulo"`
	URL         string `json:"url"`
	Description string `json:"descripcion"`
	Source      string `json:"fuente"`
}

// WebDocument is the product of extracting a single page. It lives for the
// duration of a request; only records derived from it are persisted.
type WebDocument struct {
	Title       string  `json:"titulo"`
	Description string  `json:"descripcion"`
	Body        string  `json:"contenido"`
	URL         string  `json:"url"`
	Source      string  `json:"fuente"`
	Kind        DocKind `json:"tipo"`
}

// Article is a research article record.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"titulo"`
	Author      string    `json:"autor"`
	Summary     string    `json:"resumen"`
	Body        string    `json:"contenido"`
	Category    string    `json:"categoria"`
	PublishedAt time.Time `json:"fecha_publicacion"`
	SourceURL   string    `json:"fuente,omitempty"`
	Keywords    string    `json:"palabras_clave,omitempty"`
	Active      bool      `json:"activo"`
	Views       int       `json:"vistas"`
}

// Species is a marine species record. Numeric ranges are nullable because
// scraped records carry no measurements.
type Species struct {
	ID                 string   `json:"id"`
	CommonName         string   `json:"nombre_comun"`
	ScientificName     string   `json:"nombre_cientifico"`
	Description        string   `json:"descripcion"`
	Habitat            string   `json:"habitat"`
	ConservationStatus string   `json:"estado_conservacion,omitempty"`
	Category           string   `json:"categoria,omitempty"`
	DepthMin           *float64 `json:"profundidad_min,omitempty"`
	DepthMax           *float64 `json:"profundidad_max,omitempty"`
	TempMin            *float64 `json:"temperatura_min,omitempty"`
	TempMax            *float64 `json:"temperatura_max,omitempty"`
	ImageURL           string   `json:"url_imagen,omitempty"`
}

// Ecosystem is a simulator ecosystem. This backend only reads them for
// search projection.
type Ecosystem struct {
	ID          string  `json:"id"`
	Name        string  `json:"nombre"`
	OwnerName   string  `json:"usuario"`
	CoralHealth float64 `json:"salud_coral"`
	Active      bool    `json:"activo"`
}

// SourceDomain derives a display domain from a URL by dropping the scheme
// and a leading "www.". Malformed URLs map to UnknownSource instead of an
// error so callers can use the value unconditionally.
func SourceDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return UnknownSource
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// NormalizeQuery produces the canonical cache key for a search query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
