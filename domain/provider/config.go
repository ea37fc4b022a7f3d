package provider

import (
	"time"

	"github.com/uptrace/bun"
)

// Kind identifies a backend kind in the provider config union.
type Kind string

const (
	// KindPostgres is the primary managed database backend.
	KindPostgres Kind = "postgres"

	// External content backends. Configurable and validatable today,
	// buildable once their providers land.
	KindNotion   Kind = "notion"
	KindAirtable Kind = "airtable"
	KindSanity   Kind = "sanity"
)

// Kinds returns all known backend kinds.
func Kinds() []Kind {
	return []Kind{KindPostgres, KindNotion, KindAirtable, KindSanity}
}

// Implemented reports whether a backend kind has a working provider.
func (k Kind) Implemented() bool {
	return k == KindPostgres
}

// CacheSettings are shared across all backend kinds and control the
// provider's read-through entity cache.
type CacheSettings struct {
	Enabled bool          `json:"cacheEnabled"`
	TTL     time.Duration `json:"cacheTtl,omitempty"`
}

// PostgresSettings configures the primary backend. The database handle is
// injected by the caller; the validator only checks it is present.
type PostgresSettings struct {
	DB bun.IDB `json:"-"`
}

// NotionSettings configures the Notion content backend.
type NotionSettings struct {
	APIKey string `json:"apiKey"`
}

// AirtableSettings configures the Airtable content backend.
type AirtableSettings struct {
	APIKey string `json:"apiKey"`
	BaseID string `json:"baseId"`
}

// SanitySettings configures the Sanity content backend.
type SanitySettings struct {
	APIURL    string `json:"apiUrl"`
	ProjectID string `json:"projectId"`
	Dataset   string `json:"dataset"`
	Token     string `json:"token"`
}

// Config is the tagged provider configuration. Kind selects the variant;
// exactly one of the variant pointers is expected to be set. Validate
// enforces the per-variant field rules before a Config is ever used to
// build a provider.
type Config struct {
	Kind Kind `json:"kind"`

	Postgres *PostgresSettings `json:"postgres,omitempty"`
	Notion   *NotionSettings   `json:"notion,omitempty"`
	Airtable *AirtableSettings `json:"airtable,omitempty"`
	Sanity   *SanitySettings   `json:"sanity,omitempty"`

	Cache CacheSettings `json:"cache"`
}
