package dataprovider

import "time"

// Thing is a typed entity with a free-form property bag. Type is set at
// creation and never changes afterwards.
type Thing struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Status     *string        `json:"status,omitempty"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  *time.Time     `json:"deletedAt,omitempty"`
}

// Connection is a directed, typed relationship between two Things.
type Connection struct {
	ID        string         `json:"id"`
	FromID    string         `json:"fromId"`
	ToID      string         `json:"toId"`
	Type      string         `json:"type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Strength  *float32       `json:"strength,omitempty"`
	ValidFrom *time.Time     `json:"validFrom,omitempty"`
	ValidTo   *time.Time     `json:"validTo,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
}

// Event is an immutable audit record. The contract exposes no update or
// delete for events.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	ActorID   string         `json:"actorId"`
	TargetID  *string        `json:"targetId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// KnowledgeType classifies a knowledge item.
type KnowledgeType string

const (
	KnowledgeLabel    KnowledgeType = "label"
	KnowledgeDocument KnowledgeType = "document"
	KnowledgeChunk    KnowledgeType = "chunk"
	KnowledgeVector   KnowledgeType = "vector"
)

// KnowledgeItem is a searchable unit of text and/or embedding, optionally
// linked back to a source Thing.
type KnowledgeItem struct {
	ID             string         `json:"id"`
	KnowledgeType  KnowledgeType  `json:"knowledgeType"`
	Text           *string        `json:"text,omitempty"`
	Embedding      []float32      `json:"embedding,omitempty"`
	EmbeddingModel *string        `json:"embeddingModel,omitempty"`
	EmbeddingDim   int            `json:"embeddingDim,omitempty"`
	SourceID       *string        `json:"sourceId,omitempty"`
	Labels         []string       `json:"labels,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Score          float32        `json:"score,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      *time.Time     `json:"deletedAt,omitempty"`
}

// Direction selects which end of a relationship to traverse.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// ------------------------------------------------------------------
// Inputs and filters
// ------------------------------------------------------------------

// CreateThingInput holds the fields for creating a Thing.
type CreateThingInput struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Status     *string        `json:"status,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// UpdateThingInput patches an existing Thing. Type is immutable and is
// therefore absent here. Nil fields are left untouched.
type UpdateThingInput struct {
	ID         string         `json:"id"`
	Name       *string        `json:"name,omitempty"`
	Status     *string        `json:"status,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ThingFilter narrows a listing. Zero-value fields are ignored.
type ThingFilter struct {
	Type         string `json:"type,omitempty"`
	Status       string `json:"status,omitempty"`
	NameContains string `json:"nameContains,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// CreateConnectionInput holds the fields for creating a Connection.
type CreateConnectionInput struct {
	FromID    string         `json:"fromId"`
	ToID      string         `json:"toId"`
	Type      string         `json:"type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Strength  *float32       `json:"strength,omitempty"`
	ValidFrom *time.Time     `json:"validFrom,omitempty"`
	ValidTo   *time.Time     `json:"validTo,omitempty"`
}

// ConnectionPatch updates mutable fields of a Connection.
type ConnectionPatch struct {
	Metadata  map[string]any `json:"metadata,omitempty"`
	Strength  *float32       `json:"strength,omitempty"`
	ValidFrom *time.Time     `json:"validFrom,omitempty"`
	ValidTo   *time.Time     `json:"validTo,omitempty"`
}

// ConnectionFilter narrows a connection listing.
type ConnectionFilter struct {
	FromID string `json:"fromId,omitempty"`
	ToID   string `json:"toId,omitempty"`
	Type   string `json:"type,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// EventInput holds the fields for appending an Event.
type EventInput struct {
	Type     string         `json:"type"`
	ActorID  string         `json:"actorId"`
	TargetID *string        `json:"targetId,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EventFilter narrows an event listing.
type EventFilter struct {
	Type     string     `json:"type,omitempty"`
	ActorID  string     `json:"actorId,omitempty"`
	TargetID string     `json:"targetId,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
	Until    *time.Time `json:"until,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}

// KnowledgeInput holds the fields for creating a knowledge item.
type KnowledgeInput struct {
	KnowledgeType  KnowledgeType  `json:"knowledgeType"`
	Text           *string        `json:"text,omitempty"`
	Embedding      []float32      `json:"embedding,omitempty"`
	EmbeddingModel *string        `json:"embeddingModel,omitempty"`
	SourceID       *string        `json:"sourceId,omitempty"`
	Labels         []string       `json:"labels,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// KnowledgeQuery describes a knowledge search. Text drives lexical search;
// when Embedding is set the provider ranks by vector similarity instead.
// Threshold drops results scoring below it.
type KnowledgeQuery struct {
	Text      string    `json:"text,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Threshold float32   `json:"threshold,omitempty"`
}
