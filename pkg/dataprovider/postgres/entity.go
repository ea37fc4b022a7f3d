package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/sho-platform/sho-core/pkg/dataprovider"
	"github.com/sho-platform/sho-core/pkg/pgutils"
)

// thingRow maps core.things.
type thingRow struct {
	bun.BaseModel `bun:"table:core.things,alias:t"`

	ID         string         `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Type       string         `bun:"type,notnull"`
	Name       string         `bun:"name,notnull"`
	Status     *string        `bun:"status"`
	Properties map[string]any `bun:"properties,type:jsonb,notnull,default:'{}'"`
	CreatedAt  time.Time      `bun:"created_at,notnull,default:now()"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull,default:now()"`
	DeletedAt  *time.Time     `bun:"deleted_at"`
}

func (r *thingRow) toThing() dataprovider.Thing {
	return dataprovider.Thing{
		ID:         r.ID,
		Type:       r.Type,
		Name:       r.Name,
		Status:     r.Status,
		Properties: r.Properties,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		DeletedAt:  r.DeletedAt,
	}
}

// connectionRow maps core.connections. from_id/to_id carry FK constraints to
// core.things, which is where referential integrity is enforced.
type connectionRow struct {
	bun.BaseModel `bun:"table:core.connections,alias:c"`

	ID        string         `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	FromID    string         `bun:"from_id,notnull,type:uuid"`
	ToID      string         `bun:"to_id,notnull,type:uuid"`
	Type      string         `bun:"type,notnull"`
	Metadata  map[string]any `bun:"metadata,type:jsonb"`
	Strength  *float32       `bun:"strength"`
	ValidFrom *time.Time     `bun:"valid_from"`
	ValidTo   *time.Time     `bun:"valid_to"`
	CreatedAt time.Time      `bun:"created_at,notnull,default:now()"`
	UpdatedAt time.Time      `bun:"updated_at,notnull,default:now()"`
	DeletedAt *time.Time     `bun:"deleted_at"`
}

func (r *connectionRow) toConnection() dataprovider.Connection {
	return dataprovider.Connection{
		ID:        r.ID,
		FromID:    r.FromID,
		ToID:      r.ToID,
		Type:      r.Type,
		Metadata:  r.Metadata,
		Strength:  r.Strength,
		ValidFrom: r.ValidFrom,
		ValidTo:   r.ValidTo,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		DeletedAt: r.DeletedAt,
	}
}

// eventRow maps core.events. Rows are insert-only; there is no update or
// delete path anywhere in this package.
type eventRow struct {
	bun.BaseModel `bun:"table:core.events,alias:e"`

	ID        string         `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Type      string         `bun:"type,notnull"`
	ActorID   string         `bun:"actor_id,notnull,type:uuid"`
	TargetID  *string        `bun:"target_id,type:uuid"`
	Metadata  map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt time.Time      `bun:"created_at,notnull,default:now()"`
}

func (r *eventRow) toEvent() dataprovider.Event {
	return dataprovider.Event{
		ID:        r.ID,
		Type:      r.Type,
		ActorID:   r.ActorID,
		TargetID:  r.TargetID,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
	}
}

// knowledgeRow maps core.knowledge. The embedding is stored as a vector
// literal in a text column so items of different dimensionality can coexist.
type knowledgeRow struct {
	bun.BaseModel `bun:"table:core.knowledge,alias:k"`

	ID             string         `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	KnowledgeType  string         `bun:"knowledge_type,notnull"`
	Text           *string        `bun:"text"`
	Embedding      *string        `bun:"embedding"`
	EmbeddingModel *string        `bun:"embedding_model"`
	EmbeddingDim   int            `bun:"embedding_dim,notnull,default:0"`
	SourceID       *string        `bun:"source_id,type:uuid"`
	Labels         []string       `bun:"labels,array,notnull,default:'{}'"`
	Metadata       map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt      time.Time      `bun:"created_at,notnull,default:now()"`
	UpdatedAt      time.Time      `bun:"updated_at,notnull,default:now()"`
	DeletedAt      *time.Time     `bun:"deleted_at"`
}

func (r *knowledgeRow) toItem() (dataprovider.KnowledgeItem, error) {
	item := dataprovider.KnowledgeItem{
		ID:             r.ID,
		KnowledgeType:  dataprovider.KnowledgeType(r.KnowledgeType),
		Text:           r.Text,
		EmbeddingModel: r.EmbeddingModel,
		EmbeddingDim:   r.EmbeddingDim,
		SourceID:       r.SourceID,
		Labels:         r.Labels,
		Metadata:       r.Metadata,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		DeletedAt:      r.DeletedAt,
	}
	if r.Embedding != nil && *r.Embedding != "" {
		vec, err := pgutils.ParseVector(*r.Embedding)
		if err != nil {
			return item, err
		}
		item.Embedding = vec
	}
	return item, nil
}

// knowledgeLinkRow maps core.knowledge_links, the join table tying knowledge
// items to their source Things.
type knowledgeLinkRow struct {
	bun.BaseModel `bun:"table:core.knowledge_links,alias:kl"`

	ThingID     string    `bun:"thing_id,pk,type:uuid"`
	KnowledgeID string    `bun:"knowledge_id,pk,type:uuid"`
	Role        string    `bun:"role,notnull,default:''"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:now()"`
}
