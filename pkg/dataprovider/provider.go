// Package dataprovider defines the uniform data-access contract consumed by
// all application code. Concrete backends live in subpackages and are
// selected per organization at runtime; callers never depend on a specific
// backend, only on the DataProvider interface.
package dataprovider

import "context"

// DataProvider is the contract every backend must satisfy. Methods return
// typed failure values from this package (see errors.go), never panic.
//
// Every implementation must expose this exact surface; backends without a
// full implementation must fail at construction rather than serve a partial
// contract.
type DataProvider interface {
	// Things
	ListThings(ctx context.Context, filter ThingFilter) ([]Thing, error)
	GetThing(ctx context.Context, id string) (*Thing, error)
	CreateThing(ctx context.Context, input CreateThingInput) (string, error)
	UpdateThing(ctx context.Context, input UpdateThingInput) (*Thing, error)
	DeleteThing(ctx context.Context, id string) error

	// Connections
	ListConnections(ctx context.Context, filter ConnectionFilter) ([]Connection, error)
	GetConnection(ctx context.Context, id string) (*Connection, error)
	GetRelatedThings(ctx context.Context, thingID, relationshipType string, direction Direction) ([]Thing, error)
	CreateConnection(ctx context.Context, input CreateConnectionInput) (string, error)
	UpdateConnection(ctx context.Context, id string, patch ConnectionPatch) (*Connection, error)
	DeleteConnection(ctx context.Context, id string) error

	// Events (append-only: no update or delete by contract)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	AppendEvent(ctx context.Context, input EventInput) (string, error)

	// Knowledge
	SearchKnowledge(ctx context.Context, query KnowledgeQuery) ([]KnowledgeItem, error)
	CreateKnowledge(ctx context.Context, input KnowledgeInput) (string, error)
	LinkKnowledgeToThing(ctx context.Context, thingID, knowledgeID, role string) error

	// Ping issues a lightweight round-trip against the backend. Used by the
	// connection probe; must respect ctx cancellation.
	Ping(ctx context.Context) error
}
