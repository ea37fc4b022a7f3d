package postgres_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sho-platform/sho-core/internal/testutil"
	"github.com/sho-platform/sho-core/pkg/dataprovider"
	"github.com/sho-platform/sho-core/pkg/dataprovider/postgres"
)

func setupProvider(t *testing.T) *postgres.Provider {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.TruncateCore(t, db)
	return postgres.New(db, slog.New(slog.NewTextHandler(io.Discard, nil)), postgres.Options{})
}

func str(s string) *string { return &s }

func TestProvider_ThingLifecycle(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	id, err := p.CreateThing(ctx, dataprovider.CreateThingInput{
		Type:       "person",
		Name:       "Ada Lovelace",
		Status:     str("active"),
		Properties: map[string]any{"field": "mathematics"},
	})
	if err != nil {
		t.Fatalf("CreateThing() error = %v", err)
	}

	got, err := p.GetThing(ctx, id)
	if err != nil {
		t.Fatalf("GetThing() error = %v", err)
	}
	if got.Name != "Ada Lovelace" || got.Type != "person" {
		t.Errorf("GetThing() = %+v", got)
	}

	updated, err := p.UpdateThing(ctx, dataprovider.UpdateThingInput{
		ID:   id,
		Name: str("Ada King"),
	})
	if err != nil {
		t.Fatalf("UpdateThing() error = %v", err)
	}
	if updated.Name != "Ada King" {
		t.Errorf("Name = %q after update", updated.Name)
	}
	if updated.Type != "person" {
		t.Errorf("Type changed to %q; type is immutable", updated.Type)
	}

	if err := p.DeleteThing(ctx, id); err != nil {
		t.Fatalf("DeleteThing() error = %v", err)
	}

	// Soft-deleted things disappear from reads.
	_, err = p.GetThing(ctx, id)
	var nf *dataprovider.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("GetThing() after delete = %v, want NotFoundError", err)
	}

	// Deleting again reports not found.
	err = p.DeleteThing(ctx, id)
	if !errors.As(err, &nf) {
		t.Errorf("second DeleteThing() = %v, want NotFoundError", err)
	}
}

func TestProvider_ListThingsFilters(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	for _, tc := range []struct {
		typ, name, status string
	}{
		{"person", "Ada Lovelace", "active"},
		{"person", "Charles Babbage", "inactive"},
		{"machine", "Analytical Engine", "active"},
	} {
		if _, err := p.CreateThing(ctx, dataprovider.CreateThingInput{
			Type: tc.typ, Name: tc.name, Status: str(tc.status),
		}); err != nil {
			t.Fatalf("CreateThing(%s) error = %v", tc.name, err)
		}
	}

	people, err := p.ListThings(ctx, dataprovider.ThingFilter{Type: "person"})
	if err != nil {
		t.Fatalf("ListThings(type) error = %v", err)
	}
	if len(people) != 2 {
		t.Errorf("type filter matched %d, want 2", len(people))
	}

	active, err := p.ListThings(ctx, dataprovider.ThingFilter{Status: "active"})
	if err != nil {
		t.Fatalf("ListThings(status) error = %v", err)
	}
	if len(active) != 2 {
		t.Errorf("status filter matched %d, want 2", len(active))
	}

	named, err := p.ListThings(ctx, dataprovider.ThingFilter{NameContains: "ada"})
	if err != nil {
		t.Fatalf("ListThings(name) error = %v", err)
	}
	if len(named) != 1 {
		t.Errorf("name filter matched %d, want 1", len(named))
	}
}

func TestProvider_ConnectionsAndRelated(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	ada, _ := p.CreateThing(ctx, dataprovider.CreateThingInput{Type: "person", Name: "Ada"})
	charles, _ := p.CreateThing(ctx, dataprovider.CreateThingInput{Type: "person", Name: "Charles"})

	connID, err := p.CreateConnection(ctx, dataprovider.CreateConnectionInput{
		FromID: ada, ToID: charles, Type: "collaborated_with",
	})
	if err != nil {
		t.Fatalf("CreateConnection() error = %v", err)
	}

	// Dangling endpoints are rejected as a validation error.
	_, err = p.CreateConnection(ctx, dataprovider.CreateConnectionInput{
		FromID: ada, ToID: uuid.NewString(), Type: "knows",
	})
	var vErr *dataprovider.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("dangling connection error = %v, want ValidationError", err)
	}

	out, err := p.GetRelatedThings(ctx, ada, "collaborated_with", dataprovider.DirectionOutgoing)
	if err != nil {
		t.Fatalf("GetRelatedThings(outgoing) error = %v", err)
	}
	if len(out) != 1 || out[0].Name != "Charles" {
		t.Errorf("outgoing related = %+v", out)
	}

	in, err := p.GetRelatedThings(ctx, ada, "collaborated_with", dataprovider.DirectionIncoming)
	if err != nil {
		t.Fatalf("GetRelatedThings(incoming) error = %v", err)
	}
	if len(in) != 0 {
		t.Errorf("incoming related = %+v, want none", in)
	}

	both, err := p.GetRelatedThings(ctx, charles, "collaborated_with", dataprovider.DirectionBoth)
	if err != nil {
		t.Fatalf("GetRelatedThings(both) error = %v", err)
	}
	if len(both) != 1 || both[0].Name != "Ada" {
		t.Errorf("both related = %+v", both)
	}

	// A reciprocal connection must not duplicate the counterpart.
	if _, err := p.CreateConnection(ctx, dataprovider.CreateConnectionInput{
		FromID: charles, ToID: ada, Type: "collaborated_with",
	}); err != nil {
		t.Fatalf("CreateConnection(reciprocal) error = %v", err)
	}
	both, err = p.GetRelatedThings(ctx, charles, "collaborated_with", dataprovider.DirectionBoth)
	if err != nil {
		t.Fatalf("GetRelatedThings(both, reciprocal) error = %v", err)
	}
	if len(both) != 1 || both[0].Name != "Ada" {
		t.Errorf("reciprocal both related = %+v, want Ada exactly once", both)
	}

	if err := p.DeleteConnection(ctx, connID); err != nil {
		t.Fatalf("DeleteConnection() error = %v", err)
	}
	var nf *dataprovider.NotFoundError
	if _, err := p.GetConnection(ctx, connID); !errors.As(err, &nf) {
		t.Errorf("GetConnection() after delete = %v, want NotFoundError", err)
	}
}

func TestProvider_EventsAreAppendOnly(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	actor := uuid.NewString()
	id, err := p.AppendEvent(ctx, dataprovider.EventInput{
		Type:     "thing.created",
		ActorID:  actor,
		Metadata: map[string]any{"source": "test"},
	})
	if err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}

	ev, err := p.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev.Type != "thing.created" || ev.ActorID != actor {
		t.Errorf("GetEvent() = %+v", ev)
	}

	since := time.Now().Add(-time.Minute)
	events, err := p.ListEvents(ctx, dataprovider.EventFilter{ActorID: actor, Since: &since})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("ListEvents() = %d events, want 1", len(events))
	}
}

func TestProvider_KnowledgeSearchAndLinks(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	thingID, _ := p.CreateThing(ctx, dataprovider.CreateThingInput{Type: "document", Name: "Notes"})

	kID, err := p.CreateKnowledge(ctx, dataprovider.KnowledgeInput{
		KnowledgeType: dataprovider.KnowledgeChunk,
		Text:          str("the analytical engine weaves algebraic patterns"),
	})
	if err != nil {
		t.Fatalf("CreateKnowledge() error = %v", err)
	}
	if _, err := p.CreateKnowledge(ctx, dataprovider.KnowledgeInput{
		KnowledgeType: dataprovider.KnowledgeChunk,
		Text:          str("weather report for london"),
	}); err != nil {
		t.Fatalf("CreateKnowledge() error = %v", err)
	}

	items, err := p.SearchKnowledge(ctx, dataprovider.KnowledgeQuery{Text: "analytical engine"})
	if err != nil {
		t.Fatalf("SearchKnowledge() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != kID {
		t.Errorf("SearchKnowledge() = %+v, want the engine chunk", items)
	}
	if items[0].Score <= 0 {
		t.Errorf("Score = %v, want > 0", items[0].Score)
	}

	if err := p.LinkKnowledgeToThing(ctx, thingID, kID, "source"); err != nil {
		t.Fatalf("LinkKnowledgeToThing() error = %v", err)
	}
	// Linking again updates the role instead of failing.
	if err := p.LinkKnowledgeToThing(ctx, thingID, kID, "citation"); err != nil {
		t.Fatalf("re-link error = %v", err)
	}

	var vErr *dataprovider.ValidationError
	if err := p.LinkKnowledgeToThing(ctx, uuid.NewString(), kID, "source"); !errors.As(err, &vErr) {
		t.Errorf("dangling link error = %v, want ValidationError", err)
	}
}

func TestProvider_VectorSearch(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	model := "text-embedding-004"
	vecs := map[string][]float32{
		"north": {1, 0},
		"east":  {0, 1},
		"mixed": {0.7, 0.7},
	}
	ids := map[string]string{}
	for name, v := range vecs {
		id, err := p.CreateKnowledge(ctx, dataprovider.KnowledgeInput{
			KnowledgeType:  dataprovider.KnowledgeVector,
			Text:           str(name),
			Embedding:      v,
			EmbeddingModel: &model,
		})
		if err != nil {
			t.Fatalf("CreateKnowledge(%s) error = %v", name, err)
		}
		ids[name] = id
	}

	items, err := p.SearchKnowledge(ctx, dataprovider.KnowledgeQuery{
		Embedding: []float32{1, 0},
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("SearchKnowledge() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("SearchKnowledge() = %d items, want 2", len(items))
	}
	if items[0].ID != ids["north"] {
		t.Errorf("best match = %s, want the north vector", items[0].ID)
	}
	if items[0].Score < items[1].Score {
		t.Error("results not ordered by similarity")
	}
}

func TestProvider_Ping(t *testing.T) {
	p := setupProvider(t)
	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
