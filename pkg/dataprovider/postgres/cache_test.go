package postgres

import (
	"testing"
	"time"

	"github.com/sho-platform/sho-core/pkg/dataprovider"
)

func TestEntityCache_RoundTrip(t *testing.T) {
	c := newEntityCache(time.Minute)

	thing := &dataprovider.Thing{ID: "t-1", Type: "person", Name: "Ada"}
	c.putThing(thing)

	got, ok := c.getThing("t-1")
	if !ok {
		t.Fatal("thing missing after put")
	}
	if got.Name != "Ada" {
		t.Errorf("Name = %q, want Ada", got.Name)
	}

	c.dropThing("t-1")
	if _, ok := c.getThing("t-1"); ok {
		t.Error("thing survived drop")
	}
}

func TestEntityCache_ConnectionRoundTrip(t *testing.T) {
	c := newEntityCache(time.Minute)

	conn := &dataprovider.Connection{ID: "c-1", FromID: "t-1", ToID: "t-2", Type: "knows"}
	c.putConnection(conn)

	got, ok := c.getConnection("c-1")
	if !ok || got.Type != "knows" {
		t.Fatalf("getConnection() = (%v, %v)", got, ok)
	}

	c.dropConnection("c-1")
	if _, ok := c.getConnection("c-1"); ok {
		t.Error("connection survived drop")
	}
}

func TestEntityCache_NilReceiverIsSafe(t *testing.T) {
	// A provider with caching disabled carries a nil cache; every method
	// must be a silent no-op.
	var c *entityCache

	c.putThing(&dataprovider.Thing{ID: "t-1"})
	if _, ok := c.getThing("t-1"); ok {
		t.Error("nil cache returned a hit")
	}
	c.dropThing("t-1")

	c.putConnection(&dataprovider.Connection{ID: "c-1"})
	if _, ok := c.getConnection("c-1"); ok {
		t.Error("nil cache returned a connection hit")
	}
	c.dropConnection("c-1")
}

func TestEntityCache_Expiry(t *testing.T) {
	c := newEntityCache(10 * time.Millisecond)
	c.putThing(&dataprovider.Thing{ID: "t-1"})

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.getThing("t-1"); ok {
		t.Error("entry survived past its TTL")
	}
}
