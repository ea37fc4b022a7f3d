package postgres

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sho-platform/sho-core/pkg/dataprovider"
)

const defaultCacheTTL = 60 * time.Second

// entityCache is a read-through TTL cache for single-entity lookups. A nil
// *entityCache is valid and disables caching, so call sites stay free of
// enabled checks.
type entityCache struct {
	things      *gocache.Cache
	connections *gocache.Cache
}

func newEntityCache(ttl time.Duration) *entityCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	cleanup := 2 * ttl
	return &entityCache{
		things:      gocache.New(ttl, cleanup),
		connections: gocache.New(ttl, cleanup),
	}
}

func (c *entityCache) getThing(id string) (*dataprovider.Thing, bool) {
	if c == nil {
		return nil, false
	}
	if v, ok := c.things.Get(id); ok {
		t := v.(dataprovider.Thing)
		return &t, true
	}
	return nil, false
}

func (c *entityCache) putThing(t *dataprovider.Thing) {
	if c == nil || t == nil {
		return
	}
	c.things.SetDefault(t.ID, *t)
}

func (c *entityCache) dropThing(id string) {
	if c == nil {
		return
	}
	c.things.Delete(id)
}

func (c *entityCache) getConnection(id string) (*dataprovider.Connection, bool) {
	if c == nil {
		return nil, false
	}
	if v, ok := c.connections.Get(id); ok {
		conn := v.(dataprovider.Connection)
		return &conn, true
	}
	return nil, false
}

func (c *entityCache) putConnection(conn *dataprovider.Connection) {
	if c == nil || conn == nil {
		return
	}
	c.connections.SetDefault(conn.ID, *conn)
}

func (c *entityCache) dropConnection(id string) {
	if c == nil {
		return
	}
	c.connections.Delete(id)
}
