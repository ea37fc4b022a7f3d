// Package testutil provides integration-test helpers. Database-backed
// tests require TEST_DATABASE_URL and are skipped otherwise, so the unit
// suite stays runnable without infrastructure.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/sho-platform/sho-core/internal/migrate"
)

var migrateOnce sync.Once

// SetupTestDB connects to the database named by TEST_DATABASE_URL, applies
// the embedded migrations once per process and returns a bun handle. The
// returned cleanup closes the pool; table contents are the test's own
// responsibility.
func SetupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database-backed test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping test database: %v", err)
	}

	sqldb := stdlib.OpenDBFromPool(pool)
	db := bun.NewDB(sqldb, pgdialect.New())

	migrateOnce.Do(func() {
		if err := migrate.RunWithDB(ctx, db.DB); err != nil {
			t.Fatalf("apply migrations: %v", err)
		}
	})

	t.Cleanup(func() {
		_ = db.Close()
		pool.Close()
	})
	return db
}

// TruncateCore empties every core table between tests.
func TruncateCore(t *testing.T, db *bun.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		TRUNCATE core.knowledge_links, core.knowledge, core.events,
		         core.connections, core.things CASCADE
	`)
	if err != nil {
		t.Fatalf("truncate core tables: %v", err)
	}
}
