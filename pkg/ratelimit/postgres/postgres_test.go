package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vango-dev/fsroute/pkg/ratelimit"
)

// setupTestDB starts a PostgreSQL container and returns a migrated Store.
// Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration tests in short mode")
	}

	ctx := context.Background()
	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("fsroute_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            dsn,
		MaxConns:       5,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestStore(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	t0 := time.UnixMilli(1_700_000_000_000)
	w := ratelimit.Window{Name: "burst", Interval: 5 * time.Second, Maximum: 20}

	t.Run("window policy", func(t *testing.T) {
		for i := 1; i <= 20; i++ {
			ok, err := store.Hit(ctx, w, "policy", t0.Add(time.Duration(i)*time.Millisecond))
			if err != nil {
				t.Fatalf("Hit() error = %v", err)
			}
			if !ok {
				t.Fatalf("request %d rejected", i)
			}
		}

		ok, err := store.Hit(ctx, w, "policy", t0.Add(time.Second))
		if err != nil || ok {
			t.Fatalf("21st request = (%v, %v), want rejection", ok, err)
		}
		if n, _ := store.Count(ctx, "burst", "policy"); n != 20 {
			t.Errorf("Count() = %d, want 20 after a rejection", n)
		}

		ok, err = store.Hit(ctx, w, "policy", t0.Add(20*time.Millisecond+5*time.Second))
		if err != nil || !ok {
			t.Fatalf("request after window = (%v, %v), want allowed", ok, err)
		}
		if n, _ := store.Count(ctx, "burst", "policy"); n != 1 {
			t.Errorf("Count() = %d, want reset to 1", n)
		}
	})

	t.Run("windows are independent", func(t *testing.T) {
		other := ratelimit.Window{Name: "sustained", Interval: time.Minute, Maximum: 200}
		store.Hit(ctx, w, "indep", t0)
		store.Hit(ctx, w, "indep", t0)
		store.Hit(ctx, other, "indep", t0)

		if n, _ := store.Count(ctx, "burst", "indep"); n != 2 {
			t.Errorf("burst count = %d, want 2", n)
		}
		if n, _ := store.Count(ctx, "sustained", "indep"); n != 1 {
			t.Errorf("sustained count = %d, want 1", n)
		}
	})

	t.Run("limiter", func(t *testing.T) {
		now := t0
		l := ratelimit.New(store, ratelimit.WithClock(func() time.Time { return now }))
		for i := 0; i < 20; i++ {
			if !l.Validate(ctx, "limiter") {
				t.Fatalf("request %d rejected", i+1)
			}
		}
		if l.Validate(ctx, "limiter") {
			t.Error("21st request allowed")
		}
	})

	t.Run("prune", func(t *testing.T) {
		store.Hit(ctx, w, "old", t0.Add(-time.Hour))
		n, err := store.Prune(ctx, t0.Add(-time.Minute))
		if err != nil {
			t.Fatalf("Prune() error = %v", err)
		}
		if n < 1 {
			t.Errorf("Prune() removed %d rows, want at least 1", n)
		}
		if c, _ := store.Count(ctx, "burst", "old"); c != 0 {
			t.Errorf("pruned counter still present: %d", c)
		}
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		if err := store.migrate(ctx); err != nil {
			t.Errorf("second migrate() error = %v", err)
		}
	})

	if err := store.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
