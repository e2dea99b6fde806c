package auth

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/recipebook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
)

func exerciseSessionRepo(t *testing.T, repo SessionRepo, userID uuid.UUID) {
	t.Helper()
	dbc := dbctx.New(context.Background())

	live := &types.Session{ID: uuid.New(), UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Save(dbc, live); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(dbc, &types.Session{ID: live.ID, UserID: userID, ExpiresAt: live.ExpiresAt}); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Save duplicate: expected ErrConflict, got %v", err)
	}

	got, err := repo.Get(dbc, live.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != userID {
		t.Fatalf("Get: user mismatch: %s", got.UserID)
	}

	if _, err := repo.Get(dbc, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Get missing: expected ErrNotFound, got %v", err)
	}

	if err := repo.Delete(dbc, live.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(dbc, live.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Get after delete: expected ErrNotFound, got %v", err)
	}

	rotating := &types.Session{ID: uuid.New(), UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Save(dbc, rotating); err != nil {
		t.Fatalf("Save rotating: %v", err)
	}
	consumed, err := repo.Consume(dbc, rotating.ID)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if consumed.UserID != userID {
		t.Fatalf("Consume: user mismatch: %s", consumed.UserID)
	}
	if _, err := repo.Consume(dbc, rotating.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Consume twice: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(dbc, rotating.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Get after consume: expected ErrNotFound, got %v", err)
	}

	exerciseConcurrentConsume(t, repo, userID)
}

// exerciseConcurrentConsume races several consumers on one session and
// expects exactly one of them to win.
func exerciseConcurrentConsume(t *testing.T, repo SessionRepo, userID uuid.UUID) {
	t.Helper()
	dbc := dbctx.New(context.Background())
	s := &types.Session{ID: uuid.New(), UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Save(dbc, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	const racers = 8
	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		wins     atomic.Int32
		failures = make(chan error, racers)
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.Consume(dbc, s.ID)
			switch {
			case err == nil:
				wins.Add(1)
			case !errors.Is(err, pkgerrors.ErrNotFound):
				failures <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(failures)

	for err := range failures {
		t.Fatalf("Consume: unexpected error: %v", err)
	}
	if got := wins.Load(); got != 1 {
		t.Fatalf("Consume: expected exactly one winner, got %d", got)
	}
}

func TestSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "session@example.com")
	repo := NewSessionRepo(db, testutil.Logger(t))

	exerciseSessionRepo(t, repo, u.ID)

	expired := &types.Session{ID: uuid.New(), UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := repo.Save(dbctx.New(ctx), expired); err != nil {
		t.Fatalf("Save expired: %v", err)
	}
	if _, err := repo.Get(dbctx.New(ctx), expired.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Get expired: expected ErrNotFound, got %v", err)
	}
}

func TestMemorySessionRepo(t *testing.T) {
	repo := NewMemorySessionRepo(testutil.Logger(t))
	exerciseSessionRepo(t, repo, uuid.New())
}

func TestMemorySessionRepoExpiry(t *testing.T) {
	repo := NewMemorySessionRepo(testutil.Logger(t)).(*memorySessionRepo)
	now := time.Now()
	repo.now = func() time.Time { return now }
	dbc := dbctx.New(context.Background())

	s := &types.Session{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: now.Add(time.Minute)}
	if err := repo.Save(dbc, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.Get(dbc, s.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Get expired: expected ErrNotFound, got %v", err)
	}
}

func TestRedisSessionRepo(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis session tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}

	exerciseSessionRepo(t, NewRedisSessionRepo(rdb, testutil.Logger(t)), uuid.New())
}
