package overrides

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type staticSession struct {
	id string
}

func (s *staticSession) UserID() string { return s.id }

func TestSetGetDelete(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	store := NewStore(rdb, "challenges", &staticSession{id: "user-1"})

	if err := store.Set(ctx, "ch-1", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "ch-2", false); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || !got["ch-1"] || got["ch-2"] {
		t.Fatalf("unexpected overrides %+v", got)
	}

	if err := store.Delete(ctx, "ch-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = store.Get(ctx)
	if _, ok := got["ch-1"]; ok {
		t.Fatalf("expected ch-1 removed")
	}
}

func TestStateNeverLeaksAcrossUsers(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	storeA := NewStore(rdb, "challenges", &staticSession{id: "user-a"})
	storeB := NewStore(rdb, "challenges", &staticSession{id: "user-b"})

	if err := storeA.Set(ctx, "ch-1", true); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := storeB.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("join state written under user-a must read back empty under user-b")
	}
}

func TestKindsAreIsolated(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	session := &staticSession{id: "user-1"}
	challenges := NewStore(rdb, "challenges", session)
	clubs := NewStore(rdb, "clubs", session)

	if err := challenges.Set(ctx, "id-1", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ := clubs.Get(ctx)
	if len(got) != 0 {
		t.Fatalf("club overrides must not see challenge overrides")
	}
}

func TestAnonymousFallback(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	store := NewStore(rdb, "challenges", &staticSession{id: ""})
	if err := store.Set(ctx, "ch-1", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if rdb.Exists(ctx, "taqvo:overrides:challenges:anonymous").Val() != 1 {
		t.Fatalf("expected anonymous-scoped key")
	}
}

func TestSessionChangeSwitchesKey(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	session := &staticSession{id: "user-1"}
	store := NewStore(rdb, "challenges", session)

	if err := store.Set(ctx, "ch-1", true); err != nil {
		t.Fatalf("set: %v", err)
	}

	session.id = "user-2"
	got, _ := store.Get(ctx)
	if len(got) != 0 {
		t.Fatalf("expected fresh state after identity change")
	}
}

func TestPurgeLegacy(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	if err := rdb.HSet(ctx, "taqvo:overrides:challenges", "ch-1", "1").Err(); err != nil {
		t.Fatalf("seed legacy key: %v", err)
	}

	store := NewStore(rdb, "challenges", &staticSession{id: "user-1"})
	if err := store.PurgeLegacy(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if rdb.Exists(ctx, "taqvo:overrides:challenges").Val() != 0 {
		t.Fatalf("expected legacy unscoped key removed")
	}
}

func TestNilRedisNoops(t *testing.T) {
	store := NewStore(nil, "challenges", &staticSession{id: "user-1"})
	ctx := context.Background()

	if err := store.Set(ctx, "ch-1", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty noop store")
	}
	if err := store.PurgeLegacy(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}
}
