// Package overrides persists device-local join flags that take precedence
// over server-reported membership until the next successful sync.
package overrides

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Identity exposes the current user so keys never leak across accounts.
type Identity interface {
	UserID() string
}

// Store is a redis hash per entity kind, keyed by the authenticated user
// with an "anonymous" fallback when signed out.
type Store struct {
	rdb     *redis.Client
	kind    string
	session Identity
}

func NewStore(rdb *redis.Client, kind string, session Identity) *Store {
	return &Store{rdb: rdb, kind: kind, session: session}
}

func (s *Store) key() string {
	user := s.session.UserID()
	if user == "" {
		user = "anonymous"
	}
	return "taqvo:overrides:" + s.kind + ":" + user
}

func (s *Store) Get(ctx context.Context) (map[string]bool, error) {
	if s.rdb == nil {
		return map[string]bool{}, nil
	}
	raw, err := s.rdb.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(raw))
	for id, v := range raw {
		out[id] = v == "1"
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, id string, joined bool) error {
	if s.rdb == nil {
		return nil
	}
	v := "0"
	if joined {
		v = "1"
	}
	return s.rdb.HSet(ctx, s.key(), id, v).Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.HDel(ctx, s.key(), id).Err()
}

// PurgeLegacy removes the pre-upgrade unscoped key so stale join state from
// one account can never surface under another. Run once at startup.
func (s *Store) PurgeLegacy(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, "taqvo:overrides:"+s.kind).Err()
}
