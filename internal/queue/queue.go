// Package queue durably stores pending community writes so an app restart
// never loses them. The serialized list lives under a user-scoped redis key
// and is rewritten after every mutation.
package queue

import (
	"context"
	"errors"
	"sync"

	"backend-taqvo/internal/community"

	"github.com/redis/go-redis/v9"
)

type Identity interface {
	UserID() string
}

// Queue serializes all access: enqueues are read-modify-write under one
// mutex and at most one drain pass runs at a time. Without redis it falls
// back to process memory so the model keeps working.
type Queue struct {
	rdb     *redis.Client
	session Identity

	mu  sync.Mutex
	mem []community.Write
}

func NewQueue(rdb *redis.Client, session Identity) *Queue {
	return &Queue{rdb: rdb, session: session}
}

func (q *Queue) key() string {
	user := q.session.UserID()
	if user == "" {
		user = "anonymous"
	}
	return "taqvo:queue:" + user
}

func (q *Queue) Enqueue(ctx context.Context, w community.Write) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	writes, err := q.load(ctx)
	if err != nil {
		return err
	}
	return q.save(ctx, append(writes, w))
}

// Drain replays pending writes in FIFO order. Writes that succeed are
// removed; writes that still fail stay queued in their original relative
// order for the next pass.
func (q *Queue) Drain(ctx context.Context, apply func(context.Context, community.Write) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	writes, err := q.load(ctx)
	if err != nil {
		return err
	}

	var remaining []community.Write
	for _, w := range writes {
		if err := apply(ctx, w); err != nil {
			remaining = append(remaining, w)
		}
	}
	return q.save(ctx, remaining)
}

func (q *Queue) Pending(ctx context.Context) ([]community.Write, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// PurgeLegacy removes the pre-upgrade unscoped key. Run once at startup.
func (q *Queue) PurgeLegacy(ctx context.Context) error {
	if q.rdb == nil {
		return nil
	}
	return q.rdb.Del(ctx, "taqvo:queue").Err()
}

func (q *Queue) load(ctx context.Context) ([]community.Write, error) {
	if q.rdb == nil {
		out := make([]community.Write, len(q.mem))
		copy(out, q.mem)
		return out, nil
	}
	data, err := q.rdb.Get(ctx, q.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (q *Queue) save(ctx context.Context, writes []community.Write) error {
	if q.rdb == nil {
		q.mem = writes
		return nil
	}
	if len(writes) == 0 {
		return q.rdb.Del(ctx, q.key()).Err()
	}
	data, err := encode(writes)
	if err != nil {
		return err
	}
	return q.rdb.Set(ctx, q.key(), data, 0).Err()
}
