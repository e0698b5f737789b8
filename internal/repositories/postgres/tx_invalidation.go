package postgres

import (
	"context"

	"github.com/scms-platform/records-service/internal/cache"
)

// txTouched collects the course and profile IDs written by the cached
// repositories during a transaction. In-tx reads bypass the cache entirely;
// the recorded entries are dropped through the live cache manager only after
// the commit succeeds, so an aborted transaction never evicts valid cache
// state and a committed one never leaves stale documents behind.
type txTouched struct {
	courses  map[string]struct{}
	profiles map[string]struct{}
}

func newTxTouched() *txTouched {
	return &txTouched{
		courses:  make(map[string]struct{}),
		profiles: make(map[string]struct{}),
	}
}

func (t *txTouched) course(id string) {
	t.courses[id] = struct{}{}
}

func (t *txTouched) profile(id string) {
	t.profiles[id] = struct{}{}
}

// flush invalidates every recorded ID through cm. Called once per committed
// transaction, from outside the transaction.
func (t *txTouched) flush(ctx context.Context, cm *cache.CacheManager) {
	for id := range t.courses {
		cache.InvalidateCourseCache(ctx, cm, id)
	}
	for id := range t.profiles {
		cache.InvalidateProfileCache(ctx, cm, id)
	}
}
