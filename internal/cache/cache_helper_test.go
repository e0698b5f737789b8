package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/scms-platform/records-service/internal/models"
)

func newTestCache(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheManager(client), mr
}

func TestCacheHelper_GetSet(t *testing.T) {
	ctx := context.Background()
	cm, _ := newTestCache(t)

	course := &models.Course{ID: "c1", Name: "Databases", Code: "CS-305", Capacity: 30}
	if err := cm.Course.Set(ctx, course.ID, course, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got models.Course
	if err := cm.Course.Get(ctx, "c1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != course.Name || got.Capacity != course.Capacity {
		t.Errorf("Round-trip mismatch: %+v", got)
	}

	if err := cm.Course.Get(ctx, "missing", &got); err != ErrCacheNotFound {
		t.Errorf("Expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	ctx := context.Background()
	cm, _ := newTestCache(t)

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return &models.Course{ID: "c1", Name: "Databases"}, nil
	}

	var first models.Course
	if err := cm.Course.CacheOrExecute(ctx, "c1", &first, time.Minute, fetch); err != nil {
		t.Fatalf("first CacheOrExecute failed: %v", err)
	}
	var second models.Course
	if err := cm.Course.CacheOrExecute(ctx, "c1", &second, time.Minute, fetch); err != nil {
		t.Fatalf("second CacheOrExecute failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("Expected 1 fetch, got %d", calls)
	}
	if second.Name != "Databases" {
		t.Errorf("Cached value mismatch: %+v", second)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	ctx := context.Background()
	cm, _ := newTestCache(t)

	for _, id := range []string{"c1", "c2", "c3"} {
		if err := cm.Course.Set(ctx, id, &models.Course{ID: id}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := cm.Profile.Set(ctx, "p1", &models.Profile{ID: "p1"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cm.Course.InvalidatePattern(ctx, "*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var course models.Course
	if err := cm.Course.Get(ctx, "c1", &course); err != ErrCacheNotFound {
		t.Errorf("Course survived invalidation: %v", err)
	}
	// Other prefixes are untouched
	var profile models.Profile
	if err := cm.Profile.Get(ctx, "p1", &profile); err != nil {
		t.Errorf("Profile swept up by course invalidation: %v", err)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	cm := NewCacheManager(nil)

	if err := cm.Course.Set(ctx, "c1", &models.Course{ID: "c1"}, time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op: %v", err)
	}

	var course models.Course
	if err := cm.Course.Get(ctx, "c1", &course); err != ErrCacheNotAvailable {
		t.Errorf("Expected ErrCacheNotAvailable, got %v", err)
	}

	// Cache-aside always reaches the fetch when the cache is absent
	calls := 0
	err := cm.Course.CacheOrExecute(ctx, "c1", &course, time.Minute, func() (interface{}, error) {
		calls++
		return &models.Course{ID: "c1", Name: "Databases"}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 || course.Name != "Databases" {
		t.Errorf("Fetch not executed with nil client")
	}

	if err := cm.HealthCheck(ctx); err != ErrCacheNotAvailable {
		t.Errorf("Expected ErrCacheNotAvailable from health check, got %v", err)
	}
}

func TestCacheManager_ExpiredEntryRefetched(t *testing.T) {
	ctx := context.Background()
	cm, mr := newTestCache(t)

	if err := cm.Course.Set(ctx, "c1", &models.Course{ID: "c1"}, time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	var course models.Course
	if err := cm.Course.Get(ctx, "c1", &course); err != ErrCacheNotFound {
		t.Errorf("Expected expiry, got %v", err)
	}
}
