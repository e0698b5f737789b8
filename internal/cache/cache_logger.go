package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateCourseCache drops cached course reads after a course or
// enrollment write; the enrolled counter lives on the course document so
// every enrollment mutation invalidates it too.
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID string) {
	SafeDelete(ctx, cm.Course, fmt.Sprintf("id:%s", courseID))
	SafeInvalidatePattern(ctx, cm.Course, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}

// InvalidateProfileCache drops cached profile reads after a profile write.
func InvalidateProfileCache(ctx context.Context, cm *CacheManager, profileID string) {
	SafeDelete(ctx, cm.Profile, fmt.Sprintf("id:%s", profileID))
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}
