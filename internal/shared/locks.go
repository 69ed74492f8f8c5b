package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ExportLockKey builds the redis key guarding a host's dashboard export.
func ExportLockKey(hostID uuid.UUID, rangeName string) string {
	return fmt.Sprintf("export:dashboard:%s:%s:lock", hostID, rangeName)
}

// AcquireLock sets key if absent. The returned release func deletes it.
func AcquireLock(ctx context.Context, client *redis.Client, key string, ttl time.Duration) (func(context.Context), error) {
	ok, err := client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrExportInProgress
	}
	return func(ctx context.Context) {
		_ = client.Del(ctx, key).Err()
	}, nil
}
