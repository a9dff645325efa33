package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Lock serializes concurrent verification of one ticket code across
// service instances. The database CAS on is_attended stays authoritative;
// the lock keeps a burst of duplicate scans from hammering the row.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Lock{Client: client, TTL: ttl}
}

// Acquire takes the verification lock for a ticket code. Returns false if
// another scan currently holds it.
func (l *Lock) Acquire(ctx context.Context, ticketCode string) (bool, error) {
	key := "verify_lock:" + ticketCode
	return l.Client.SetNX(ctx, key, "1", l.TTL).Result()
}

// Release frees the lock. The TTL reclaims it if the holder dies first.
func (l *Lock) Release(ctx context.Context, ticketCode string) error {
	key := "verify_lock:" + ticketCode
	return l.Client.Del(ctx, key).Err()
}
