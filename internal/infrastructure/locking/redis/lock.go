// Package redis implements ports.SagaLock as a single-node SET NX PX
// advisory lock, released by a compare-and-delete Lua script so a holder
// never clears a lock it does not own (e.g. after its TTL already expired
// and someone else acquired it).
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wallethub/eventcore/internal/application/ports"
)

var unlockScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

var _ ports.SagaLock = (*Lock)(nil)

// Lock is a ports.SagaLock backed by a *redis.Client.
type Lock struct {
	client    *goredis.Client
	keyPrefix string
	ttl       time.Duration
}

// New builds a Lock. A zero ttl falls back to 5 seconds - comfortably
// longer than one read-compute-write cycle, short enough that a crashed
// holder never blocks a saga for long.
func New(client *goredis.Client, keyPrefix string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Lock{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// TryLock attempts SET key token NX PX ttl. A failed attempt (including a
// Redis error) returns ok=false so the caller proceeds without the lock.
func (l *Lock) TryLock(ctx context.Context, key string) (func(context.Context), bool, error) {
	token, err := randomToken()
	if err != nil {
		return noop, false, fmt.Errorf("saga lock: generate token: %w", err)
	}

	redisKey := l.keyPrefix + ":" + key
	acquired, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return noop, false, fmt.Errorf("saga lock: acquire %s: %w", key, err)
	}
	if !acquired {
		return noop, false, nil
	}

	unlock := func(unlockCtx context.Context) {
		unlockScript.Run(unlockCtx, l.client, []string{redisKey}, token)
	}
	return unlock, true, nil
}

func noop(context.Context) {}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
