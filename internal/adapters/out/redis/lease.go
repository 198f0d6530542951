// Package redis implements the sync lease on a single Redis instance.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"dispatch/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dispatch:lease:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease implements ports.Lease with SET NX PX and a compare-and-delete release.
type Lease struct {
	client *redis.Client
}

// NewLease connects to url (redis://host:port/db) and pings it.
func NewLease(url string) (*Lease, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Lease{client: client}, nil
}

func leaseKey(name string) string {
	return keyPrefix + name
}

func (l *Lease) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if name == "" {
		return nil, false, errs.NewValueIsRequiredError("lease name")
	}
	if ttl <= 0 {
		return nil, false, errs.NewValueIsOutOfRangeError("lease ttl", ttl, time.Millisecond, "unbounded")
	}

	token, err := newToken()
	if err != nil {
		return nil, false, err
	}

	key := leaseKey(name)
	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lease %s: %w", name, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("release lease %s: %w", name, err)
		}
		return nil
	}
	return release, true, nil
}

func (l *Lease) Close() error {
	return l.client.Close()
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("lease token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
