// Package redislock provides the per-slot mutual-exclusion lock that
// serializes booking mutations on the same (course, date, time).
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// ErrLocked means another staff session holds the slot. It is an expected
// conflict, not a system failure: callers surface "someone else is editing
// this slot" and let the user retry.
var ErrLocked = errors.New("slot is locked by another operation")

// releaseScript deletes the key only if we still own it, so an expired
// lock re-acquired by someone else is never released from under them.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

const (
	DefaultTTL     = 30 * time.Second
	DefaultRetries = 3
	DefaultBackoff = 150 * time.Millisecond
)

type Locker struct {
	rdb     redis.Cmdable
	ttl     time.Duration
	retries int
	backoff time.Duration
	clock   clockwork.Clock
}

type Option func(*Locker)

func WithTTL(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.ttl = d
		}
	}
}

func WithRetries(n int, backoff time.Duration) Option {
	return func(l *Locker) {
		if n >= 0 {
			l.retries = n
		}
		if backoff > 0 {
			l.backoff = backoff
		}
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(l *Locker) {
		l.clock = clock
	}
}

func New(rdb redis.Cmdable, opts ...Option) *Locker {
	l := &Locker{
		rdb:     rdb,
		ttl:     DefaultTTL,
		retries: DefaultRetries,
		backoff: DefaultBackoff,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SlotKey builds the lock key for a tee-time slot.
func SlotKey(courseID uint, date, teeOff string) string {
	return fmt.Sprintf("teesheet:lock:%d:%s:%s", courseID, date, teeOff)
}

// CartKey guards a physical cart at one date+time across all courses, so
// two slots cannot hand the same cart out concurrently.
func CartKey(cartID uint, date, teeOff string) string {
	return fmt.Sprintf("teesheet:lock:cart:%d:%s:%s", cartID, date, teeOff)
}

// CaddyKey guards a caddy at one date+time across all courses.
func CaddyKey(caddyID uint, date, teeOff string) string {
	return fmt.Sprintf("teesheet:lock:caddy:%d:%s:%s", caddyID, date, teeOff)
}

// Acquire takes the lock with a fresh owner token: one SetNX attempt plus a
// bounded number of backoff retries. The TTL guarantees a crashed holder
// expires instead of wedging the slot.
func (l *Locker) Acquire(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	attempts := l.retries + 1
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-l.clock.After(l.backoff * time.Duration(i)):
			}
		}
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("acquire slot lock: %w", err)
		}
		if ok {
			return token, nil
		}
	}
	return "", ErrLocked
}

// Release frees the lock if the token still owns it.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if err := l.rdb.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

// WithLock runs fn while holding the lock and releases it on every exit
// path, including panics. The mutation discipline of the tee-sheet core is
// that all writes go through here.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token, err := l.Acquire(ctx, key)
	if err != nil {
		return err
	}
	// The caller's ctx may already be cancelled when fn returns; the lock
	// still has to be released instead of squatting until the TTL expires.
	defer l.Release(context.WithoutCancel(ctx), key, token)
	return fn(ctx)
}
