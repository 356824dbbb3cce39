package redislock

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenPattern = `[0-9a-f-]{36}`

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "teesheet:lock:3:2026-09-05:08:10", SlotKey(3, "2026-09-05", "08:10"))
	assert.Equal(t, "teesheet:lock:cart:7:2026-09-05:08:10", CartKey(7, "2026-09-05", "08:10"))
	assert.Equal(t, "teesheet:lock:caddy:9:2026-09-05:08:10", CaddyKey(9, "2026-09-05", "08:10"))
}

func TestAcquire_FirstAttempt(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := SlotKey(1, "2026-09-05", "08:10")
	mock.Regexp().ExpectSetNX(key, tokenPattern, DefaultTTL).SetVal(true)

	l := New(rdb)
	token, err := l.Acquire(context.Background(), key)

	require.NoError(t, err)
	assert.Len(t, token, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_RetriesThenSucceeds(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := SlotKey(1, "2026-09-05", "08:10")
	mock.Regexp().ExpectSetNX(key, tokenPattern, DefaultTTL).SetVal(false)
	mock.Regexp().ExpectSetNX(key, tokenPattern, DefaultTTL).SetVal(true)

	l := New(rdb, WithRetries(2, time.Millisecond))
	token, err := l.Acquire(context.Background(), key)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_ExhaustsRetries(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := SlotKey(1, "2026-09-05", "08:10")
	// one initial attempt plus two retries
	for i := 0; i < 3; i++ {
		mock.Regexp().ExpectSetNX(key, tokenPattern, DefaultTTL).SetVal(false)
	}

	l := New(rdb, WithRetries(2, time.Millisecond))
	_, err := l.Acquire(context.Background(), key)

	assert.ErrorIs(t, err, ErrLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_ComparesOwnerToken(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := SlotKey(1, "2026-09-05", "08:10")
	mock.ExpectEval(releaseScript, []string{key}, "token-a").SetVal(int64(1))

	l := New(rdb)
	err := l.Release(context.Background(), key, "token-a")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLock_RunsAndReleases(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := SlotKey(1, "2026-09-05", "08:10")
	mock.Regexp().ExpectSetNX(key, tokenPattern, DefaultTTL).SetVal(true)
	// In Regexp mode the script is matched as a pattern, so it needs quoting.
	mock.Regexp().ExpectEval(regexp.QuoteMeta(releaseScript), []string{key}, tokenPattern).SetVal(int64(1))

	l := New(rdb)
	ran := false
	err := l.WithLock(context.Background(), key, func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLock_ReleasesOnError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := SlotKey(1, "2026-09-05", "08:10")
	mock.Regexp().ExpectSetNX(key, tokenPattern, DefaultTTL).SetVal(true)
	mock.Regexp().ExpectEval(regexp.QuoteMeta(releaseScript), []string{key}, tokenPattern).SetVal(int64(1))

	boom := errors.New("boom")
	l := New(rdb)
	err := l.WithLock(context.Background(), key, func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLock_ReleasesAfterCallerCancel(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := SlotKey(1, "2026-09-05", "08:10")
	mock.Regexp().ExpectSetNX(key, tokenPattern, DefaultTTL).SetVal(true)
	mock.Regexp().ExpectEval(regexp.QuoteMeta(releaseScript), []string{key}, tokenPattern).SetVal(int64(1))

	ctx, cancel := context.WithCancel(context.Background())
	l := New(rdb)
	err := l.WithLock(ctx, key, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, mock.ExpectationsWereMet(), "lock must be released even after the caller gave up")
}

func TestWithLock_PropagatesErrLocked(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := SlotKey(1, "2026-09-05", "08:10")
	mock.Regexp().ExpectSetNX(key, tokenPattern, DefaultTTL).SetVal(false)

	l := New(rdb, WithRetries(0, time.Millisecond))
	err := l.WithLock(context.Background(), key, func(ctx context.Context) error {
		t.Fatal("fn must not run when the lock is held elsewhere")
		return nil
	})

	assert.ErrorIs(t, err, ErrLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
