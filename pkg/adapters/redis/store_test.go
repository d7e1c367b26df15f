package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisadapter "github.com/aretw0/cardflow/pkg/adapters/redis"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestStore_Contract(t *testing.T) {
	store := redisadapter.NewFromClient(newTestClient(t))
	tests.RunStateStoreContract(t, store)
}

func TestStore_TTLExpiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redisadapter.NewFromClient(client, redisadapter.WithTTL(time.Second))
	ctx := context.Background()

	state := domain.NewState("session-ttl", "alice")
	state.Reason = "lost"
	require.NoError(t, store.Save(ctx, "session-ttl", state))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, "session-ttl")

	// miniredis needs an explicit clock advance for TTLs to fire.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "session-ttl")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Index pruning uses the real clock, so wait out the TTL before
	// checking the lazy cleanup.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, sessions, "session-ttl")
}

func TestStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redisadapter.NewFromClient(client, redisadapter.WithPrefix("custom:app:"))
	ctx := context.Background()

	state := domain.NewState("my-session", "alice")
	require.NoError(t, store.Save(ctx, "my-session", state))

	assert.True(t, mr.Exists("custom:app:my-session"))

	loaded, err := store.Load(ctx, "my-session")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.UserID)
}

func TestLocker_MutualExclusion(t *testing.T) {
	client := newTestClient(t)
	locker := redisadapter.NewLocker(client, "")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "session-a", 5*time.Second)
	require.NoError(t, err)

	// A second Lock on the same key must not succeed while held.
	blocked, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blocked, "session-a", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	// After release the lock is free again.
	unlock2, err := locker.Lock(ctx, "session-a", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_UncontendedAcquireIsImmediate(t *testing.T) {
	client := newTestClient(t)
	locker := redisadapter.NewLocker(client, "")

	// Well under the retry interval, so the lock has to be taken on the
	// first attempt rather than on a tick.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	unlock, err := locker.Lock(ctx, "session-b", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(context.Background()))
}
