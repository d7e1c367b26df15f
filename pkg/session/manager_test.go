package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/session"
)

// slowStore adds artificial IO latency so missing locks would surface as
// lost updates or races under -race.
type slowStore struct {
	mu   sync.Mutex
	data map[string]*domain.State

	saves atomic.Int64
}

func (s *slowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(10 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.State)
	}
	s.data[sessionID] = state.Clone()
	s.saves.Add(1)
	return nil
}

func (s *slowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(10 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.data[sessionID]; ok {
		return state.Clone(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *slowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *slowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_SerializesWrites(t *testing.T) {
	store := &slowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, id, domain.NewState(id, "alice")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.Save(ctx, id, domain.NewState(id, "alice"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 11, store.saves.Load())
}

func TestManager_LoadOrStart_AtomicInit(t *testing.T) {
	store := &slowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := manager.LoadOrStart(ctx, id, "alice")
			assert.NoError(t, err)
			assert.NotNil(t, state)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", state.UserID)
	assert.Nil(t, state.Cards)
}

func TestManager_LoadOrStart_ExistingSessionUntouched(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	existing := domain.NewState("s1", "alice")
	existing.Reason = "lost"
	require.NoError(t, manager.Save(ctx, "s1", existing))

	state, err := manager.LoadOrStart(ctx, "s1", "someone-else")
	require.NoError(t, err)
	assert.Equal(t, "alice", state.UserID)
	assert.Equal(t, "lost", state.Reason)
}

func TestManager_DeleteAndList(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	_, err := manager.LoadOrStart(ctx, "s1", "alice")
	require.NoError(t, err)
	_, err = manager.LoadOrStart(ctx, "s2", "bruno")
	require.NoError(t, err)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)

	require.NoError(t, manager.Delete(ctx, "s1"))
	_, err = manager.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
