package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	store.Create(&Session{ID: "sess-1", Width: 640, Height: 480})

	got, ok := store.Get("sess-1")
	require.True(t, ok)
	assert.Equal(t, "sess-1", got.ID)
	assert.Equal(t, 640, got.Width)
	assert.Equal(t, 480, got.Height)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	got, ok := store.Get("ghost")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMemoryStore_CreateReplaces(t *testing.T) {
	store := NewMemoryStore()
	store.Create(&Session{ID: "sess-1", Width: 100})
	store.Create(&Session{ID: "sess-1", Width: 999})

	got, ok := store.Get("sess-1")
	require.True(t, ok)
	assert.Equal(t, 999, got.Width, "reloading an ID must replace the session wholesale")
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()
	store.Create(&Session{ID: "sess-1"})

	err := store.Update("sess-1", func(s *Session) error {
		s.LastScores = []float64{0.9}
		return nil
	})
	require.NoError(t, err)

	got, _ := store.Get("sess-1")
	assert.Equal(t, []float64{0.9}, got.LastScores)
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	store := NewMemoryStore()

	err := store.Update("ghost", func(s *Session) error { return nil })
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.ID)
	assert.Equal(t, "Session ghost not found", err.Error())
}

func TestMemoryStore_UpdatePropagatesMutatorError(t *testing.T) {
	store := NewMemoryStore()
	store.Create(&Session{ID: "sess-1"})

	boom := errors.New("boom")
	err := store.Update("sess-1", func(s *Session) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	store.Create(&Session{ID: "sess-1"})

	assert.True(t, store.Delete("sess-1"))
	_, ok := store.Get("sess-1")
	assert.False(t, ok)
	assert.False(t, store.Delete("sess-1"), "second delete reports absence")
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	store.Create(&Session{ID: "shared"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Create(&Session{ID: "shared"})
			store.Get("shared")
			store.Update("shared", func(s *Session) error { return nil })
		}()
	}
	wg.Wait()

	_, ok := store.Get("shared")
	assert.True(t, ok)
}

func TestNotFoundError_Messages(t *testing.T) {
	withID := &NotFoundError{ID: "abc-123"}
	assert.Equal(t, "Session abc-123 not found", withID.Error())

	bare := &NotFoundError{}
	assert.Equal(t, "Session not found", bare.Error())
}
