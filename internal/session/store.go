package session

import "sync"

// Store is the session registry. The service runs single-threaded, but the
// contract is concurrency-safe so a store can be shared if the protocol
// loop ever grows workers.
type Store interface {
	// Create inserts the session, replacing any existing session with
	// the same ID.
	Create(s *Session)

	// Get returns the session with the given ID.
	Get(id string) (*Session, bool)

	// Update runs mutate on the session under the store's write lock.
	// It returns a *NotFoundError when the ID is unknown, otherwise
	// whatever mutate returns.
	Update(id string, mutate func(*Session) error) error

	// Delete removes the session and reports whether it existed.
	Delete(id string) bool
}

// MemoryStore is the in-memory Store used in production. Sessions live in
// a plain map guarded by a read-write mutex.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (s *MemoryStore) Create(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *MemoryStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *MemoryStore) Update(id string, mutate func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	return mutate(sess)
}

func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}
