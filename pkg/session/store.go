package session

import (
	"fmt"
	"sync"
)

// Store is an in-memory session store. Sessions are small and bounded by
// the workflow lifetime, so a mutex-guarded map is all that's needed.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Put stores a session, replacing any prior session under the same name.
// Re-uploading a file restarts its workflow from the first step.
func (s *Store) Put(sess *Session) error {
	if sess == nil {
		return fmt.Errorf("cannot store nil session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.Name] = sess
	return nil
}

// Get retrieves a session by name.
func (s *Store) Get(name string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return sess, nil
}
