package sessions

import "sync"

// InMemoryRepo is an in-memory implementation of Repo. Mutation is serialized
// per session ID: two concurrent logins in the same browser both land in the
// token map instead of one overwriting the other.
type InMemoryRepo struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	mu    sync.Mutex
	state *SessionState
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{entries: make(map[string]*sessionEntry)}
}

// Get returns a snapshot of the session, or a fresh empty state when the
// session does not exist yet. Sessions are created implicitly on first write.
func (r *InMemoryRepo) Get(sessionID string) (*SessionState, error) {
	r.mu.RLock()
	entry, ok := r.entries[sessionID]
	r.mu.RUnlock()
	if !ok {
		return NewState(), nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state.Clone(), nil
}

// Update applies fn to the session under that session's lock, creating the
// session if needed. When fn returns an error the state is left unchanged.
func (r *InMemoryRepo) Update(sessionID string, fn func(*SessionState) error) error {
	r.mu.Lock()
	entry, ok := r.entries[sessionID]
	if !ok {
		entry = &sessionEntry{state: NewState()}
		r.entries[sessionID] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next := entry.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	entry.state = next
	return nil
}

// Delete removes the whole session; a missing session is a no-op.
func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
	return nil
}
