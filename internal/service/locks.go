package service

import "sync"

// sessionLocks serializes mutations per session identifier so concurrent
// respond/end calls against the same session are strictly ordered. Entries
// are reference counted and removed when the last holder releases.
type sessionLocks struct {
	mu      *sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() sessionLocks {
	return sessionLocks{
		mu:      &sync.Mutex{},
		entries: make(map[string]*lockEntry),
	}
}

// acquire blocks until the per-session lock is held and returns the release
// function.
func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	entry, ok := l.entries[sessionID]
	if !ok {
		entry = &lockEntry{}
		l.entries[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, sessionID)
		}
		l.mu.Unlock()
	}
}
