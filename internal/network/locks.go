package network

import "sync"

// idLocks serializes mutations per network id. Documents are written whole,
// so without this two concurrent mutations could both pass the budget check
// against the same pre-mutation state and the later persist would drop the
// earlier one.
type idLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newIDLocks() *idLocks {
	return &idLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for an id, creating it on first use. Entries are
// never evicted; one mutex per live network is small enough.
func (l *idLocks) get(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
