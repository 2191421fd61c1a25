package order

import "sync"

// TableLocks serializes work per table number inside one process. Entries
// are dropped once no goroutine holds or waits on them.
type TableLocks struct {
	mu    sync.Mutex
	locks map[int]*tableLock
}

type tableLock struct {
	mu   sync.Mutex
	refs int
}

func NewTableLocks() *TableLocks {
	return &TableLocks{locks: make(map[int]*tableLock)}
}

// Lock blocks until the table is free and returns its unlock func.
func (l *TableLocks) Lock(tableNumber int) func() {
	l.mu.Lock()
	tl, ok := l.locks[tableNumber]
	if !ok {
		tl = &tableLock{}
		l.locks[tableNumber] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()

	return func() {
		tl.mu.Unlock()

		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, tableNumber)
		}
		l.mu.Unlock()
	}
}

func (l *TableLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
