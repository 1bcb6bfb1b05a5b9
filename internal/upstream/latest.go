package upstream

import "sync"

// Latest is a stale-response guard. Each fetch for a key takes a ticket via
// Begin; when the response arrives, Accept reports whether that fetch is
// still the newest one for the key. An older response that resolves after a
// newer fetch started must be discarded, never applied.
type Latest struct {
	mu      sync.Mutex
	tickets map[string]uint64
}

func NewLatest() *Latest {
	return &Latest{tickets: map[string]uint64{}}
}

// Begin registers a new fetch for key and returns its ticket.
func (l *Latest) Begin(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tickets[key]++
	return l.tickets[key]
}

// Accept reports whether ticket still identifies the newest fetch for key.
func (l *Latest) Accept(key string, ticket uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.tickets[key] == ticket
}
