package domain

import "sync"

// Ticket identifies one insertion into the in-flight registry.
type Ticket uint64

// InFlight tracks outstanding requests by fingerprint so callers can drop duplicates and
// discard responses that were superseded while they were in flight.
type InFlight struct {
	mu      sync.Mutex
	entries map[string]Ticket
	next    Ticket
}

// NewInFlight creates an empty registry.
func NewInFlight() *InFlight {
	return &InFlight{
		entries: make(map[string]Ticket),
	}
}

// Insert registers fingerprint. It returns false when a request with the same fingerprint
// is already outstanding; the caller should drop its request.
func (f *InFlight) Insert(fingerprint string) (Ticket, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.entries[fingerprint]; exists {
		return 0, false
	}

	f.next++
	f.entries[fingerprint] = f.next
	return f.next, true
}

// Resolve completes the request identified by ticket. It returns false when the entry was
// evicted or replaced in the meantime, meaning the response is stale.
func (f *InFlight) Resolve(fingerprint string, ticket Ticket) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, exists := f.entries[fingerprint]
	if !exists || current != ticket {
		return false
	}

	delete(f.entries, fingerprint)
	return true
}

// Evict forgets fingerprint regardless of which ticket holds it.
func (f *InFlight) Evict(fingerprint string) {
	f.mu.Lock()
	delete(f.entries, fingerprint)
	f.mu.Unlock()
}

// Active reports whether fingerprint is outstanding.
func (f *InFlight) Active(fingerprint string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, exists := f.entries[fingerprint]
	return exists
}

// Len returns the number of outstanding requests.
func (f *InFlight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
