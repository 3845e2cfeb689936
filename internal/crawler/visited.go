package crawler

import "sync"

// VisitedSet tracks which URLs have been claimed for fetching.
// It is safe for concurrent use.
//
// Design decision: Claiming is a single atomic check-and-set rather than
// separate Contains/Add calls because:
//  1. Two discoveries of the same URL must never both enqueue it
//  2. A single method makes the exactly-once guarantee impossible to misuse
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewVisitedSet creates an empty visited set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{
		seen: make(map[string]bool),
	}
}

// TryClaim marks the URL as visited and reports whether this call was the
// first to claim it. For any given URL, exactly one caller ever gets true.
func (v *VisitedSet) TryClaim(pageURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.seen[pageURL] {
		return false
	}
	v.seen[pageURL] = true
	return true
}

// Len returns the number of claimed URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
