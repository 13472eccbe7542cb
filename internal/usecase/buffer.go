package usecase

import "strings"

// ContextBuffer keeps the most recent transcript segments for one
// session. Fixed capacity, FIFO eviction. Owned by a single session
// goroutine; not safe for concurrent use.
type ContextBuffer struct {
	entries  []string
	capacity int
}

// NewContextBuffer creates a buffer holding at most capacity segments.
func NewContextBuffer(capacity int) *ContextBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &ContextBuffer{
		entries:  make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a segment, evicting the oldest when full.
func (b *ContextBuffer) Append(text string) {
	if len(b.entries) == b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries[len(b.entries)-1] = text
		return
	}
	b.entries = append(b.entries, text)
}

// Len returns the number of buffered segments.
func (b *ContextBuffer) Len() int { return len(b.entries) }

// Joined returns the buffered segments, oldest first, joined with
// newlines. This is the context shape handed to agents that want more
// than the triggering segment.
func (b *ContextBuffer) Joined() string {
	return strings.Join(b.entries, "\n")
}

// Snapshot returns a copy of the buffered segments, oldest first.
func (b *ContextBuffer) Snapshot() []string {
	out := make([]string, len(b.entries))
	copy(out, b.entries)
	return out
}
