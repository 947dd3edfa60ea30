package detect

// ChunkSize is the number of records held in a single chunk (spec.md §4.1 CHUNK_SIZE).
const ChunkSize = 32

type chunk[T any] struct {
	items [ChunkSize]T
	next  *chunk[T]
}

// Store is a bounded-chunk, append-only sequence of records (spec.md §3, §4.1).
// Appending is O(1) amortized; iteration visits records in insertion order,
// which is rule-evaluation order. Individual records are never deleted;
// the whole store is reset (see Reset) or dropped with its owner.
type Store[T any] struct {
	head, tail *chunk[T]
	tailIdx    int
	cnt        int
}

// Len returns the number of records appended (and not reset away).
func (s *Store[T]) Len() int { return s.cnt }

// Append adds item to the end of the store.
func (s *Store[T]) Append(item T) {
	chunkIdx := s.cnt / ChunkSize
	switch {
	case s.tail == nil:
		s.head = &chunk[T]{}
		s.tail = s.head
		s.tailIdx = 0
	case chunkIdx != s.tailIdx:
		if s.tail.next == nil {
			s.tail.next = &chunk[T]{}
		}
		s.tail = s.tail.next
		s.tailIdx = chunkIdx
	}

	s.tail.items[s.cnt%ChunkSize] = item
	s.cnt++
}

// ForEach visits every record in insertion order. The visit function receives
// a pointer into the chunk so callers can mutate the record in place (the
// Continue Path does this). Returning false stops iteration early.
func (s *Store[T]) ForEach(visit func(index int, item *T) bool) {
	remaining := s.cnt
	idx := 0
	for c := s.head; c != nil && remaining > 0; c = c.next {
		n := ChunkSize
		if remaining < n {
			n = remaining
		}
		for i := 0; i < n; i++ {
			if !visit(idx, &c.items[i]) {
				return
			}
			idx++
		}
		remaining -= n
	}
}

// ChunkCount returns the number of allocated chunks, for the chunk invariant
// property test (spec.md §8 property 2): on a store that has never been
// Reset it equals ceil(cnt/ChunkSize); Reset keeps every allocated chunk, so
// afterwards it can be larger.
func (s *Store[T]) ChunkCount() int {
	n := 0
	for c := s.head; c != nil; c = c.next {
		n++
	}
	return n
}

// Reset zeroes the record count and rewinds the append cursor to the start of
// the existing chunk chain, so the next Append overwrites chunk storage in
// place rather than growing the chain further. It does not free any chunk
// (spec.md §4.6, §9: chunks are never freed individually).
func (s *Store[T]) Reset() {
	s.cnt = 0
	s.tail = s.head
	s.tailIdx = 0
}
