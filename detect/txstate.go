package detect

import "github.com/Schnaffon/suricata/detect/sigflags"

// TxDetectState holds a single transaction's stored signature progress, one
// Store per direction (spec.md §3 "Transaction detect state"). It is owned
// by the transaction and accessed only by a thread holding the owning
// flow's write lock, so it carries no internal synchronization of its own.
type TxDetectState struct {
	dirs [2]txDirState
}

type txDirState struct {
	store        Store[ProgressRecord]
	flags        sigflags.DirectionFlags
	filestoreCnt int
}

// NewTxDetectState returns an empty transaction detect state.
func NewTxDetectState() *TxDetectState {
	return &TxDetectState{}
}

// Store returns the record store for dir.
func (s *TxDetectState) Store(dir sigflags.Direction) *Store[ProgressRecord] {
	return &s.dirs[dir].store
}

// Flags returns the direction flags (file-new / file-store-disabled bits)
// for dir.
func (s *TxDetectState) Flags(dir sigflags.Direction) sigflags.DirectionFlags {
	return s.dirs[dir].flags
}

// SetFlags replaces the direction flags for dir.
func (s *TxDetectState) SetFlags(dir sigflags.Direction, f sigflags.DirectionFlags) {
	s.dirs[dir].flags = f
}

// FilestoreCount returns how many file-interested signatures have given up
// (returned CantMatchFilestore) on this transaction in dir (the File-Store
// Arbiter's numerator, spec.md §4.5).
func (s *TxDetectState) FilestoreCount(dir sigflags.Direction) int {
	return s.dirs[dir].filestoreCnt
}

// IncFilestoreCount adds delta to the filestore count for dir.
func (s *TxDetectState) IncFilestoreCount(dir sigflags.Direction, delta int) {
	s.dirs[dir].filestoreCnt += delta
}

// ResetDirection zeroes dir's record count, flags and filestore count
// (spec.md §4.6: rule-set reload resets counters without freeing the chunk
// chain, so the underlying storage is reused rather than reallocated).
func (s *TxDetectState) ResetDirection(dir sigflags.Direction) {
	s.dirs[dir].store.Reset()
	s.dirs[dir].flags = 0
	s.dirs[dir].filestoreCnt = 0
}

// HasStoredSignatures reports whether this transaction has any recorded
// progress in either direction.
func (s *TxDetectState) HasStoredSignatures() bool {
	return s.dirs[sigflags.ToServer].store.Len() > 0 || s.dirs[sigflags.ToClient].store.Len() > 0
}
