package detect

import "github.com/Schnaffon/suricata/detect/sigflags"

// FlowDetectState is the flow-owned analog of TxDetectState, used by legacy
// generic flow matchers that have no transaction boundary to hang their
// progress on (spec.md §3 "Flow detect state"). It carries a DirectionFlags
// field for parity with the transaction-scoped state, but the File-Store
// Arbiter never consults it: file-store accounting is transaction-scoped
// only (see DESIGN.md, Open Question decisions).
type FlowDetectState struct {
	dirs [2]flowDirState
}

type flowDirState struct {
	store Store[FlowProgressRecord]
	flags sigflags.DirectionFlags
}

// NewFlowDetectState returns an empty flow detect state.
func NewFlowDetectState() *FlowDetectState {
	return &FlowDetectState{}
}

// Store returns the flow-scoped record store for dir.
func (s *FlowDetectState) Store(dir sigflags.Direction) *Store[FlowProgressRecord] {
	return &s.dirs[dir].store
}

// Flags returns the direction flags for dir.
func (s *FlowDetectState) Flags(dir sigflags.Direction) sigflags.DirectionFlags {
	return s.dirs[dir].flags
}

// SetFlags replaces the direction flags for dir.
func (s *FlowDetectState) SetFlags(dir sigflags.Direction, f sigflags.DirectionFlags) {
	s.dirs[dir].flags = f
}

// ResetDirection zeroes dir's record count and flags without freeing the
// underlying chunk chain (spec.md §4.6).
func (s *FlowDetectState) ResetDirection(dir sigflags.Direction) {
	s.dirs[dir].store.Reset()
	s.dirs[dir].flags = 0
}

// HasStoredSignatures reports whether either direction has recorded
// progress. (Engine.HasInspectableState checks one direction's store
// length directly rather than calling this.)
func (s *FlowDetectState) HasStoredSignatures() bool {
	return s.dirs[sigflags.ToServer].store.Len() > 0 || s.dirs[sigflags.ToClient].store.Len() > 0
}
