package detect

import "github.com/Schnaffon/suricata/detect/sigflags"

// ProgressRecord is one signature's stored progress against a single
// transaction, in a single direction (spec.md §3 "Progress record"). It is
// the unit the Store holds for transaction-scoped state.
type ProgressRecord struct {
	SigID int
	Flags sigflags.InspectFlags
}

// FlowProgressRecord is the flow-scoped analog of ProgressRecord, used by the
// legacy generic flow matchers (spec.md §3 "Flow progress record"). It
// additionally carries the instruction cursor into the signature's generic
// flow program, since flow-scoped matching has no per-engine breakdown.
type FlowProgressRecord struct {
	SigID  int
	Flags  sigflags.InspectFlags
	Cursor sigflags.Cursor
}
