// Package detect implements the stateful signature continuation engine:
// the part of the detection pipeline that lets per-transaction and
// per-flow signature evaluation resume across packets instead of
// restarting from scratch (spec.md §1-§9).
//
// The package is deliberately independent of any concrete protocol parser
// or rule syntax. Callers (detect/engine, internal/scenario, cmd/detectsim)
// supply concrete Flow/Transaction/Signature/InspectionEngine
// implementations; detect only owns the continuation bookkeeping.
package detect

import (
	"github.com/Schnaffon/suricata/detect/genericflow"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// Transaction is one application-layer transaction within a flow.
type Transaction interface {
	ID() uint64
}

// ApplicationLayerParser is the subset of a protocol parser's surface the
// engine needs: transaction bookkeeping, progress tracking and the
// per-transaction detect state the parser is responsible for storing
// (spec.md §3 "Application layer parser", §4.7).
type ApplicationLayerParser interface {
	GetTxCount() uint64
	GetTx(id uint64) (Transaction, bool)

	// GetInspectID returns the lowest transaction ID not yet fully inspected
	// in the given direction; SetInspectID advances it.
	GetInspectID(dir sigflags.Direction) uint64
	SetInspectID(dir sigflags.Direction, id uint64)

	// GetStateProgress reports how far the parser has gotten on tx in the
	// given direction, compared against GetCompletionStatus(dir).
	GetStateProgress(tx Transaction, dir sigflags.Direction) int
	GetCompletionStatus(dir sigflags.Direction) int

	// SupportsTxDetectState reports whether this protocol's transactions can
	// carry a *TxDetectState at all (spec.md §4.7: some parsers, e.g. purely
	// flow-oriented ones, never do).
	SupportsTxDetectState() bool
	GetTxDetectState(tx Transaction) (*TxDetectState, bool)
	SetTxDetectState(tx Transaction, state *TxDetectState)
}

// Flow is the subset of flow state the engine needs: the flow-scoped detect
// state, the per-direction inspection version stamp, and access to the
// application-layer parser and raw payload for flow-scoped matchers.
type Flow interface {
	Parser() ApplicationLayerParser

	FlowDetectState() *FlowDetectState
	SetFlowDetectState(state *FlowDetectState)

	// DirectionVersion and SetDirectionVersion hold the per-direction
	// alversion stamp: the application-layer version the Continue Path last
	// ran against. ContinueDetection stores it after each pass and skips
	// work while it still equals the caller's current alversion.
	DirectionVersion(dir sigflags.Direction) uint64
	SetDirectionVersion(dir sigflags.Direction, v uint64)

	// DCEPayload returns the accumulated message-oriented payload available
	// for flow-scoped single-shot matching in dir, if the protocol has one.
	DCEPayload(dir sigflags.Direction) ([]byte, bool)

	// EndOfFlow reports whether the flow has been marked as torn down. The
	// Continue Path's version short-circuit (spec.md §4.4 step 1) never
	// applies once this is true, since a flow tear-down can surface final
	// state even without a fresh alversion bump.
	EndOfFlow() bool
}

// Packet is an opaque handle a Signature's non-alert action handlers may act
// on (spec.md §4.3.1's "apply the signature's non-alert actions" step). The
// engine never inspects it.
type Packet interface{}

// Signature is one loaded detection rule. The engine calls it to discover
// which inspection engines it needs, to run its generic flow program, and to
// carry out its side effects once a verdict is reached.
type Signature interface {
	ID() int

	// EngineKinds lists, in declared order, the per-transaction inspection
	// engines this signature uses (spec.md §4.2: "engines within a signature
	// are always attempted in the signature's declared engine order").
	EngineKinds() []sigflags.EngineKind

	// IsFileInterested reports whether this signature inspects file data,
	// i.e. whether it counts toward the File-Store Arbiter's denominator
	// (spec.md §4.5).
	IsFileInterested() bool

	// GenericFlowProgram returns the signature's flow-scoped generic match
	// program, if it has one (spec.md §4.3.2/§4.3.3).
	GenericFlowProgram() (*genericflow.Program, bool)

	// DCEPatternSet returns the signature's DCE-payload single-shot match
	// list, if it has one (spec.md §4.3.3).
	DCEPatternSet() (*genericflow.PatternSet, bool)

	// NoAlert reports whether a full match should be recorded without
	// raising an alert (a "noalert" rule still runs its actions).
	NoAlert() bool

	// ApplyActions runs the signature's non-alert packet actions.
	ApplyActions(pkt Packet)

	// RunPostMatchActions runs side effects triggered by a confirmed match
	// (flowvar sets, flowbits, threshold bookkeeping), under the flow lock.
	RunPostMatchActions(tc *ThreadCtx, flow Flow, txID *uint64)
}

// InspectionEngine runs one per-transaction inspection buffer (URI, a
// header, a body, a filename, ...) against a signature and reports a verdict
// (spec.md §4.2, §4.3.1).
type InspectionEngine interface {
	Kind() sigflags.EngineKind
	Inspect(sig Signature, flow Flow, tx Transaction, txID uint64, dir sigflags.Direction) sigflags.Verdict
}

// EngineLookup resolves an EngineKind to the InspectionEngine implementation
// active for the flow's current application protocol and direction (spec.md
// §6: "a table indexed by (protocol, alproto, direction) yielding a linked
// list of engines"). The caller passes one to StartDetection and
// ContinueDetection; dispatch.Run walks a signature's own declared engine
// order and looks each one up here.
type EngineLookup interface {
	Engine(kind sigflags.EngineKind) (InspectionEngine, bool)
}

// AlertAnnotation is a bitmask recording why an alert fired, for diagnostics
// and for property tests (spec.md §4.2: a transaction-bound state alert is
// "annotated with STATE_MATCH and, if the alert is transaction-bound, TX",
// so the two bits can and do appear together on the same alert).
type AlertAnnotation uint8

const (
	// AnnotationStateMatch marks an alert raised by the Start or Continue
	// Path for a transaction's per-engine inspection or a generic flow
	// program.
	AnnotationStateMatch AlertAnnotation = 1 << iota
	// AnnotationTX marks an alert bound to a transaction, raised by either
	// the Start Path or the Continue Path. It is always set together with
	// AnnotationStateMatch.
	AnnotationTX
)

// AnnotationFresh marks an alert raised purely from the current packet,
// with no continuation involved. It never combines with the other bits.
const AnnotationFresh AlertAnnotation = 0

// Has reports whether all bits in mask are set.
func (a AlertAnnotation) Has(mask AlertAnnotation) bool {
	return a&mask == mask
}

// AlertQueue collects the alerts the engine raises.
type AlertQueue interface {
	Append(sig Signature, txID *uint64, annotation AlertAnnotation)
}

// FileSubsystem is the file-store side effect the File-Store Arbiter drives
// (spec.md §4.5).
type FileSubsystem interface {
	DisableStoringForTransaction(flow Flow, dir sigflags.Direction, txID uint64)
}

// FlowVarEngine processes deferred flow-variable side effects. The Continue
// Path calls it after every stored record it inspects.
type FlowVarEngine interface {
	ProcessFlowvarList(tc *ThreadCtx, flow Flow)
}

// RuleSet is the swappable, reload-safe view of the loaded signature set
// (spec.md §4.6: rule-set reload must not corrupt state belonging to the
// previous generation).
type RuleSet interface {
	Signature(sid int) (Signature, bool)
	FileInterestedSignatureCount() int
	Generation() uint64
}

// ThreadCtx carries per-thread scratch state across a detection pass. It is
// a concrete type, not an interface: the engine is the only owner of its
// fields, and callers only need to know whether the current thread already
// holds the flow's write lock (spec.md §5's concurrency model).
type ThreadCtx struct {
	flowLocked bool
}

// MarkFlowLocked records that this thread currently holds the flow's write
// lock, so nested calls skip re-acquiring it.
func (tc *ThreadCtx) MarkFlowLocked() { tc.flowLocked = true }

// ClearFlowLocked releases the bookkeeping bit set by MarkFlowLocked.
func (tc *ThreadCtx) ClearFlowLocked() { tc.flowLocked = false }

// FlowLockedByMe reports whether this thread currently holds the flow lock.
func (tc *ThreadCtx) FlowLockedByMe() bool { return tc.flowLocked }
