package engine

import (
	"testing"

	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/genericflow"
	"github.com/Schnaffon/suricata/detect/sigflags"
	"github.com/Schnaffon/suricata/detecttest"
)

type fakeTx struct{ id uint64 }

func (t *fakeTx) ID() uint64 { return t.id }

type fakeParser struct {
	txs           []*fakeTx
	inspectID     [2]uint64
	progress      map[uint64][2]int
	completion    [2]int
	supportsState bool
	states        map[uint64]*detect.TxDetectState
}

func newFakeParser(n int) *fakeParser {
	p := &fakeParser{
		progress:      map[uint64][2]int{},
		completion:    [2]int{1, 1},
		supportsState: true,
		states:        map[uint64]*detect.TxDetectState{},
	}
	for i := 0; i < n; i++ {
		p.txs = append(p.txs, &fakeTx{id: uint64(i)})
	}
	return p
}

func (p *fakeParser) GetTxCount() uint64 { return uint64(len(p.txs)) }
func (p *fakeParser) GetTx(id uint64) (detect.Transaction, bool) {
	if id >= uint64(len(p.txs)) {
		return nil, false
	}
	return p.txs[id], true
}
func (p *fakeParser) GetInspectID(dir sigflags.Direction) uint64     { return p.inspectID[dir] }
func (p *fakeParser) SetInspectID(dir sigflags.Direction, id uint64) { p.inspectID[dir] = id }
func (p *fakeParser) GetStateProgress(tx detect.Transaction, dir sigflags.Direction) int {
	return p.progress[tx.ID()][dir]
}
func (p *fakeParser) GetCompletionStatus(dir sigflags.Direction) int { return p.completion[dir] }
func (p *fakeParser) SupportsTxDetectState() bool                   { return p.supportsState }
func (p *fakeParser) GetTxDetectState(tx detect.Transaction) (*detect.TxDetectState, bool) {
	s, ok := p.states[tx.ID()]
	return s, ok
}
func (p *fakeParser) SetTxDetectState(tx detect.Transaction, state *detect.TxDetectState) {
	p.states[tx.ID()] = state
}
func (p *fakeParser) setComplete(id uint64, dir sigflags.Direction) {
	prog := p.progress[id]
	prog[dir] = p.completion[dir]
	p.progress[id] = prog
}

type fakeFlow struct {
	parser     *fakeParser
	fds        *detect.FlowDetectState
	version    [2]uint64
	dcePayload [2][]byte
	dceOK      [2]bool
	eof        bool
}

func (f *fakeFlow) Parser() detect.ApplicationLayerParser {
	if f.parser == nil {
		return nil
	}
	return f.parser
}
func (f *fakeFlow) FlowDetectState() *detect.FlowDetectState   { return f.fds }
func (f *fakeFlow) SetFlowDetectState(s *detect.FlowDetectState) { f.fds = s }
func (f *fakeFlow) DirectionVersion(dir sigflags.Direction) uint64 { return f.version[dir] }
func (f *fakeFlow) SetDirectionVersion(dir sigflags.Direction, v uint64) {
	f.version[dir] = v
}
func (f *fakeFlow) DCEPayload(dir sigflags.Direction) ([]byte, bool) {
	return f.dcePayload[dir], f.dceOK[dir]
}
func (f *fakeFlow) EndOfFlow() bool { return f.eof }

type fakeSignature struct {
	id             int
	kinds          []sigflags.EngineKind
	noAlert        bool
	fileInterested bool
	program        *genericflow.Program
	hasProgram     bool
	dcePatterns    *genericflow.PatternSet
	hasDCE         bool
	actionsRun     int
	postMatchRuns  int
}

func (s *fakeSignature) ID() int                           { return s.id }
func (s *fakeSignature) EngineKinds() []sigflags.EngineKind { return s.kinds }
func (s *fakeSignature) IsFileInterested() bool             { return s.fileInterested }
func (s *fakeSignature) GenericFlowProgram() (*genericflow.Program, bool) {
	return s.program, s.hasProgram
}
func (s *fakeSignature) DCEPatternSet() (*genericflow.PatternSet, bool) {
	return s.dcePatterns, s.hasDCE
}
func (s *fakeSignature) NoAlert() bool              { return s.noAlert }
func (s *fakeSignature) ApplyActions(detect.Packet) { s.actionsRun++ }
func (s *fakeSignature) RunPostMatchActions(tc *detect.ThreadCtx, flow detect.Flow, txID *uint64) {
	s.postMatchRuns++
	if !tc.FlowLockedByMe() {
		panic("post-match actions ran without the flow-locked re-entry flag set")
	}
}

type fakeEngineImpl struct {
	kind     sigflags.EngineKind
	verdicts []sigflags.Verdict
	calls    int
}

func (e *fakeEngineImpl) Kind() sigflags.EngineKind { return e.kind }
func (e *fakeEngineImpl) Inspect(detect.Signature, detect.Flow, detect.Transaction, uint64, sigflags.Direction) sigflags.Verdict {
	i := e.calls
	if i >= len(e.verdicts) {
		i = len(e.verdicts) - 1
	}
	e.calls++
	return e.verdicts[i]
}

type fakeLookup map[sigflags.EngineKind]*fakeEngineImpl

func (l fakeLookup) Engine(kind sigflags.EngineKind) (detect.InspectionEngine, bool) {
	e, ok := l[kind]
	if !ok {
		return nil, false
	}
	return e, true
}

type alertEntry struct {
	sig        detect.Signature
	txID       *uint64
	annotation detect.AlertAnnotation
}

type fakeAlertQueue struct{ entries []alertEntry }

func (q *fakeAlertQueue) Append(sig detect.Signature, txID *uint64, annotation detect.AlertAnnotation) {
	q.entries = append(q.entries, alertEntry{sig, txID, annotation})
}

type disableCall struct {
	dir  sigflags.Direction
	txID uint64
}

type fakeFileSubsystem struct{ calls []disableCall }

func (f *fakeFileSubsystem) DisableStoringForTransaction(flow detect.Flow, dir sigflags.Direction, txID uint64) {
	f.calls = append(f.calls, disableCall{dir, txID})
}

type fakeFlowVars struct{ calls int }

func (f *fakeFlowVars) ProcessFlowvarList(tc *detect.ThreadCtx, flow detect.Flow) { f.calls++ }

type fakeRuleSet struct {
	sigs           map[int]detect.Signature
	fileInterested int
	generation     uint64
}

func newFakeRuleSet(sigs ...detect.Signature) *fakeRuleSet {
	rs := &fakeRuleSet{sigs: map[int]detect.Signature{}}
	for _, s := range sigs {
		rs.sigs[s.ID()] = s
		if s.IsFileInterested() {
			rs.fileInterested++
		}
	}
	return rs
}

func (r *fakeRuleSet) Signature(sid int) (detect.Signature, bool) {
	s, ok := r.sigs[sid]
	return s, ok
}
func (r *fakeRuleSet) FileInterestedSignatureCount() int { return r.fileInterested }
func (r *fakeRuleSet) Generation() uint64                { return r.generation }

func newTestEngine(t *testing.T, rules detect.RuleSet, alerts detect.AlertQueue, files detect.FileSubsystem, flowVars detect.FlowVarEngine) *Engine {
	return New(rules, alerts, files, flowVars, nil, detecttest.NewTestLogger(t))
}
