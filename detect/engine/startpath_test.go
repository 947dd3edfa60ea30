package engine

import (
	"testing"

	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/genericflow"
	"github.com/Schnaffon/suricata/detect/sigflags"
	"github.com/stretchr/testify/assert"
)

func TestStartDetectionParksWhenTransactionNotLastOrIncomplete(t *testing.T) {
	parser := newFakeParser(1)
	flow := &fakeFlow{parser: parser}
	sig := &fakeSignature{id: 1, kinds: []sigflags.EngineKind{sigflags.EngineCookie}}
	lookup := fakeLookup{sigflags.EngineCookie: {kind: sigflags.EngineCookie, verdicts: []sigflags.Verdict{sigflags.NeedsMoreData}}}

	rules := newFakeRuleSet(sig)
	e := newTestEngine(t, rules, &fakeAlertQueue{}, &fakeFileSubsystem{}, &fakeFlowVars{})

	tc := &detect.ThreadCtx{}
	alerted := e.StartDetection(tc, flow, nil, sig, lookup, sigflags.ToServer)

	assert.False(t, alerted)
	state, ok := parser.GetTxDetectState(parser.txs[0])
	assert.True(t, ok)
	assert.Equal(t, 1, state.Store(sigflags.ToServer).Len())
}

func TestStartDetectionDoesNotParkWhenLastAndComplete(t *testing.T) {
	parser := newFakeParser(1)
	parser.setComplete(0, sigflags.ToServer)
	flow := &fakeFlow{parser: parser}
	sig := &fakeSignature{id: 1, kinds: []sigflags.EngineKind{sigflags.EngineCookie}}
	lookup := fakeLookup{sigflags.EngineCookie: {kind: sigflags.EngineCookie, verdicts: []sigflags.Verdict{sigflags.NeedsMoreData}}}

	rules := newFakeRuleSet(sig)
	e := newTestEngine(t, rules, &fakeAlertQueue{}, &fakeFileSubsystem{}, &fakeFlowVars{})

	tc := &detect.ThreadCtx{}
	e.StartDetection(tc, flow, nil, sig, lookup, sigflags.ToServer)

	_, ok := parser.GetTxDetectState(parser.txs[0])
	assert.False(t, ok, "last+complete transaction with nothing definitive must not be parked")
}

func TestStartDetectionAlertsAndParksAcrossMultipleTransactions(t *testing.T) {
	parser := newFakeParser(2)
	flow := &fakeFlow{parser: parser}
	sig := &fakeSignature{id: 1, kinds: []sigflags.EngineKind{sigflags.EngineURI}}
	lookup := fakeLookup{sigflags.EngineURI: {kind: sigflags.EngineURI, verdicts: []sigflags.Verdict{sigflags.Match}}}

	rules := newFakeRuleSet(sig)
	alerts := &fakeAlertQueue{}
	e := newTestEngine(t, rules, alerts, &fakeFileSubsystem{}, &fakeFlowVars{})

	tc := &detect.ThreadCtx{}
	alerted := e.StartDetection(tc, flow, nil, sig, lookup, sigflags.ToServer)

	assert.True(t, alerted)
	assert.Len(t, alerts.entries, 2, "both transactions should have been evaluated")
	assert.Equal(t, 2, sig.postMatchRuns)
	for _, tx := range parser.txs {
		state, ok := parser.GetTxDetectState(tx)
		if assert.True(t, ok, "incomplete transaction %d should be parked", tx.id) {
			assert.Equal(t, 1, state.Store(sigflags.ToServer).Len())
		}
	}
}

func TestStartDetectionFileNoMatchFeedsArbiter(t *testing.T) {
	parser := newFakeParser(1)
	flow := &fakeFlow{parser: parser}
	sig := &fakeSignature{id: 1, kinds: []sigflags.EngineKind{sigflags.EngineFilestoreTS}, fileInterested: true}
	lookup := fakeLookup{sigflags.EngineFilestoreTS: {kind: sigflags.EngineFilestoreTS, verdicts: []sigflags.Verdict{sigflags.CantMatchFilestore}}}

	rules := newFakeRuleSet(sig)
	files := &fakeFileSubsystem{}
	e := newTestEngine(t, rules, &fakeAlertQueue{}, files, &fakeFlowVars{})

	tc := &detect.ThreadCtx{}
	e.StartDetection(tc, flow, nil, sig, lookup, sigflags.ToServer)

	state, ok := parser.GetTxDetectState(parser.txs[0])
	assert.True(t, ok)
	assert.Equal(t, 1, state.FilestoreCount(sigflags.ToServer))
	assert.Len(t, files.calls, 1, "the only file-interested signature giving up must disable storage")
}

func TestStartDetectionGenericFlowAlwaysParksFlowRecord(t *testing.T) {
	flow := &fakeFlow{}
	prog := &genericflow.Program{Instructions: []genericflow.Instruction{
		genericflow.InstructionFunc(func(genericflow.EvalContext) sigflags.Verdict { return sigflags.Match }),
	}}
	sig := &fakeSignature{id: 1, program: prog, hasProgram: true}

	rules := newFakeRuleSet(sig)
	alerts := &fakeAlertQueue{}
	e := newTestEngine(t, rules, alerts, &fakeFileSubsystem{}, &fakeFlowVars{})

	tc := &detect.ThreadCtx{}
	alerted := e.StartDetection(tc, flow, nil, sig, fakeLookup{}, sigflags.ToServer)

	assert.True(t, alerted)
	assert.Len(t, alerts.entries, 1)
	assert.Equal(t, detect.AnnotationStateMatch, alerts.entries[0].annotation)
	assert.Equal(t, 1, flow.fds.Store(sigflags.ToServer).Len())
	assert.Equal(t, 1, sig.postMatchRuns)
}

func TestStartDetectionDCEPayloadAlertsWithoutParking(t *testing.T) {
	flow := &fakeFlow{}
	flow.dcePayload[sigflags.ToServer] = []byte("contains needle here")
	flow.dceOK[sigflags.ToServer] = true

	patterns, err := genericflow.NewPatternSet([]genericflow.Pattern{{ID: 1, Expr: "needle"}})
	assert.NoError(t, err)
	sig := &fakeSignature{id: 1, dcePatterns: patterns, hasDCE: true}

	rules := newFakeRuleSet(sig)
	alerts := &fakeAlertQueue{}
	e := newTestEngine(t, rules, alerts, &fakeFileSubsystem{}, &fakeFlowVars{})

	tc := &detect.ThreadCtx{}
	alerted := e.StartDetection(tc, flow, nil, sig, fakeLookup{}, sigflags.ToServer)

	assert.True(t, alerted)
	assert.Len(t, alerts.entries, 1)
	assert.Nil(t, flow.fds, "DCE-payload single-shot matching never parks")
}
