package engine

import (
	"testing"

	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/sigflags"
	"github.com/stretchr/testify/assert"
)

func TestResetLiveTransactionsZeroesBothDirections(t *testing.T) {
	parser := newFakeParser(2)
	state0 := detect.NewTxDetectState()
	state0.Store(sigflags.ToServer).Append(detect.ProgressRecord{SigID: 1})
	state0.Store(sigflags.ToClient).Append(detect.ProgressRecord{SigID: 2})
	parser.SetTxDetectState(parser.txs[0], state0)

	flow := &fakeFlow{parser: parser}
	e := newTestEngine(t, newFakeRuleSet(), &fakeAlertQueue{}, &fakeFileSubsystem{}, &fakeFlowVars{})

	e.ResetLiveTransactions(flow)

	assert.Equal(t, 0, state0.Store(sigflags.ToServer).Len())
	assert.Equal(t, 0, state0.Store(sigflags.ToClient).Len())
}

func TestResetLiveTransactionsSkipsTransactionsWithoutDetectState(t *testing.T) {
	parser := newFakeParser(1)
	flow := &fakeFlow{parser: parser}
	e := newTestEngine(t, newFakeRuleSet(), &fakeAlertQueue{}, &fakeFileSubsystem{}, &fakeFlowVars{})

	assert.NotPanics(t, func() { e.ResetLiveTransactions(flow) })
}

func TestResetFlowStateZeroesOneDirectionOnly(t *testing.T) {
	fds := detect.NewFlowDetectState()
	fds.Store(sigflags.ToServer).Append(detect.FlowProgressRecord{SigID: 1})
	fds.Store(sigflags.ToClient).Append(detect.FlowProgressRecord{SigID: 2})
	flow := &fakeFlow{fds: fds}

	e := newTestEngine(t, newFakeRuleSet(), &fakeAlertQueue{}, &fakeFileSubsystem{}, &fakeFlowVars{})
	e.ResetFlowState(flow, sigflags.ToServer)

	assert.Equal(t, 0, fds.Store(sigflags.ToServer).Len())
	assert.Equal(t, 1, fds.Store(sigflags.ToClient).Len())
}
