package engine

import (
	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// ResetFlowState zeroes the flow-scoped detect state's counters and flags
// for dir (spec.md §6, §4.6).
func (e *Engine) ResetFlowState(flow detect.Flow, dir sigflags.Direction) {
	if fds := flow.FlowDetectState(); fds != nil {
		fds.ResetDirection(dir)
	}
}

// ResetLiveTransactions is the engine-reload hook (spec.md §4.6): it zeroes
// every live transaction's detect state, in both directions, so the
// Dispatcher re-evaluates against the new rule set instead of trusting
// decisions made under the old one. It also purges the RegexSelectorCache of
// every entry from an older generation, since those programs and pattern
// sets belong to signatures the new rule set may no longer carry.
func (e *Engine) ResetLiveTransactions(flow detect.Flow) {
	e.RegexCache.PurgeGeneration(e.Rules.Generation())

	parser := flow.Parser()
	if parser == nil {
		return
	}

	reset := 0
	txCount := parser.GetTxCount()
	for id := uint64(0); id < txCount; id++ {
		tx, ok := parser.GetTx(id)
		if !ok {
			continue
		}
		state, ok := parser.GetTxDetectState(tx)
		if !ok || state == nil {
			continue
		}
		state.ResetDirection(sigflags.ToServer)
		state.ResetDirection(sigflags.ToClient)
		reset++
	}

	e.Metrics.RecordResetSweep(reset)
}
