// Package engine wires the Inspection Dispatcher (detect/dispatch) into the
// Start Path, Continue Path, File-Store Arbiter and Reset/Reload interface
// described by spec.md §4.3-§4.6, and exposes them as the operations
// spec.md §6 lists for the enclosing packet-processing engine to call.
package engine

import (
	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/genericflow"
	"github.com/Schnaffon/suricata/detect/metrics"
	"github.com/Schnaffon/suricata/detect/sigflags"
	"github.com/rs/zerolog"
)

// regexCacheSize bounds how many (generation, signature) program/pattern-set
// entries New's default RegexSelectorCache keeps, per kind.
const regexCacheSize = 4096

// Engine drives signature continuation for one rule-set generation. It holds
// no per-flow state itself, all of that lives on the Flow/Transaction
// objects the caller supplies, so a single Engine is safe to share across
// every packet-processing thread once built.
type Engine struct {
	Rules    detect.RuleSet
	Alerts   detect.AlertQueue
	Files    detect.FileSubsystem
	FlowVars detect.FlowVarEngine
	Metrics  *metrics.Recorder
	Log      zerolog.Logger

	// RegexCache memoizes sig.GenericFlowProgram()/sig.DCEPatternSet()
	// resolution across calls within one rule-set generation. A nil value
	// disables caching without affecting correctness.
	RegexCache *detect.RegexSelectorCache
}

// New builds an Engine. rec may be nil if metrics are not wired up.
func New(rules detect.RuleSet, alerts detect.AlertQueue, files detect.FileSubsystem, flowVars detect.FlowVarEngine, rec *metrics.Recorder, log zerolog.Logger) *Engine {
	regexCache, err := detect.NewRegexSelectorCache(regexCacheSize)
	if err != nil {
		regexCache = nil
	}
	return &Engine{
		Rules:      rules,
		Alerts:     alerts,
		Files:      files,
		FlowVars:   flowVars,
		Metrics:    rec,
		Log:        log,
		RegexCache: regexCache,
	}
}

// resolveGenericFlowProgram returns sig's generic flow-match program,
// through the engine's RegexSelectorCache so a rule-set reload only pays
// the resolution cost once per (generation, signature) pair.
func (e *Engine) resolveGenericFlowProgram(sig detect.Signature) (*genericflow.Program, bool) {
	prog, ok := sig.GenericFlowProgram()
	if !ok {
		return nil, false
	}
	cached, err := e.RegexCache.GetOrCompileProgram(e.Rules.Generation(), sig.ID(), func() (*genericflow.Program, error) {
		return prog, nil
	})
	if err != nil {
		return prog, true
	}
	return cached, true
}

// resolveDCEPatternSet returns sig's DCE-payload single-shot match list,
// through the engine's RegexSelectorCache, same as resolveGenericFlowProgram.
func (e *Engine) resolveDCEPatternSet(sig detect.Signature) (*genericflow.PatternSet, bool) {
	patterns, ok := sig.DCEPatternSet()
	if !ok {
		return nil, false
	}
	cached, err := e.RegexCache.GetOrCompilePatternSet(e.Rules.Generation(), sig.ID(), func() (*genericflow.PatternSet, error) {
		return patterns, nil
	})
	if err != nil {
		return patterns, true
	}
	return cached, true
}

// GenericFlowContext is the EvalContext the engine passes to a signature's
// generic flow-match program (detect/genericflow). Signature authors read
// these fields from within their Instruction implementations.
type GenericFlowContext struct {
	Flow      detect.Flow
	Direction sigflags.Direction
	Packet    detect.Packet
	ThreadCtx *detect.ThreadCtx
}

// txDetectState returns tx's detect state, creating and attaching one if
// missing and createIfMissing is true. Per spec.md §7, attaching detect
// state to a transaction whose parser does not advertise support for it is a
// programmer error, not a runtime condition to recover from.
func (e *Engine) txDetectState(parser detect.ApplicationLayerParser, tx detect.Transaction, createIfMissing bool) *detect.TxDetectState {
	if state, ok := parser.GetTxDetectState(tx); ok && state != nil {
		return state
	}
	if !createIfMissing {
		return nil
	}
	if !parser.SupportsTxDetectState() {
		panic("detect/engine: attempted to attach tx detect state to a parser that does not support it")
	}
	state := detect.NewTxDetectState()
	parser.SetTxDetectState(tx, state)
	return state
}

// runPostMatchLocked invokes sig's post-match actions under the re-entry
// flag spec.md §5 describes: the engine marks the flow as already locked by
// this thread before the call and clears the mark after, so post-match code
// that itself wants the flow lock can see it is already held.
func runPostMatchLocked(tc *detect.ThreadCtx, flow detect.Flow, sig detect.Signature, txID *uint64) {
	tc.MarkFlowLocked()
	sig.RunPostMatchActions(tc, flow, txID)
	tc.ClearFlowLocked()
}
