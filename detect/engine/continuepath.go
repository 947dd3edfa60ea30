package engine

import (
	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/dispatch"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// InspectState is the result of HasInspectableState (spec.md §6).
type InspectState int

const (
	// StateNone means neither the flow nor any of its transactions carry
	// any detect state; the packet path can skip the core entirely.
	StateNone InspectState = iota
	// StateInspectableUpdated means there is state to walk and it may have
	// changed since it was last inspected.
	StateInspectableUpdated
	// StateInspectableUnchanged means there is state, but the application
	// layer has not advanced since the last Continue Path call.
	StateInspectableUnchanged
)

// HasInspectableState reports whether flow/dir carries any continuation
// state worth walking, and if so whether the application layer has moved
// since the stored alversion stamp (spec.md §6).
func (e *Engine) HasInspectableState(flow detect.Flow, dir sigflags.Direction, alversion uint64) InspectState {
	if !hasAnyDetectState(flow, dir) {
		return StateNone
	}
	if !flow.EndOfFlow() && flow.DirectionVersion(dir) == alversion {
		return StateInspectableUnchanged
	}
	return StateInspectableUpdated
}

func hasAnyDetectState(flow detect.Flow, dir sigflags.Direction) bool {
	if fds := flow.FlowDetectState(); fds != nil && fds.Store(dir).Len() > 0 {
		return true
	}

	parser := flow.Parser()
	if parser == nil || !parser.SupportsTxDetectState() {
		return false
	}
	count := parser.GetTxCount()
	for id := parser.GetInspectID(dir); id < count; id++ {
		tx, ok := parser.GetTx(id)
		if !ok {
			continue
		}
		if state, ok := parser.GetTxDetectState(tx); ok && state != nil && state.Store(dir).Len() > 0 {
			return true
		}
	}
	return false
}

// ContinueResult summarizes one ContinueDetection call.
type ContinueResult struct {
	// Alerted is true if any record produced an alert this pass.
	Alerted bool
	// NoNewState lists, in the order encountered, the signature IDs whose
	// records produced nothing new this pass, a signal the (out-of-scope)
	// first-pass matcher can use to stop re-selecting them for this flow.
	NoNewState []int
}

// ContinueDetection runs the Continue Path (spec.md §4.4): replays stored
// progress for flow/dir against the current packet, only re-invoking
// engines that have not yet been decided.
func (e *Engine) ContinueDetection(tc *detect.ThreadCtx, flow detect.Flow, pkt detect.Packet, dir sigflags.Direction, lookup detect.EngineLookup, alversion uint64) ContinueResult {
	var result ContinueResult

	if !flow.EndOfFlow() && flow.DirectionVersion(dir) == alversion {
		// No new application-layer state since the last pass: nothing to do
		// (spec.md §4.4 step 1, testable property 4).
		return result
	}

	if parser := flow.Parser(); parser != nil {
		e.continueDetectionTransactions(tc, flow, pkt, dir, lookup, parser, &result)
	}

	if fds := flow.FlowDetectState(); fds != nil {
		fds.Store(dir).ForEach(func(_ int, rec *detect.FlowProgressRecord) bool {
			sig, ok := e.Rules.Signature(rec.SigID)
			if !ok {
				return true
			}
			if e.doInspectFlowRule(tc, flow, pkt, dir, sig, rec, &result) {
				result.NoNewState = append(result.NoNewState, sig.ID())
			}
			return true
		})
	}

	flow.SetDirectionVersion(dir, alversion)
	return result
}

func (e *Engine) continueDetectionTransactions(tc *detect.ThreadCtx, flow detect.Flow, pkt detect.Packet, dir sigflags.Direction, lookup detect.EngineLookup, parser detect.ApplicationLayerParser, result *ContinueResult) {
	txCount := parser.GetTxCount()
	completion := parser.GetCompletionStatus(dir)
	cursor := parser.GetInspectID(dir)
	newCursor := cursor

	for id := cursor; id < txCount; id++ {
		tx, ok := parser.GetTx(id)
		if !ok {
			continue
		}

		isLastTx := id == txCount-1
		inProgress := parser.GetStateProgress(tx, dir) < completion
		nextTxNoProgress := true
		if nextTx, ok := parser.GetTx(id + 1); ok {
			nextTxNoProgress = parser.GetStateProgress(nextTx, dir) == 0
		}

		if state, ok := parser.GetTxDetectState(tx); ok && state != nil {
			state.Store(dir).ForEach(func(_ int, rec *detect.ProgressRecord) bool {
				sig, ok := e.Rules.Signature(rec.SigID)
				if !ok {
					return true
				}
				if e.doInspectItem(tc, flow, pkt, tx, id, dir, lookup, sig, rec, state, isLastTx, inProgress, nextTxNoProgress, result) {
					result.NoNewState = append(result.NoNewState, sig.ID())
				}
				return true
			})
		}

		if inProgress {
			// spec.md §4.4 step 2: records in an in-progress transaction are
			// evaluated, but the cursor does not cross into later
			// transactions in the same call.
			newCursor = id
			break
		}
		newCursor = id + 1
	}

	if newCursor != cursor {
		e.UpdateInspectTransactionId(flow, dir, newCursor)
	}
}

// doInspectItem implements spec.md §4.4's DoInspectItem for one
// transaction-scoped progress record. It returns true if this pass produced
// nothing new for the record's signature: either the transaction is the
// last one visible, it is still in progress (so a future packet may still
// move it forward even though this pass didn't), or the next transaction
// has not itself made any progress yet.
func (e *Engine) doInspectItem(tc *detect.ThreadCtx, flow detect.Flow, pkt detect.Packet, tx detect.Transaction, txID uint64, dir sigflags.Direction, lookup detect.EngineLookup, sig detect.Signature, rec *detect.ProgressRecord, state *detect.TxDetectState, isLastTx bool, inProgress bool, nextTxNoProgress bool, result *ContinueResult) bool {
	reopened := false
	if rec.Flags.Has(sigflags.FullInspect) {
		if !reconsiderOnNewFile(rec, state, sigflags.FullInspect) {
			return isLastTx || inProgress || nextTxNoProgress
		}
		reopened = true
	} else if rec.Flags.Has(sigflags.SigCantMatch) {
		if !reconsiderOnNewFile(rec, state, sigflags.SigCantMatch) {
			return isLastTx || inProgress || nextTxNoProgress
		}
		reopened = true
	}
	if reopened {
		// A new file arrived since this record settled, putting it back
		// into the actively tracked set until it is decided again.
		e.Metrics.RecordPark("continue")
	}

	dres := dispatch.Run(sig, lookup, flow, tx, txID, dir, rec.Flags)
	rec.Flags = dres.Flags
	if dres.Flags.Has(sigflags.FullInspect) {
		e.Metrics.RecordUnpark()
	}

	if dres.FileNoMatch {
		e.noteFileNoMatch(flow.Parser(), flow, tx, txID, dir)
	}

	if dres.Outcome == sigflags.OutcomeAlert {
		txIDCopy := txID
		dispatch.Alert(sig, e.Alerts, &txIDCopy, detect.AnnotationStateMatch|detect.AnnotationTX, pkt)
		e.Metrics.RecordAlert("tx")
		runPostMatchLocked(tc, flow, sig, &txIDCopy)
		result.Alerted = true
	}

	e.FlowVars.ProcessFlowvarList(tc, flow)

	return isLastTx || inProgress || nextTxNoProgress
}

// reconsiderOnNewFile clears the given decided-bit and the record's
// filestore engine bit if a new file has arrived in the matching direction
// since the record settled, forcing the next Dispatcher call to
// re-evaluate that engine (spec.md §4.4 DoInspectItem, testable property 6).
// It reports whether the record was reopened.
func reconsiderOnNewFile(rec *detect.ProgressRecord, state *detect.TxDetectState, decidedBit sigflags.InspectFlags) bool {
	reopened := false
	for _, dir := range [2]sigflags.Direction{sigflags.ToServer, sigflags.ToClient} {
		filestoreBit := sigflags.FileInspectBitFor(dir)
		if rec.Flags.Has(filestoreBit) && state.Flags(dir).Has(sigflags.NewFileBitFor(dir)) {
			rec.Flags = rec.Flags.Clear(filestoreBit).Clear(decidedBit)
			reopened = true
		}
	}
	return reopened
}

// doInspectFlowRule implements spec.md §4.4's DoInspectFlowRule for one
// flow-scoped progress record. It always returns true: a flow-scoped record
// publishes "no new state" after every pass regardless of outcome.
func (e *Engine) doInspectFlowRule(tc *detect.ThreadCtx, flow detect.Flow, pkt detect.Packet, dir sigflags.Direction, sig detect.Signature, rec *detect.FlowProgressRecord, result *ContinueResult) bool {
	if rec.Flags.Has(sigflags.FullInspect) || rec.Flags.Has(sigflags.SigCantMatch) {
		return true
	}

	prog, ok := e.resolveGenericFlowProgram(sig)
	if !ok {
		return true
	}

	ctx := &GenericFlowContext{Flow: flow, Direction: dir, Packet: pkt, ThreadCtx: tc}
	runResult := prog.Run(ctx, rec.Cursor)

	switch runResult.Outcome {
	case sigflags.OutcomePark:
		rec.Cursor = runResult.Cursor
	case sigflags.OutcomeAlert:
		rec.Flags = rec.Flags.Set(sigflags.FullInspect)
		e.Metrics.RecordUnpark()
		dispatch.Alert(sig, e.Alerts, nil, detect.AnnotationStateMatch, pkt)
		e.Metrics.RecordAlert("state-match")
		runPostMatchLocked(tc, flow, sig, nil)
		result.Alerted = true
	case sigflags.OutcomeNoMatch:
		rec.Flags = rec.Flags.Set(sigflags.FullInspect).Set(sigflags.SigCantMatch)
		e.Metrics.RecordUnpark()
	}

	e.FlowVars.ProcessFlowvarList(tc, flow)
	return true
}

// UpdateInspectTransactionId advances parser's inspect cursor for dir
// (spec.md §6), called once the core has decided every record up to id is
// fully resolved.
func (e *Engine) UpdateInspectTransactionId(flow detect.Flow, dir sigflags.Direction, id uint64) {
	if parser := flow.Parser(); parser != nil {
		parser.SetInspectID(dir, id)
	}
}
