package engine

import (
	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/dispatch"
	"github.com/Schnaffon/suricata/detect/genericflow"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// StartDetection runs the Start Path (spec.md §4.3): a signature is being
// considered against flow for the first time this packet. It returns
// whether an alert fired.
func (e *Engine) StartDetection(tc *detect.ThreadCtx, flow detect.Flow, pkt detect.Packet, sig detect.Signature, lookup detect.EngineLookup, dir sigflags.Direction) bool {
	alerted := false

	if parser := flow.Parser(); parser != nil {
		if e.startDetectionTransactions(tc, flow, pkt, sig, lookup, dir, parser) {
			alerted = true
		}
	}

	if prog, ok := e.resolveGenericFlowProgram(sig); ok {
		if e.startDetectionGenericFlow(tc, flow, pkt, sig, dir, prog) {
			alerted = true
		}
	}

	if e.startDetectionDCEPayload(flow, pkt, sig, dir) {
		alerted = true
	}

	return alerted
}

func (e *Engine) startDetectionTransactions(tc *detect.ThreadCtx, flow detect.Flow, pkt detect.Packet, sig detect.Signature, lookup detect.EngineLookup, dir sigflags.Direction, parser detect.ApplicationLayerParser) bool {
	alerted := false
	txCount := parser.GetTxCount()
	completion := parser.GetCompletionStatus(dir)

	for id := parser.GetInspectID(dir); id < txCount; id++ {
		tx, ok := parser.GetTx(id)
		if !ok {
			// spec.md §7: parser advertised this id but has no object for it
			// yet; treat as "parser caught up later" and move on.
			continue
		}

		result := dispatch.Run(sig, lookup, flow, tx, id, dir, 0)

		isLastVisible := id == txCount-1
		isComplete := parser.GetStateProgress(tx, dir) >= completion

		if result.Outcome == sigflags.OutcomeAlert {
			alerted = true
			txID := id
			dispatch.Alert(sig, e.Alerts, &txID, detect.AnnotationStateMatch|detect.AnnotationTX, pkt)
			e.Metrics.RecordAlert("state-match")
			runPostMatchLocked(tc, flow, sig, &txID)
		}

		if result.FileNoMatch {
			e.noteFileNoMatch(parser, flow, tx, id, dir)
		}

		// A transaction that is both the last currently visible one and
		// already complete will never be revisited, so there is nothing to
		// gain from parking regardless of how decisive this pass was
		// (spec.md §4.3 step 1).
		if !(isLastVisible && isComplete) {
			e.parkTxRecord(parser, tx, sig.ID(), dir, result.Flags)
		}
	}

	return alerted
}

func (e *Engine) parkTxRecord(parser detect.ApplicationLayerParser, tx detect.Transaction, sigID int, dir sigflags.Direction, flags sigflags.InspectFlags) {
	state := e.txDetectState(parser, tx, true)
	state.Store(dir).Append(detect.ProgressRecord{SigID: sigID, Flags: flags})
	e.Metrics.RecordPark("start")
	if flags.Has(sigflags.FullInspect) {
		// This pass already decided the record; it leaves the actively
		// tracked set the moment it is stored.
		e.Metrics.RecordUnpark()
	}
}

// startDetectionGenericFlow runs sig's generic flow-match program from the
// beginning and parks a flow-scoped record reflecting where it left off
// (spec.md §4.3 step 2): a cursor if it suspended, or FULL_INSPECT (plus
// SIG_CANT_MATCH on a definitive non-match) if it ran to completion. Unlike
// the transaction path, a flow-scoped record is always parked here: nothing
// about "last and complete" applies, since the flow itself is the only
// anchor this record has.
func (e *Engine) startDetectionGenericFlow(tc *detect.ThreadCtx, flow detect.Flow, pkt detect.Packet, sig detect.Signature, dir sigflags.Direction, prog *genericflow.Program) bool {
	ctx := &GenericFlowContext{Flow: flow, Direction: dir, Packet: pkt, ThreadCtx: tc}
	result := prog.Run(ctx, sigflags.Cursor{})

	rec := detect.FlowProgressRecord{SigID: sig.ID()}
	alerted := false

	switch result.Outcome {
	case sigflags.OutcomePark:
		rec.Cursor = result.Cursor
	case sigflags.OutcomeAlert:
		rec.Flags = sigflags.InspectFlags(0).Set(sigflags.FullInspect)
		alerted = true
		dispatch.Alert(sig, e.Alerts, nil, detect.AnnotationStateMatch, pkt)
		e.Metrics.RecordAlert("state-match")
		runPostMatchLocked(tc, flow, sig, nil)
	case sigflags.OutcomeNoMatch:
		rec.Flags = sigflags.InspectFlags(0).Set(sigflags.FullInspect).Set(sigflags.SigCantMatch)
	}

	fds := flow.FlowDetectState()
	if fds == nil {
		fds = detect.NewFlowDetectState()
		flow.SetFlowDetectState(fds)
	}
	fds.Store(dir).Append(rec)
	e.Metrics.RecordPark("start")
	if rec.Flags.Has(sigflags.FullInspect) {
		e.Metrics.RecordUnpark()
	}

	return alerted
}

// startDetectionDCEPayload runs sig's single-shot DCE-payload matcher, if
// both the signature and the flow's current application state offer one
// (spec.md §4.3 step 3). There is no parking for this path: it either
// decides now or never runs again for this signature on this flow.
func (e *Engine) startDetectionDCEPayload(flow detect.Flow, pkt detect.Packet, sig detect.Signature, dir sigflags.Direction) bool {
	payload, ok := flow.DCEPayload(dir)
	if !ok {
		return false
	}
	patterns, ok := e.resolveDCEPatternSet(sig)
	if !ok {
		return false
	}
	if !patterns.MatchAny(payload) {
		return false
	}

	dispatch.Alert(sig, e.Alerts, nil, detect.AnnotationFresh, pkt)
	e.Metrics.RecordAlert("dce")
	return true
}
