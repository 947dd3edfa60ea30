// Package dispatch implements the Inspection Dispatcher (spec.md §4.2): it
// drives a signature's declared inspection engines in order, folds their
// verdicts into an inspect-flags bitmap, and decides alert / no-alert / park.
//
// Both the Start Path and the Continue Path call Run; they differ only in
// what flags they start from and what they do with the result.
package dispatch

import (
	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// Result is the outcome of one Dispatcher pass.
type Result struct {
	// Flags is the updated inspect-flags bitmap: startFlags plus whatever
	// this pass decided.
	Flags sigflags.InspectFlags
	// Outcome is OutcomeAlert, OutcomeNoMatch, or OutcomePark.
	Outcome sigflags.Outcome
	// FileNoMatch is true if an engine returned CantMatchFilestore this
	// pass, for the File-Store Arbiter to count.
	FileNoMatch bool
}

// Run invokes sig's inspection engines, in sig's declared order, skipping
// any whose bit is already set in startFlags (spec.md §4.2).
func Run(sig detect.Signature, lookup detect.EngineLookup, flow detect.Flow, tx detect.Transaction, txID uint64, dir sigflags.Direction, startFlags sigflags.InspectFlags) Result {
	flags := startFlags
	totalMatches := 0
	fileNoMatch := false
	decided := false
	needsMore := false

	kinds := sig.EngineKinds()
loop:
	for _, kind := range kinds {
		bit := kind.Bit()
		if flags.Has(bit) {
			continue
		}

		engine, ok := lookup.Engine(kind)
		if !ok {
			// No engine registered for this protocol/direction/kind:
			// conservatively treat as not-yet-decidable (spec.md §7).
			needsMore = true
			break loop
		}

		switch engine.Inspect(sig, flow, tx, txID, dir) {
		case sigflags.Match:
			flags = flags.Set(bit)
			totalMatches++
		case sigflags.CantMatch:
			flags = flags.Set(bit).Set(sigflags.SigCantMatch)
			decided = true
			break loop
		case sigflags.CantMatchFilestore:
			flags = flags.Set(bit).Set(sigflags.SigCantMatch)
			fileNoMatch = true
			decided = true
			break loop
		default:
			// NeedsMoreData, or an unrecognized verdict (spec.md §7: treat
			// conservatively as NeedsMoreData).
			needsMore = true
			break loop
		}
	}

	switch {
	case decided:
		return Result{Flags: flags.Set(sigflags.FullInspect), Outcome: sigflags.OutcomeNoMatch, FileNoMatch: fileNoMatch}
	case needsMore:
		return Result{Flags: flags, Outcome: sigflags.OutcomePark}
	case totalMatches > 0:
		return Result{Flags: flags.Set(sigflags.FullInspect), Outcome: sigflags.OutcomeAlert}
	default:
		return Result{Flags: flags.Set(sigflags.FullInspect), Outcome: sigflags.OutcomeNoMatch}
	}
}

// Alert reports an alert through q, respecting the signature's no-alert
// attribute (spec.md §4.2 "Alerting policy"): a no-alert signature still
// applies its packet actions but never enqueues an alert.
func Alert(sig detect.Signature, q detect.AlertQueue, txID *uint64, annotation detect.AlertAnnotation, pkt detect.Packet) {
	if sig.NoAlert() {
		sig.ApplyActions(pkt)
		return
	}
	q.Append(sig, txID, annotation)
}
