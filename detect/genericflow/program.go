// Package genericflow implements the resumable generic flow-match program
// used by legacy, message-oriented protocol matchers (SMB/DCERPC-style) and
// the DCE-payload single-shot matcher (spec.md §4.3.2, §4.3.3).
//
// It depends only on detect/sigflags so that the detect core package can
// depend on it without creating an import cycle.
package genericflow

import "github.com/Schnaffon/suricata/detect/sigflags"

// EvalContext is opaque to the program; the caller (detect/engine) supplies a
// concrete context carrying whatever the instructions need (flow state, the
// current packet bytes, and so on).
type EvalContext interface{}

// Instruction is one step of a signature's generic flow-match program.
type Instruction interface {
	Eval(ctx EvalContext) sigflags.Verdict
}

// InstructionFunc adapts a function to the Instruction interface.
type InstructionFunc func(ctx EvalContext) sigflags.Verdict

// Eval implements Instruction.
func (f InstructionFunc) Eval(ctx EvalContext) sigflags.Verdict {
	return f(ctx)
}

// Program is an ordered list of instructions. Running it to completion with at
// least one Match and no CantMatch is a signature match (spec.md §4.3.2,
// §4.4 DoInspectFlowRule).
type Program struct {
	Instructions []Instruction
}

// RunResult summarizes one Run call.
type RunResult struct {
	// Outcome is OutcomeAlert, OutcomeNoMatch, or OutcomePark.
	Outcome sigflags.Outcome
	// Cursor is where to resume on the next packet, valid only when Outcome is OutcomePark.
	Cursor sigflags.Cursor
}

// Run executes the program starting at cursor.InstructionIndex, stopping at
// the first CantMatch or NeedsMoreData, or after the last instruction.
func (p *Program) Run(ctx EvalContext, cursor sigflags.Cursor) RunResult {
	totalMatches := 0
	i := cursor.InstructionIndex
	for ; i < len(p.Instructions); i++ {
		switch p.Instructions[i].Eval(ctx) {
		case sigflags.Match:
			totalMatches++
			continue
		case sigflags.CantMatch, sigflags.CantMatchFilestore:
			return RunResult{Outcome: sigflags.OutcomeNoMatch}
		case sigflags.NeedsMoreData:
			return RunResult{Outcome: sigflags.OutcomePark, Cursor: sigflags.Cursor{InstructionIndex: i}}
		default:
			// Unrecognized verdict: conservatively park (spec.md §7).
			return RunResult{Outcome: sigflags.OutcomePark, Cursor: sigflags.Cursor{InstructionIndex: i}}
		}
	}

	if totalMatches > 0 {
		return RunResult{Outcome: sigflags.OutcomeAlert}
	}
	return RunResult{Outcome: sigflags.OutcomeNoMatch}
}
