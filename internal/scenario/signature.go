package scenario

import (
	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/genericflow"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// httpSignature is a loaded rule over the fields HTTPTransaction exposes.
// None of these rules use a generic flow program or a DCE pattern set: the
// scenarios this package drives are all transaction-scoped.
type httpSignature struct {
	id             int
	kinds          []sigflags.EngineKind
	fileInterested bool
	noAlert        bool

	method   string // EngineMethod: exact match against tx.method
	uri      string // EngineURI: substring match against tx.uri
	header   string // EngineHeader: substring match against tx.headerText
	cookie   string // EngineCookie: substring match against tx.headerText
	filename string // EngineFilename: exact match against tx.fileName

	actionsRun    int
	postMatchRuns int
}

func (s *httpSignature) ID() int                           { return s.id }
func (s *httpSignature) EngineKinds() []sigflags.EngineKind { return s.kinds }
func (s *httpSignature) IsFileInterested() bool             { return s.fileInterested }
func (s *httpSignature) NoAlert() bool                      { return s.noAlert }

func (s *httpSignature) GenericFlowProgram() (*genericflow.Program, bool) { return nil, false }
func (s *httpSignature) DCEPatternSet() (*genericflow.PatternSet, bool)   { return nil, false }

func (s *httpSignature) ApplyActions(pkt detect.Packet) { s.actionsRun++ }

// RunPostMatchActions marks the transaction's file as stored once a
// file-interested signature confirms a match, mirroring the "filestore"
// keyword's positive-match side effect.
func (s *httpSignature) RunPostMatchActions(tc *detect.ThreadCtx, flow detect.Flow, txID *uint64) {
	s.postMatchRuns++
	if !s.fileInterested || txID == nil {
		return
	}
	parser := flow.Parser()
	if parser == nil {
		return
	}
	txIface, ok := parser.GetTx(*txID)
	if !ok {
		return
	}
	txIface.(*HTTPTransaction).fileStored = true
}

// cantMatchFor picks CantMatch or CantMatchFilestore depending on whether
// sig counts toward the File-Store Arbiter (spec.md §4.2).
func cantMatchFor(s *httpSignature) sigflags.Verdict {
	if s.fileInterested {
		return sigflags.CantMatchFilestore
	}
	return sigflags.CantMatch
}
