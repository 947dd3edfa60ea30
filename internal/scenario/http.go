// Package scenario is a small, self-contained HTTP-shaped application layer
// used to exercise the continuation engine end to end. It is not a protocol
// parser: wire parsing is explicitly out of scope for the core (spec.md §1),
// so transactions are built directly from structured Chunk values rather
// than from raw bytes, the same way a unit test for the core would stand up
// a fake parser.
package scenario

import (
	"strings"

	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// Chunk is one packet's worth of application-layer progress for a flow. A
// scenario is a sequence of Chunks.
type Chunk struct {
	Dir         sigflags.Direction
	TxID        uint64
	Method      string
	URI         string
	HeaderLines []string
	BodyBytes   int
	BodyTotal   int
	FileName    string
	FileBytes   int
	FileTotal   int
	Complete    bool
}

// HTTPTransaction is one request/response unit. Fields are filled in
// incrementally as Chunks arrive, mirroring how a real parser would
// populate a transaction object across packets.
type HTTPTransaction struct {
	id                uint64
	method            string
	uri               string
	headerText        strings.Builder
	bodyReceived      int
	bodyTotal         int
	fileName          string
	fileBytesReceived int
	fileTotal         int
	complete          bool
	fileStored        bool
	fileNoStore       bool

	detectState *detect.TxDetectState
}

// ID implements detect.Transaction.
func (t *HTTPTransaction) ID() uint64 { return t.id }

// HTTPParser is a minimal detect.ApplicationLayerParser over HTTPTransactions.
type HTTPParser struct {
	txs       []*HTTPTransaction
	inspectID [2]uint64
}

// NewHTTPParser returns an empty parser.
func NewHTTPParser() *HTTPParser { return &HTTPParser{} }

// Ingest applies one Chunk's worth of progress, creating the transaction it
// targets if this is the first Chunk to reference it.
func (p *HTTPParser) Ingest(c Chunk) *HTTPTransaction {
	for uint64(len(p.txs)) <= c.TxID {
		p.txs = append(p.txs, &HTTPTransaction{id: uint64(len(p.txs))})
	}
	tx := p.txs[c.TxID]

	if c.Method != "" {
		tx.method = c.Method
		tx.uri = c.URI
	}
	for _, h := range c.HeaderLines {
		tx.headerText.WriteString(h)
		tx.headerText.WriteByte('\n')
	}
	if c.BodyTotal > 0 {
		tx.bodyTotal = c.BodyTotal
	}
	tx.bodyReceived += c.BodyBytes
	if c.FileName != "" {
		tx.fileName = c.FileName
	}
	if c.FileTotal > 0 {
		tx.fileTotal = c.FileTotal
	}
	tx.fileBytesReceived += c.FileBytes

	if c.Complete || (tx.bodyTotal > 0 && tx.bodyReceived >= tx.bodyTotal) {
		tx.complete = true
	}
	return tx
}

func (p *HTTPParser) GetTxCount() uint64 { return uint64(len(p.txs)) }

func (p *HTTPParser) GetTx(id uint64) (detect.Transaction, bool) {
	if id >= uint64(len(p.txs)) {
		return nil, false
	}
	return p.txs[id], true
}

func (p *HTTPParser) GetInspectID(dir sigflags.Direction) uint64     { return p.inspectID[dir] }
func (p *HTTPParser) SetInspectID(dir sigflags.Direction, id uint64) { p.inspectID[dir] = id }

func (p *HTTPParser) GetStateProgress(tx detect.Transaction, dir sigflags.Direction) int {
	if tx.(*HTTPTransaction).complete {
		return 1
	}
	return 0
}

func (p *HTTPParser) GetCompletionStatus(dir sigflags.Direction) int { return 1 }

func (p *HTTPParser) SupportsTxDetectState() bool { return true }

func (p *HTTPParser) GetTxDetectState(tx detect.Transaction) (*detect.TxDetectState, bool) {
	t := tx.(*HTTPTransaction)
	if t.detectState == nil {
		return nil, false
	}
	return t.detectState, true
}

func (p *HTTPParser) SetTxDetectState(tx detect.Transaction, state *detect.TxDetectState) {
	tx.(*HTTPTransaction).detectState = state
}

// HTTPFlow is a minimal detect.Flow wrapping one HTTPParser.
type HTTPFlow struct {
	parser  *HTTPParser
	fds     *detect.FlowDetectState
	version [2]uint64
	eof     bool
}

// NewHTTPFlow returns a flow backed by a fresh parser.
func NewHTTPFlow() *HTTPFlow { return &HTTPFlow{parser: NewHTTPParser()} }

func (f *HTTPFlow) Parser() detect.ApplicationLayerParser { return f.parser }

func (f *HTTPFlow) FlowDetectState() *detect.FlowDetectState { return f.fds }
func (f *HTTPFlow) SetFlowDetectState(s *detect.FlowDetectState) { f.fds = s }

func (f *HTTPFlow) DirectionVersion(dir sigflags.Direction) uint64 { return f.version[dir] }
func (f *HTTPFlow) SetDirectionVersion(dir sigflags.Direction, v uint64) {
	f.version[dir] = v
}

// DCEPayload is never available: this scenario package models HTTP only.
func (f *HTTPFlow) DCEPayload(dir sigflags.Direction) ([]byte, bool) { return nil, false }

func (f *HTTPFlow) EndOfFlow() bool { return f.eof }

// MarkEndOfFlow marks the flow as torn down.
func (f *HTTPFlow) MarkEndOfFlow() { f.eof = true }
