package scenario

import (
	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/engine"
	"github.com/Schnaffon/suricata/detect/metrics"
	"github.com/Schnaffon/suricata/detect/sigflags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// AlertRecord is one alert the Driver's queue captured.
type AlertRecord struct {
	SigID      int
	TxID       *uint64
	Annotation detect.AlertAnnotation
}

type recordingAlertQueue struct {
	alerts []AlertRecord
}

func (q *recordingAlertQueue) Append(sig detect.Signature, txID *uint64, annotation detect.AlertAnnotation) {
	var copied *uint64
	if txID != nil {
		v := *txID
		copied = &v
	}
	q.alerts = append(q.alerts, AlertRecord{SigID: sig.ID(), TxID: copied, Annotation: annotation})
}

type fileSubsystem struct {
	parser *HTTPParser
}

func (f *fileSubsystem) DisableStoringForTransaction(flow detect.Flow, dir sigflags.Direction, txID uint64) {
	tx, ok := f.parser.GetTx(txID)
	if !ok {
		return
	}
	tx.(*HTTPTransaction).fileNoStore = true
}

type noopFlowVars struct{}

func (noopFlowVars) ProcessFlowvarList(tc *detect.ThreadCtx, flow detect.Flow) {}

type staticRuleSet struct {
	sigs           map[int]detect.Signature
	fileInterested int
	generation     uint64
}

func newStaticRuleSet(sigs ...*httpSignature) *staticRuleSet {
	rs := &staticRuleSet{sigs: map[int]detect.Signature{}, generation: 1}
	for _, s := range sigs {
		rs.sigs[s.id] = s
		if s.fileInterested {
			rs.fileInterested++
		}
	}
	return rs
}

func (rs *staticRuleSet) Signature(sid int) (detect.Signature, bool) {
	s, ok := rs.sigs[sid]
	return s, ok
}

func (rs *staticRuleSet) FileInterestedSignatureCount() int { return rs.fileInterested }
func (rs *staticRuleSet) Generation() uint64                { return rs.generation }

// Driver wires one Engine, one flow and one rule set together and feeds
// Chunks through Start/Continue Detection the way the out-of-scope
// packet-processing loop and first-pass matcher would in production: every
// loaded signature is offered to the Start Path the first time a
// transaction it hasn't yet seen becomes visible, and every packet runs the
// Continue Path once, for the packet's own direction, to replay whatever got
// parked.
//
// The "first time a new transaction becomes visible" bookkeeping below is a
// simplification of the real first-pass matcher's candidate selection,
// which is explicitly out of scope; it is sufficient for the sequential,
// one-transaction-at-a-time traffic these scenarios model.
type Driver struct {
	Engine *engine.Engine
	Flow   *HTTPFlow
	Alerts *recordingAlertQueue

	sigs        []*httpSignature
	lookup      detect.EngineLookup
	tc          detect.ThreadCtx
	alversion   [2]uint64
	startedUpTo map[int]uint64
}

// NewDriver builds a Driver over the given signatures, all active from
// packet one, with a private metrics registry.
func NewDriver(sigs ...*httpSignature) *Driver {
	return NewDriverWithRegistry(prometheus.NewRegistry(), sigs...)
}

// NewDriverWithRegistry is NewDriver, registering the engine's metrics on
// reg instead of a private registry, used by cmd/detectsim so a scenario
// run's counters land on the registry its /metrics endpoint serves.
func NewDriverWithRegistry(reg prometheus.Registerer, sigs ...*httpSignature) *Driver {
	flow := NewHTTPFlow()
	alerts := &recordingAlertQueue{}
	rules := newStaticRuleSet(sigs...)
	files := &fileSubsystem{parser: flow.parser}
	rec, _ := metrics.NewRecorder(reg)

	d := &Driver{
		Engine:      engine.New(rules, alerts, files, noopFlowVars{}, rec, zerolog.Nop()),
		Flow:        flow,
		Alerts:      alerts,
		sigs:        sigs,
		lookup:      NewEngineLookup(),
		startedUpTo: map[int]uint64{},
	}
	return d
}

// Feed ingests one Chunk, offering newly-visible transactions to the Start
// Path for every signature that hasn't examined them yet, then runs the
// Continue Path for the chunk's direction.
func (d *Driver) Feed(c Chunk) {
	d.Flow.parser.Ingest(c)
	txCount := d.Flow.parser.GetTxCount()

	for _, sig := range d.sigs {
		if txCount > d.startedUpTo[sig.id] {
			d.Engine.StartDetection(&d.tc, d.Flow, nil, sig, d.lookup, c.Dir)
			d.startedUpTo[sig.id] = txCount
		}
	}

	d.alversion[c.Dir]++
	d.Engine.ContinueDetection(&d.tc, d.Flow, nil, c.Dir, d.lookup, d.alversion[c.Dir])
}

// Transaction returns the transaction at id, if it exists.
func (d *Driver) Transaction(id uint64) *HTTPTransaction {
	tx, ok := d.Flow.parser.GetTx(id)
	if !ok {
		return nil
	}
	return tx.(*HTTPTransaction)
}

// TransactionCount returns how many transactions the flow has seen so far.
func (d *Driver) TransactionCount() uint64 { return d.Flow.parser.GetTxCount() }

// AlertRecords returns every alert raised so far, in the order they fired.
func (d *Driver) AlertRecords() []AlertRecord { return d.Alerts.alerts }

// TransactionSummary reports the file-store outcome of one transaction, for
// CLI/diagnostic output.
type TransactionSummary struct {
	ID          uint64
	Method      string
	URI         string
	FileName    string
	FileStored  bool
	FileNoStore bool
}

// TransactionSummaries returns a summary for every transaction seen so far.
func (d *Driver) TransactionSummaries() []TransactionSummary {
	count := d.TransactionCount()
	out := make([]TransactionSummary, 0, count)
	for id := uint64(0); id < count; id++ {
		tx := d.Transaction(id)
		out = append(out, TransactionSummary{
			ID: id, Method: tx.method, URI: tx.uri, FileName: tx.fileName,
			FileStored: tx.fileStored, FileNoStore: tx.fileNoStore,
		})
	}
	return out
}
