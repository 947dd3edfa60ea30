package engine

import (
	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// noteFileNoMatch implements the File-Store Arbiter (spec.md §4.5): it
// records that one more file-interested signature has given up on tx/dir,
// and disables storage for that transaction/direction the moment every
// file-interested signature in the rule group has done so.
func (e *Engine) noteFileNoMatch(parser detect.ApplicationLayerParser, flow detect.Flow, tx detect.Transaction, txID uint64, dir sigflags.Direction) {
	state := e.txDetectState(parser, tx, true)
	state.IncFilestoreCount(dir, 1)

	total := e.Rules.FileInterestedSignatureCount()
	if total <= 0 || state.FilestoreCount(dir) < total {
		return
	}
	if state.Flags(dir).Has(sigflags.FileStoreDisabled) {
		return
	}

	state.SetFlags(dir, state.Flags(dir).Set(sigflags.FileStoreDisabled))
	e.Files.DisableStoringForTransaction(flow, dir, txID)
	e.Metrics.RecordFileStoreDisabled()
}
