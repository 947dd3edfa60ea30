package scenario

import (
	"strings"

	"github.com/Schnaffon/suricata/detect"
	"github.com/Schnaffon/suricata/detect/sigflags"
)

// The engines below each own one EngineKind and read their match target
// straight off the httpSignature they're called with, the same way a real
// inspection engine reads a signature's own content list rather than
// carrying rule-specific state itself.

type methodEngine struct{}

func (methodEngine) Kind() sigflags.EngineKind { return sigflags.EngineMethod }

func (methodEngine) Inspect(sigIface detect.Signature, flow detect.Flow, txIface detect.Transaction, txID uint64, dir sigflags.Direction) sigflags.Verdict {
	s := sigIface.(*httpSignature)
	tx := txIface.(*HTTPTransaction)
	if tx.method == "" {
		return sigflags.NeedsMoreData
	}
	if tx.method == s.method {
		return sigflags.Match
	}
	return cantMatchFor(s)
}

type uriEngine struct{}

func (uriEngine) Kind() sigflags.EngineKind { return sigflags.EngineURI }

func (uriEngine) Inspect(sigIface detect.Signature, flow detect.Flow, txIface detect.Transaction, txID uint64, dir sigflags.Direction) sigflags.Verdict {
	s := sigIface.(*httpSignature)
	tx := txIface.(*HTTPTransaction)
	if tx.uri == "" {
		return sigflags.NeedsMoreData
	}
	if strings.Contains(tx.uri, s.uri) {
		return sigflags.Match
	}
	return cantMatchFor(s)
}

type headerEngine struct{}

func (headerEngine) Kind() sigflags.EngineKind { return sigflags.EngineHeader }

func (headerEngine) Inspect(sigIface detect.Signature, flow detect.Flow, txIface detect.Transaction, txID uint64, dir sigflags.Direction) sigflags.Verdict {
	s := sigIface.(*httpSignature)
	tx := txIface.(*HTTPTransaction)
	if strings.Contains(tx.headerText.String(), s.header) {
		return sigflags.Match
	}
	if tx.complete {
		return cantMatchFor(s)
	}
	return sigflags.NeedsMoreData
}

type cookieEngine struct{}

func (cookieEngine) Kind() sigflags.EngineKind { return sigflags.EngineCookie }

func (cookieEngine) Inspect(sigIface detect.Signature, flow detect.Flow, txIface detect.Transaction, txID uint64, dir sigflags.Direction) sigflags.Verdict {
	s := sigIface.(*httpSignature)
	tx := txIface.(*HTTPTransaction)
	if strings.Contains(tx.headerText.String(), s.cookie) {
		return sigflags.Match
	}
	if tx.complete {
		return cantMatchFor(s)
	}
	return sigflags.NeedsMoreData
}

type filenameEngine struct{}

func (filenameEngine) Kind() sigflags.EngineKind { return sigflags.EngineFilename }

func (filenameEngine) Inspect(sigIface detect.Signature, flow detect.Flow, txIface detect.Transaction, txID uint64, dir sigflags.Direction) sigflags.Verdict {
	s := sigIface.(*httpSignature)
	tx := txIface.(*HTTPTransaction)
	if tx.fileName != "" {
		if tx.fileName == s.filename {
			return sigflags.Match
		}
		return cantMatchFor(s)
	}
	if tx.complete {
		return cantMatchFor(s)
	}
	return sigflags.NeedsMoreData
}

// filestoreTSEngine stands in for the "filestore" keyword evaluated on the
// to-server side: it matches as soon as a file has been named, since that is
// the point at which Suricata has something to attach storage to.
type filestoreTSEngine struct{}

func (filestoreTSEngine) Kind() sigflags.EngineKind { return sigflags.EngineFilestoreTS }

func (filestoreTSEngine) Inspect(sigIface detect.Signature, flow detect.Flow, txIface detect.Transaction, txID uint64, dir sigflags.Direction) sigflags.Verdict {
	s := sigIface.(*httpSignature)
	tx := txIface.(*HTTPTransaction)
	if tx.fileName != "" {
		return sigflags.Match
	}
	if tx.complete {
		return cantMatchFor(s)
	}
	return sigflags.NeedsMoreData
}

// NewEngineLookup returns the fixed table of inspection engines this
// package's scenarios dispatch against.
func NewEngineLookup() detect.EngineLookup {
	return &staticLookup{
		engines: map[sigflags.EngineKind]detect.InspectionEngine{
			sigflags.EngineMethod:      methodEngine{},
			sigflags.EngineURI:         uriEngine{},
			sigflags.EngineHeader:      headerEngine{},
			sigflags.EngineCookie:      cookieEngine{},
			sigflags.EngineFilename:    filenameEngine{},
			sigflags.EngineFilestoreTS: filestoreTSEngine{},
		},
	}
}

type staticLookup struct {
	engines map[sigflags.EngineKind]detect.InspectionEngine
}

func (l *staticLookup) Engine(kind sigflags.EngineKind) (detect.InspectionEngine, bool) {
	e, ok := l.engines[kind]
	return e, ok
}
