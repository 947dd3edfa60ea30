package scenario

import (
	"github.com/Schnaffon/suricata/detect/sigflags"
	"github.com/prometheus/client_golang/prometheus"
)

// RuleSpec is the YAML-friendly description of one httpSignature, used by
// cmd/detectsim to load custom rule groups instead of the six built-in
// scenarios. Only the fields a rule actually sets need appear in the file;
// the zero value of each field means "this engine kind is not part of the
// rule".
type RuleSpec struct {
	ID        int    `yaml:"id"`
	Method    string `yaml:"method"`
	URI       string `yaml:"uri"`
	Header    string `yaml:"header"`
	Cookie    string `yaml:"cookie"`
	Filename  string `yaml:"filename"`
	Filestore bool   `yaml:"filestore"`
	NoAlert   bool   `yaml:"no_alert"`
}

// NewSignature builds the loaded-rule form of a RuleSpec.
func (s RuleSpec) NewSignature() *httpSignature {
	sig := &httpSignature{
		id:             s.ID,
		fileInterested: s.Filestore || s.Filename != "",
		noAlert:        s.NoAlert,
		method:         s.Method,
		uri:            s.URI,
		header:         s.Header,
		cookie:         s.Cookie,
		filename:       s.Filename,
	}

	if s.Method != "" {
		sig.kinds = append(sig.kinds, sigflags.EngineMethod)
	}
	if s.URI != "" {
		sig.kinds = append(sig.kinds, sigflags.EngineURI)
	}
	if s.Header != "" {
		sig.kinds = append(sig.kinds, sigflags.EngineHeader)
	}
	if s.Cookie != "" {
		sig.kinds = append(sig.kinds, sigflags.EngineCookie)
	}
	if s.Filename != "" {
		sig.kinds = append(sig.kinds, sigflags.EngineFilename)
	}
	if s.Filestore {
		sig.kinds = append(sig.kinds, sigflags.EngineFilestoreTS)
	}
	return sig
}

// ChunkSpec is the YAML-friendly form of Chunk. Dir is "to-server" (default)
// or "to-client".
type ChunkSpec struct {
	Dir         string   `yaml:"dir"`
	TxID        uint64   `yaml:"tx_id"`
	Method      string   `yaml:"method"`
	URI         string   `yaml:"uri"`
	HeaderLines []string `yaml:"header_lines"`
	BodyBytes   int      `yaml:"body_bytes"`
	BodyTotal   int      `yaml:"body_total"`
	FileName    string   `yaml:"file_name"`
	FileBytes   int      `yaml:"file_bytes"`
	FileTotal   int      `yaml:"file_total"`
	Complete    bool     `yaml:"complete"`
}

// Chunk converts c to the engine-facing Chunk type.
func (c ChunkSpec) Chunk() Chunk {
	dir := sigflags.ToServer
	if c.Dir == "to-client" {
		dir = sigflags.ToClient
	}
	return Chunk{
		Dir: dir, TxID: c.TxID,
		Method: c.Method, URI: c.URI,
		HeaderLines: c.HeaderLines,
		BodyBytes:   c.BodyBytes, BodyTotal: c.BodyTotal,
		FileName: c.FileName, FileBytes: c.FileBytes, FileTotal: c.FileTotal,
		Complete: c.Complete,
	}
}

// RuleGroupFile is the top-level shape of a YAML scenario file: a set of
// rules and the packet sequence to feed them.
type RuleGroupFile struct {
	Rules   []RuleSpec  `yaml:"rules"`
	Packets []ChunkSpec `yaml:"packets"`
}

// Run builds a Driver from f's rules, registering its metrics on reg, and
// feeds it f's packets in order, returning the driver so the caller can
// inspect alerts and transaction outcomes afterward.
func (f RuleGroupFile) Run(reg prometheus.Registerer) *Driver {
	sigs := make([]*httpSignature, 0, len(f.Rules))
	for _, r := range f.Rules {
		sigs = append(sigs, r.NewSignature())
	}
	d := NewDriverWithRegistry(reg, sigs...)
	for _, c := range f.Packets {
		d.Feed(c.Chunk())
	}
	return d
}
