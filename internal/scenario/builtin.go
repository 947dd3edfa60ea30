package scenario

import (
	"github.com/Schnaffon/suricata/detect/sigflags"
	"github.com/prometheus/client_golang/prometheus"
)

// BuiltinScenario is one of the six named end-to-end scenarios, runnable
// both from tests and from cmd/detectsim.
type BuiltinScenario struct {
	Name        string
	Description string
	Run         func(reg prometheus.Registerer) *Driver
}

// BuiltinScenarios returns all six scenarios in order.
func BuiltinScenarios() []BuiltinScenario {
	return []BuiltinScenario{
		{"S1", "HTTP header+cookie, late cookie arrival", RunS1},
		{"S2", "Pipelined requests", RunS2},
		{"S3", "Multipart upload, POST+uri+filestore", RunS3},
		{"S4", "Negative method", RunS4},
		{"S5", "Filename mismatch", RunS5},
		{"S6", "File across packets", RunS6},
	}
}

// RunS1 reproduces: method=POST ∧ header contains "Mozilla" ∧ cookie
// contains "dummy", fed "POST / HTTP/1.0\r\n", "User-Agent: Mozilla/1.0\r\n",
// "Cookie: dummy\r\nContent-Length: 10\r\n\r\n", then body "Http Body!".
// Expected: no alert on packet 1 or 2; alert on packet 3; no alert on packet 4.
func RunS1(reg prometheus.Registerer) *Driver {
	r1 := &httpSignature{
		id:     1,
		kinds:  []sigflags.EngineKind{sigflags.EngineMethod, sigflags.EngineHeader, sigflags.EngineCookie},
		method: "POST", header: "Mozilla", cookie: "dummy",
	}
	d := NewDriverWithRegistry(reg, r1)
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, Method: "POST", URI: "/"})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, HeaderLines: []string{"User-Agent: Mozilla/1.0"}})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, HeaderLines: []string{"Cookie: dummy"}, BodyTotal: 10})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, BodyBytes: 10})
	return d
}

// RunS2 continues RunS1's flow with a pipelined second request: R2 =
// method=GET ∧ header contains "Firefox" ∧ cookie contains "dummy2", fed
// "GET /?var=val HTTP/1.1\r\n", "User-Agent: Firefox/1.0\r\n",
// "Cookie: dummy2\r\nContent-Length: 10\r\n\r\nHttp Body!". Expected: R2
// alerts exactly on the final packet; R1 does not re-alert.
func RunS2(reg prometheus.Registerer) *Driver {
	r1 := &httpSignature{
		id:     1,
		kinds:  []sigflags.EngineKind{sigflags.EngineMethod, sigflags.EngineHeader, sigflags.EngineCookie},
		method: "POST", header: "Mozilla", cookie: "dummy",
	}
	r2 := &httpSignature{
		id:     2,
		kinds:  []sigflags.EngineKind{sigflags.EngineMethod, sigflags.EngineHeader, sigflags.EngineCookie},
		method: "GET", header: "Firefox", cookie: "dummy2",
	}
	d := NewDriverWithRegistry(reg, r1, r2)
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, Method: "POST", URI: "/"})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, HeaderLines: []string{"User-Agent: Mozilla/1.0"}})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, HeaderLines: []string{"Cookie: dummy"}, BodyTotal: 10})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, BodyBytes: 10})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 1, Method: "GET", URI: "/?var=val"})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 1, HeaderLines: []string{"User-Agent: Firefox/1.0"}})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 1, HeaderLines: []string{"Cookie: dummy2"}, BodyBytes: 10, BodyTotal: 10})
	return d
}

// RunS3 reproduces: a single packet POST to /upload.cgi with a multipart
// body containing file "somepicture1.jpg". Rule: method=POST ∧ uri contains
// "upload.cgi" ∧ filestore. Expected: alert fires; file's STORE flag is set.
func RunS3(reg prometheus.Registerer) *Driver {
	r3 := &httpSignature{
		id:             3,
		kinds:          []sigflags.EngineKind{sigflags.EngineMethod, sigflags.EngineURI, sigflags.EngineFilestoreTS},
		method:         "POST",
		uri:            "upload.cgi",
		fileInterested: true,
	}
	d := NewDriverWithRegistry(reg, r3)
	d.Feed(Chunk{
		Dir: sigflags.ToServer, TxID: 0,
		Method: "POST", URI: "/upload.cgi",
		FileName: "somepicture1.jpg", FileBytes: 100, FileTotal: 100,
		Complete: true,
	})
	return d
}

// RunS4 reproduces S3's upload packet against method=GET. Expected: no
// alert; file's NOSTORE flag is set.
func RunS4(reg prometheus.Registerer) *Driver {
	r4 := &httpSignature{
		id:             4,
		kinds:          []sigflags.EngineKind{sigflags.EngineMethod, sigflags.EngineURI, sigflags.EngineFilestoreTS},
		method:         "GET",
		uri:            "upload.cgi",
		fileInterested: true,
	}
	d := NewDriverWithRegistry(reg, r4)
	d.Feed(Chunk{
		Dir: sigflags.ToServer, TxID: 0,
		Method: "POST", URI: "/upload.cgi",
		FileName: "somepicture1.jpg", FileBytes: 100, FileTotal: 100,
		Complete: true,
	})
	return d
}

// RunS5 reproduces S3's upload packet against method=GET ∧ uri="upload.cgi"
// ∧ filename="nomatch". Expected: no alert; file NOSTORE.
func RunS5(reg prometheus.Registerer) *Driver {
	r5 := &httpSignature{
		id:             5,
		kinds:          []sigflags.EngineKind{sigflags.EngineMethod, sigflags.EngineURI, sigflags.EngineFilename},
		method:         "GET",
		uri:            "upload.cgi",
		filename:       "nomatch",
		fileInterested: true,
	}
	d := NewDriverWithRegistry(reg, r5)
	d.Feed(Chunk{
		Dir: sigflags.ToServer, TxID: 0,
		Method: "POST", URI: "/upload.cgi",
		FileName: "somepicture1.jpg", FileBytes: 100, FileTotal: 100,
		Complete: true,
	})
	return d
}

// RunS6 reproduces multipart headers in packet 1, file bytes in packet 2,
// against method=GET ∧ uri="upload.cgi" ∧ filestore. Expected: no alert on
// either packet; file not marked STORE.
func RunS6(reg prometheus.Registerer) *Driver {
	r6 := &httpSignature{
		id:             6,
		kinds:          []sigflags.EngineKind{sigflags.EngineMethod, sigflags.EngineURI, sigflags.EngineFilestoreTS},
		method:         "GET",
		uri:            "upload.cgi",
		fileInterested: true,
	}
	d := NewDriverWithRegistry(reg, r6)
	d.Feed(Chunk{
		Dir: sigflags.ToServer, TxID: 0,
		Method: "POST", URI: "/upload.cgi",
		FileName: "somepicture1.jpg", FileTotal: 100,
	})
	d.Feed(Chunk{Dir: sigflags.ToServer, TxID: 0, FileBytes: 100, Complete: true})
	return d
}
