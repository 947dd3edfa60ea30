package scenario

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

// These tests drive the six named scenarios through the real Start/Continue
// Path engine via the shared runners in builtin.go; see there for the
// literal packet sequence each one reproduces.

func TestScenarioS1LateCookieArrival(t *testing.T) {
	d := RunS1(prometheus.NewRegistry())
	assert.Len(t, d.AlertRecords(), 1, "exactly one alert: on packet 3, not before or after")
	assert.Equal(t, 1, d.AlertRecords()[0].SigID)
}

func TestScenarioS2PipelinedRequests(t *testing.T) {
	d := RunS2(prometheus.NewRegistry())
	alerts := d.AlertRecords()
	assert.Len(t, alerts, 2)
	assert.Equal(t, 1, alerts[0].SigID, "R1 alerts on the first request")
	assert.Equal(t, 2, alerts[1].SigID, "R2 alerts on the second, without R1 re-alerting")
	assert.Equal(t, uint64(1), *alerts[1].TxID)
}

func TestScenarioS3MultipartUploadStores(t *testing.T) {
	d := RunS3(prometheus.NewRegistry())
	assert.Len(t, d.AlertRecords(), 1)
	tx := d.Transaction(0)
	assert.True(t, tx.fileStored)
	assert.False(t, tx.fileNoStore)
}

func TestScenarioS4NegativeMethodDisablesStorage(t *testing.T) {
	d := RunS4(prometheus.NewRegistry())
	assert.Empty(t, d.AlertRecords())
	tx := d.Transaction(0)
	assert.True(t, tx.fileNoStore)
	assert.False(t, tx.fileStored)
}

func TestScenarioS5FilenameMismatchDisablesStorage(t *testing.T) {
	d := RunS5(prometheus.NewRegistry())
	assert.Empty(t, d.AlertRecords())
	assert.True(t, d.Transaction(0).fileNoStore)
}

func TestScenarioS6FileAcrossPacketsNeverStores(t *testing.T) {
	d := RunS6(prometheus.NewRegistry())
	assert.Empty(t, d.AlertRecords())
	tx := d.Transaction(0)
	assert.False(t, tx.fileStored)
	assert.True(t, tx.fileNoStore)
}
