package detect

import (
	"testing"

	"github.com/Schnaffon/suricata/detect/sigflags"
	"github.com/stretchr/testify/assert"
)

func TestFlowDetectStatePerDirectionIsolation(t *testing.T) {
	s := NewFlowDetectState()
	s.Store(sigflags.ToServer).Append(FlowProgressRecord{SigID: 1})
	assert.Equal(t, 1, s.Store(sigflags.ToServer).Len())
	assert.Equal(t, 0, s.Store(sigflags.ToClient).Len())
	assert.True(t, s.HasStoredSignatures())
}

func TestFlowDetectStateResetDirection(t *testing.T) {
	s := NewFlowDetectState()
	s.Store(sigflags.ToServer).Append(FlowProgressRecord{SigID: 1, Cursor: sigflags.Cursor{InstructionIndex: 2}})
	s.SetFlags(sigflags.ToServer, sigflags.FileTSNew)

	s.ResetDirection(sigflags.ToServer)

	assert.Equal(t, 0, s.Store(sigflags.ToServer).Len())
	assert.Equal(t, sigflags.DirectionFlags(0), s.Flags(sigflags.ToServer))
	assert.False(t, s.HasStoredSignatures())
}
