package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeInterrupter struct {
	cancel bool
	calls  []time.Duration
}

func (f *fakeInterrupter) Interrupt(d time.Duration) bool {
	f.calls = append(f.calls, d)
	return f.cancel
}

func TestSetInterrupterIsUsedByCheckInterrupt(t *testing.T) {
	f := &fakeInterrupter{cancel: true}
	SetInterrupter(f)
	defer SetInterrupter(nil)

	cancelled := checkInterrupt(5 * time.Millisecond)
	require.True(t, cancelled)
	require.Len(t, f.calls, 1)
	require.Equal(t, 5*time.Millisecond, f.calls[0])
}

func TestSetInterrupterNilRestoresDefault(t *testing.T) {
	SetInterrupter(&fakeInterrupter{cancel: true})
	SetInterrupter(nil)

	cancelled := checkInterrupt(time.Millisecond)
	require.False(t, cancelled, "a nil interrupter must fall back to the plain sleeping default")
}
