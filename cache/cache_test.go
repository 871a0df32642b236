package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mpvgo/stream"
	"github.com/mpvgo/stream/backend"
	streamctx "github.com/mpvgo/stream/internal/context"
)

// slowMemBackend behaves like the in-memory backend but FillBuffer
// serves data one byte at a time. The inner cursor's Read loops over
// these single-byte fills, so each producer iteration still receives a
// whole chunk (capped by the room left in the window).
type slowMemBackend struct {
	data []byte
	pos  int64
}

func (b *slowMemBackend) FillBuffer(dst []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, nil
	}
	n := 1
	if n > len(dst) {
		n = len(dst)
	}
	copy(dst, b.data[b.pos:b.pos+int64(n)])
	b.pos += int64(n)
	return n, nil
}

func (b *slowMemBackend) Seek(target int64) bool {
	if target < 0 || target > int64(len(b.data)) {
		return false
	}
	b.pos = target
	return true
}

func newInnerCursor(t *testing.T, data string) *stream.Cursor {
	t.Helper()
	be := &slowMemBackend{data: []byte(data)}
	attrs := backend.Attrs{
		Flags:  backend.FlagSeek | backend.FlagSeekBackward,
		EndPos: int64(len(data)),
	}
	return stream.NewFromBackend(streamctx.Background(), "mem://cache-test", backend.ModeRead, be, attrs)
}

func TestEnableWaitsForMinFillThenReads(t *testing.T) {
	ctx := streamctx.Background()
	inner := newInnerCursor(t, "0123456789")

	outer, err := Enable(ctx, inner, 1, 0.5, 0.5)
	require.NoError(t, err)
	require.True(t, outer.Flags.Has(backend.FlagSeek))

	buf := make([]byte, 5)
	n := outer.Read(ctx, buf)
	require.Equal(t, 5, n)
	require.Equal(t, "01234", string(buf))
}

func TestEnableWriteModeIsNoop(t *testing.T) {
	ctx := streamctx.Background()
	be := &slowMemBackend{}
	attrs := backend.Attrs{Flags: backend.FlagSeek}
	inner := stream.NewFromBackend(ctx, "mem://cache-test", backend.ModeWrite, be, attrs)

	outer, err := Enable(ctx, inner, 64, 0.5, 0.5)
	require.NoError(t, err)
	require.Same(t, inner, outer)
}

func TestEnableZeroCapacityIsNoop(t *testing.T) {
	ctx := streamctx.Background()
	inner := newInnerCursor(t, "abc")

	outer, err := Enable(ctx, inner, 0, 0.5, 0.5)
	require.NoError(t, err)
	require.Same(t, inner, outer)
}

func TestReadDrainsEntireStreamThroughCache(t *testing.T) {
	ctx := streamctx.Background()
	payload := "the quick brown fox jumps over the lazy dog"
	inner := newInnerCursor(t, payload)

	outer, err := Enable(ctx, inner, 1, 0.1, 0.5)
	require.NoError(t, err)
	defer outer.Close()

	out, err := outer.ReadComplete(ctx, len(payload)+10)
	require.NoError(t, err)
	require.Equal(t, payload, string(out))
}

func TestSeekWithinWindowIsImmediate(t *testing.T) {
	ctx := streamctx.Background()
	inner := newInnerCursor(t, "0123456789")
	outer, err := Enable(ctx, inner, 1, 0.8, 0.5)
	require.NoError(t, err)
	defer outer.Close()

	require.True(t, outer.Seek(ctx, 2))
	buf := make([]byte, 3)
	n := outer.Read(ctx, buf)
	require.Equal(t, 3, n)
	require.Equal(t, "234", string(buf))
}

func repeatDigits(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte('0' + i%10)
	}
	return string(out)
}

func TestSeekBeyondLimitForwardsToInner(t *testing.T) {
	ctx := streamctx.Background()
	payload := repeatDigits(3000)
	inner := newInnerCursor(t, payload)

	// A 1KiB cache with a 5% seek limit (~51 bytes) against a 3000-byte
	// payload: the producer fills to capacity and blocks well short of the
	// target, so the seek below must forward straight to the inner cursor
	// instead of waiting for the producer to catch up.
	outer, err := Enable(ctx, inner, 1, 0.1, 0.05)
	require.NoError(t, err)
	defer outer.Close()

	// Give the producer time to fill the window to capacity and block,
	// so the forwarded Seek below doesn't race the producer's own use of
	// the inner cursor.
	time.Sleep(50 * time.Millisecond)

	require.True(t, outer.Seek(ctx, 2000))
	buf := make([]byte, 2)
	n := outer.Read(ctx, buf)
	require.Equal(t, 2, n)
	require.Equal(t, "01", string(buf))
}

func TestCloseStopsProducerWithoutDoubleClose(t *testing.T) {
	ctx := streamctx.Background()
	inner := newInnerCursor(t, "0123456789")
	outer, err := Enable(ctx, inner, 1, 0.5, 0.5)
	require.NoError(t, err)

	require.NoError(t, outer.Close())
	require.NoError(t, inner.Close(), "inner Close must be idempotent even though the outer already closed it")
}
