package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpvgo/stream/backend"
	streamctx "github.com/mpvgo/stream/internal/context"
)

func TestOpenReturnsSeekableEmptyBackend(t *testing.T) {
	be, attrs, status, err := open(streamctx.Background(), "memory://", backend.ModeRead, nil)
	require.NoError(t, err)
	require.Equal(t, backend.StatusOK, status)
	require.True(t, attrs.Flags.Has(backend.FlagSeek))
	require.True(t, attrs.Flags.Has(backend.FlagSeekBackward))

	d := be.(*driver)
	size, st := d.Control(backend.CmdGetSize, nil)
	require.Equal(t, backend.StatusOK, st)
	require.Equal(t, uint64(0), size)
}

func TestSetContentsThenFillAndSeek(t *testing.T) {
	d := &driver{}

	_, st := d.Control(backend.CmdSetContents, []byte("ABCDEFGH"))
	require.Equal(t, backend.StatusOK, st)

	buf := make([]byte, 3)
	n, err := d.FillBuffer(buf)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "ABC", string(buf))

	require.True(t, d.Seek(0))
	n, err = d.FillBuffer(buf)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "ABC", string(buf))

	require.False(t, d.Seek(-1))
	require.False(t, d.Seek(100))
}

func TestFillBufferAtEOFReturnsZero(t *testing.T) {
	d := &driver{}
	d.Control(backend.CmdSetContents, []byte("xy"))

	buf := make([]byte, 4)
	n, _ := d.FillBuffer(buf)
	require.Equal(t, 2, n)

	n, err := d.FillBuffer(buf)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestWriteBufferGrowsData(t *testing.T) {
	d := &driver{}

	n, err := d.WriteBuffer([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	size, _ := d.Control(backend.CmdGetSize, nil)
	require.Equal(t, uint64(5), size)

	require.True(t, d.Seek(0))
	buf := make([]byte, 5)
	n, _ = d.FillBuffer(buf)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
}

func TestControlUnknownCommand(t *testing.T) {
	d := &driver{}
	_, st := d.Control(backend.CmdReconnect, nil)
	require.Equal(t, backend.StatusUnsupported, st)
}

func TestControlSetContentsRejectsWrongType(t *testing.T) {
	d := &driver{}
	_, st := d.Control(backend.CmdSetContents, "not bytes")
	require.Equal(t, backend.StatusError, st)
}
