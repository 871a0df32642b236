package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpvgo/stream/backend"
	streamctx "github.com/mpvgo/stream/internal/context"
)

func TestOpenReadExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	be, attrs, status, err := open(streamctx.Background(), path, backend.ModeRead, nil)
	require.NoError(t, err)
	require.Equal(t, backend.StatusOK, status)
	require.Equal(t, int64(10), attrs.EndPos)
	require.True(t, attrs.Flags.Has(backend.FlagSeek))

	d := be.(*driver)
	defer d.Close()

	buf := make([]byte, 5)
	n, err := d.FillBuffer(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "01234", string(buf))

	require.True(t, d.Seek(2))
	n, err = d.FillBuffer(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "23456", string(buf))
}

func TestOpenMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, status, err := open(streamctx.Background(), filepath.Join(dir, "nope.bin"), backend.ModeRead, nil)
	require.Error(t, err)
	require.Equal(t, backend.StatusError, status)
}

func TestOpenWriteTruncatesAndWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	be, _, status, err := open(streamctx.Background(), path, backend.ModeWrite, nil)
	require.NoError(t, err)
	require.Equal(t, backend.StatusOK, status)

	d := be.(*driver)
	n, err := d.WriteBuffer([]byte("fresh"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, d.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "fresh", string(contents))
}

func TestControlGetSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sized.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 42), 0o644))

	be, _, _, err := open(streamctx.Background(), path, backend.ModeRead, nil)
	require.NoError(t, err)
	d := be.(*driver)
	defer d.Close()

	size, status := d.Control(backend.CmdGetSize, nil)
	require.Equal(t, backend.StatusOK, status)
	require.Equal(t, uint64(42), size)

	_, status = d.Control(backend.CmdReconnect, nil)
	require.Equal(t, backend.StatusUnsupported, status)
}
