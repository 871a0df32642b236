package stream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpvgo/stream/backend"
	streamctx "github.com/mpvgo/stream/internal/context"
)

func TestSetCaptureMirrorsReads(t *testing.T) {
	ctx := streamctx.Background()
	c := newCursor(t, "hello world", backend.FlagSeek)

	dir := t.TempDir()
	capturePath := filepath.Join(dir, "capture.raw")
	c.SetCapture(ctx, capturePath)

	buf := make([]byte, 5)
	n := c.Read(ctx, buf)
	require.Equal(t, 5, n)

	c.SetCapture(ctx, "")

	contents, err := os.ReadFile(capturePath)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(contents))
}

func TestSetCaptureSamePathIsNoop(t *testing.T) {
	ctx := streamctx.Background()
	c := newCursor(t, "abc", backend.FlagSeek)

	dir := t.TempDir()
	capturePath := filepath.Join(dir, "capture.raw")
	c.SetCapture(ctx, capturePath)
	f1 := c.captureFile

	c.SetCapture(ctx, capturePath)
	require.Same(t, f1, c.captureFile, "setting the same path twice must not reopen the file")

	c.SetCapture(ctx, "")
}
