package stream

import (
	"os"

	"github.com/mpvgo/stream/internal/context"
)

// SetCapture mirrors every chunk the cursor successfully reads from its
// backend to path, including bytes buffered ahead of the caller's reads,
// replacing any existing capture sink. Passing "" disables capture.
func (c *Cursor) SetCapture(ctx context.Context, path string) {
	if c.capturePath == path {
		return
	}
	c.closeCapture()
	if path == "" {
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		context.GetLogger(ctx).Errorf("stream: error opening capture file %q: %v", path, err)
		return
	}
	c.captureFile = f
	c.capturePath = path
}

func (c *Cursor) closeCapture() {
	if c.captureFile != nil {
		c.captureFile.Close()
	}
	c.captureFile = nil
	c.capturePath = ""
}

// writeCapture mirrors len(buf) bytes read from the backend to the
// capture sink, if any. Write failure disables capture silently; it never
// propagates to the caller of a read.
func (c *Cursor) writeCapture(ctx context.Context, buf []byte) {
	if c.captureFile == nil || len(buf) == 0 {
		return
	}
	if _, err := c.captureFile.Write(buf); err != nil {
		context.GetLogger(ctx).Errorf("stream: error writing capture file: %v", err)
		c.closeCapture()
	}
}
