package stream

import (
	"fmt"
	"io"

	"github.com/mpvgo/stream/internal/context"
)

// Std adapts a Cursor to the standard io.Reader/io.Writer/io.Seeker/
// io.Closer interfaces, the way a ReadSeekCloser adapts an io.ReaderAt for
// consumers that just want stdlib semantics. Binding a context.Context up
// front lets Cursor's own ops stay explicit about logging/cancellation
// context while still handing demuxers a familiar io.ReadSeekCloser.
type Std struct {
	*Cursor
	ctx context.Context
}

var (
	_ io.ReadWriteCloser = (*Std)(nil)
	_ io.Seeker          = (*Std)(nil)
)

// WithContext returns the stdlib io adapter for c, bound to ctx.
func (c *Cursor) WithContext(ctx context.Context) *Std {
	return &Std{Cursor: c, ctx: ctx}
}

func (s *Std) Read(p []byte) (int, error) {
	n := s.Cursor.Read(s.ctx, p)
	if n == 0 && s.Cursor.Eof() {
		return 0, io.EOF
	}
	return n, nil
}

func (s *Std) Write(p []byte) (int, error) {
	return s.Cursor.WriteBuffer(p)
}

func (s *Std) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.Cursor.Tell() + offset
	case io.SeekEnd:
		s.Cursor.UpdateSize()
		target = s.Cursor.endPos + offset
	default:
		return 0, fmt.Errorf("stream: Seek: invalid whence %d", whence)
	}

	if target < 0 {
		return 0, fmt.Errorf("stream: Seek: cannot seek to negative position")
	}
	if !s.Cursor.Seek(s.ctx, target) {
		return 0, ErrSeekFailed
	}
	return s.Cursor.Tell(), nil
}
