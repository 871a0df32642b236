package stream

import (
	"os"
	"sync"

	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/internal/context"
)

// Size constants, mirroring the original stream.c buffer geometry.
// MaxSector padding is always reserved, even when a backend has no sector
// alignment, so that turning sector alignment on later never requires
// reallocating the buffer.
const (
	DefaultBufferSize = 128 * 1024
	MaxBuffer         = 2 * 1024 * 1024
	MaxSector         = 8 * 1024
	BufferCapacity    = MaxBuffer + MaxSector

	MaxReconnectRetries = 5
)

// Cursor is the buffered, byte-oriented cursor at the center of this
// package. It is single-threaded: callers must not use a Cursor from more
// than one goroutine concurrently.
type Cursor struct {
	URL      string
	Mode     backend.Mode
	Flags    backend.Flags
	MimeType string
	Type     string

	// UncachedType records the Type the backend reported before any cache
	// wrapping.
	UncachedType string

	pos        int64
	endPos     int64
	startPos   int64
	sectorSize int
	readChunk  int

	buffer []byte
	bufPos int
	bufLen int
	eof    bool

	capturePath string
	captureFile *os.File

	// uncachedStream is set when this cursor is a cache wrapper; it owns
	// the inner cursor exclusively and frees it recursively on Close.
	uncachedStream *Cursor

	be         backend.Backend
	filler     backend.Filler
	seeker     backend.Seeker
	writer     backend.BufWriter
	controller backend.Controller
	closer     backend.Closer

	closeOnce sync.Once
}

// NewFromBackend wraps b (with attrs populated by its Open call) in a new
// Cursor: it defaults ReadChunk, clears FlagSeek when the backend has no
// Seeker, and records UncachedType. It is called by backend/registry
// after a successful dispatch; most callers should go through
// registry.Open instead of calling this directly.
func NewFromBackend(ctx context.Context, url string, mode backend.Mode, b backend.Backend, attrs backend.Attrs) *Cursor {
	c := &Cursor{
		URL:        url,
		Mode:       mode,
		Flags:      attrs.Flags,
		MimeType:   attrs.MimeType,
		Type:       attrs.Type,
		sectorSize: attrs.SectorSize,
		readChunk:  attrs.ReadChunk,
		startPos:   attrs.StartPos,
		endPos:     attrs.EndPos,
		pos:        attrs.StartPos,
		buffer:     make([]byte, BufferCapacity),
		be:         b,
	}

	c.filler, _ = b.(backend.Filler)
	c.seeker, _ = b.(backend.Seeker)
	c.writer, _ = b.(backend.BufWriter)
	c.controller, _ = b.(backend.Controller)
	c.closer, _ = b.(backend.Closer)

	if c.readChunk == 0 {
		sector := c.sectorSize
		if sector < DefaultBufferSize {
			sector = DefaultBufferSize
		}
		c.readChunk = 4 * sector
	}
	if c.seeker == nil {
		c.Flags &^= backend.FlagSeek
	}

	c.UncachedType = c.Type

	context.GetLogger(ctx).Debugf("stream: opened %q backend=%T flags=%#x", url, b, c.Flags)
	return c
}

// readUnbuffered invalidates the local buffer and reads directly from the
// backend, retrying once via the reconnect driver on failure.
func (c *Cursor) readUnbuffered(ctx context.Context, dst []byte) int {
	c.bufPos, c.bufLen = 0, 0

	if c.filler == nil {
		c.eof = true
		return 0
	}

	n, err := c.filler.FillBuffer(dst)
	if n < 0 {
		n = 0
	}
	if n == 0 {
		if c.eof || (c.endPos != 0 && c.pos == c.endPos) {
			c.eof = true
			return 0
		}

		if !c.reconnect(ctx) {
			c.eof = true
			return 0
		}
		// Bound recursion to one extra attempt after a successful reconnect.
		c.eof = true
		n2, err2 := c.filler.FillBuffer(dst)
		if n2 < 0 {
			n2 = 0
		}
		if n2 == 0 {
			c.eof = true
			return 0
		}
		c.eof = false
		c.pos += int64(n2)
		c.writeCapture(ctx, dst[:n2])
		return n2
	}

	_ = err // non-EOF partial reads are normal; err is informational only.
	c.eof = false
	c.pos += int64(n)
	c.writeCapture(ctx, dst[:n])
	return n
}

// fillBuffer refills the internal buffer.
func (c *Cursor) fillBuffer(ctx context.Context) int {
	size := DefaultBufferSize
	if c.sectorSize != 0 {
		size = c.sectorSize
	}
	n := c.readUnbuffered(ctx, c.buffer[:size])
	c.bufPos = 0
	c.bufLen = n
	return n
}

// ReadPartial reads between 0 and len(dst) bytes, returning how much data
// was actually read. A short or zero return indicates EOF, not an error.
func (c *Cursor) ReadPartial(ctx context.Context, dst []byte) int {
	if c.bufPos == c.bufLen && len(dst) > 0 {
		c.bufPos, c.bufLen = 0, 0
		if c.sectorSize == 0 && len(dst) >= DefaultBufferSize {
			return c.readUnbuffered(ctx, dst)
		}
		if c.fillBuffer(ctx) == 0 {
			return 0
		}
	}
	n := len(dst)
	if avail := c.bufLen - c.bufPos; avail < n {
		n = avail
	}
	copy(dst, c.buffer[c.bufPos:c.bufPos+n])
	c.bufPos += n
	if n > 0 {
		c.eof = false
	}
	return n
}

// Read loops ReadPartial until the request is satisfied or the stream
// returns 0. It returns the number of bytes actually read; a short read
// is EOF, not an error.
func (c *Cursor) Read(ctx context.Context, dst []byte) int {
	total := len(dst)
	remaining := dst
	for len(remaining) > 0 {
		n := c.ReadPartial(ctx, remaining)
		if n <= 0 {
			break
		}
		remaining = remaining[n:]
	}
	got := total - len(remaining)
	if got > 0 {
		c.eof = false
	}
	return got
}

// Peek returns a view of up to n upcoming bytes without advancing the
// logical read position. The view is invalidated by any subsequent
// cursor operation.
func (c *Cursor) Peek(ctx context.Context, n int) []byte {
	if n < 0 || n > MaxBuffer {
		panic("stream: Peek: n out of range")
	}

	if c.bufLen-c.bufPos < n {
		valid := c.bufLen - c.bufPos
		copy(c.buffer, c.buffer[c.bufPos:c.bufLen])
		for valid < n {
			chunk := n - valid
			if c.sectorSize != 0 {
				chunk = DefaultBufferSize
			}
			if valid+chunk > BufferCapacity {
				chunk = BufferCapacity - valid
			}
			read := c.readUnbuffered(ctx, c.buffer[valid:valid+chunk])
			if read == 0 {
				break
			}
			valid += read
		}
		c.bufPos = 0
		c.bufLen = valid
		if c.bufLen > 0 {
			c.eof = false
		}
	}

	avail := c.bufLen - c.bufPos
	if n > avail {
		n = avail
	}
	return c.buffer[c.bufPos : c.bufPos+n]
}

// WriteBuffer writes src through the backend's write primitive, advancing
// pos on success. A short write from the backend is a contract violation
// and panics, matching the original's fatal assertion.
func (c *Cursor) WriteBuffer(src []byte) (int, error) {
	if c.writer == nil {
		return 0, ErrNoBackend
	}
	n, err := c.writer.WriteBuffer(src)
	if err != nil {
		return n, err
	}
	c.pos += int64(n)
	if n != len(src) {
		panic("stream: WriteBuffer: short write from backend")
	}
	return n, nil
}

// Tell returns the logical read position.
func (c *Cursor) Tell() int64 {
	return c.pos - int64(c.bufLen-c.bufPos)
}

// Eof reports the sticky end-of-data hint.
func (c *Cursor) Eof() bool {
	return c.eof
}

// StartPos returns the backend's reported start offset.
func (c *Cursor) StartPos() int64 {
	return c.startPos
}

// EndPos returns the known end offset, or 0 if unknown.
func (c *Cursor) EndPos() int64 {
	return c.endPos
}

// UpdateSize queries the backend for its size via GET_SIZE and grows
// endPos if the answer is larger; the known end position never shrinks.
func (c *Cursor) UpdateSize() {
	result, status := c.Control(CmdGetSize, nil)
	if status != StatusOK {
		return
	}
	if size, ok := result.(uint64); ok {
		if int64(size) > c.endPos {
			c.endPos = int64(size)
		}
	}
}

// Close releases the cursor: it closes any open capture file, closes the
// backend, recursively closes the inner cursor of a cache wrapper, and
// releases the buffer.
func (c *Cursor) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closeCapture()
		if c.closer != nil {
			err = c.closer.Close()
		}
		if c.uncachedStream != nil {
			if ierr := c.uncachedStream.Close(); err == nil {
				err = ierr
			}
		}
		c.buffer = nil
	})
	return err
}
