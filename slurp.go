package stream

import "github.com/mpvgo/stream/internal/context"

// readCompleteHardLimit is the safety rail on ReadComplete: callers must
// never ask for more than this, regardless of how large maxSize is
// allowed to grow via the geometric buffer.
const readCompleteHardLimit = 1_000_000_000

// ReadComplete reads the rest of the stream (from the current position to
// EOF) into memory, growing the buffer geometrically, and returns it. The
// returned slice has one extra trailing zero byte in its capacity, not
// counted in its length, for callers that want a C-string-style
// terminator.
//
// maxSize must be in (0, 1e9]; violating that is a caller contract bug and
// panics rather than returning an error, matching the original's hard
// abort for size misuse.
func (c *Cursor) ReadComplete(ctx context.Context, maxSize int) ([]byte, error) {
	if maxSize <= 0 || maxSize > readCompleteHardLimit {
		panic(ErrSizeLimit)
	}

	if c.endPos > 0 && c.endPos > int64(maxSize) {
		return nil, ErrTooLarge
	}

	bufsize := 1000
	if c.endPos > 0 {
		bufsize = int(c.endPos) + 1
	}

	buf := make([]byte, 0, bufsize+1)
	totalRead := 0
	for {
		if cap(buf) < bufsize {
			grown := make([]byte, bufsize, bufsize+1)
			copy(grown, buf[:totalRead])
			buf = grown
		} else {
			buf = buf[:bufsize]
		}

		// A short read here is definitive EOF only because Read already
		// retried internally until the backend produced nothing.
		n := c.Read(ctx, buf[totalRead:bufsize])
		totalRead += n
		if totalRead < bufsize {
			break
		}
		if bufsize > maxSize {
			return nil, ErrTooLarge
		}
		bufsize += bufsize / 2
		if bufsize > maxSize+1 {
			bufsize = maxSize + 1
		}
	}

	out := make([]byte, totalRead, totalRead+1)
	copy(out, buf[:totalRead])
	return out, nil
}
