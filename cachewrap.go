package stream

import "github.com/mpvgo/stream/backend"

// NewCacheCursor builds the outer cursor a cache interposer presents to
// callers: it always advertises FlagSeek (the cache can satisfy seeks
// within its window), inherits descriptive fields from the inner cursor,
// and takes ownership of inner so Close releases both.
func NewCacheCursor(url, mimeType, typ, uncachedType string, startPos, endPos int64, b backend.Backend, inner *Cursor) *Cursor {
	c := &Cursor{
		URL:          url,
		Mode:         backend.ModeRead,
		Flags:        backend.FlagSeek,
		MimeType:     mimeType,
		Type:         typ,
		UncachedType: uncachedType,
		startPos:     startPos,
		pos:          startPos,
		endPos:       endPos,
		buffer:       make([]byte, BufferCapacity),
		be:           b,

		uncachedStream: inner,
	}

	c.filler, _ = b.(backend.Filler)
	c.seeker, _ = b.(backend.Seeker)
	c.controller, _ = b.(backend.Controller)
	c.closer, _ = b.(backend.Closer)

	return c
}
