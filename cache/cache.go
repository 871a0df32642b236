// Package cache implements the asynchronous read-ahead cache interposer:
// a producer goroutine that pulls sequentially from an inner cursor into
// a shared window guarded by sync.Mutex and sync.Cond, the same shared
// in-memory index idiom the pack uses for daemon state caches. The
// window is exposed back to package stream as an ordinary backend, so the
// wrapped cursor is driven by the same engine as any other backend.
package cache

import (
	"sync"

	"github.com/mpvgo/stream"
	"github.com/mpvgo/stream/backend"
	streamctx "github.com/mpvgo/stream/internal/context"
)

const readChunk = 32 * 1024

// Enable wraps cur with a read-ahead cache of sizeKiB KiB. minPercent
// (0, 1] is the fraction of the cache that must be filled (or EOF
// reached) before Enable returns. seekLimitPercent (0, 1] is the fraction
// of the cache a forward seek may advance into unread territory before
// it is forwarded to the backend instead of satisfied by waiting for the
// producer to catch up.
//
// Only READ-mode cursors are wrapped; a WRITE-mode cursor is returned
// unchanged, matching the no-op success case. On any failure the inner
// cursor is returned unchanged, unclosed, with the error describing why.
func Enable(ctx streamctx.Context, cur *stream.Cursor, sizeKiB int64, minPercent, seekLimitPercent float64) (*stream.Cursor, error) {
	if cur.Mode == backend.ModeWrite {
		return cur, nil
	}

	capacity := sizeKiB * 1024
	if capacity <= 0 {
		return cur, nil
	}

	d := &driver{
		ctx:       ctx,
		inner:     cur,
		buf:       make([]byte, capacity),
		capacity:  capacity,
		minFill:   int64(float64(capacity) * minPercent),
		seekLimit: int64(float64(capacity) * seekLimitPercent),
		base:      cur.Tell(),
		done:      make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)

	go d.run()
	d.waitMinFill()

	outer := stream.NewCacheCursor(cur.URL, cur.MimeType, cur.Type, cur.UncachedType, cur.StartPos(), cur.EndPos(), d, cur)
	return outer, nil
}

type driver struct {
	ctx   streamctx.Context
	inner *stream.Cursor

	mu   sync.Mutex
	cond *sync.Cond

	buf       []byte
	capacity  int64
	minFill   int64
	seekLimit int64

	base    int64 // absolute stream offset of buf[0]; always equals the consumer's position
	bufLen  int64
	eof     bool
	closed  bool
	done    chan struct{}
}

var (
	_ backend.Filler     = (*driver)(nil)
	_ backend.Seeker     = (*driver)(nil)
	_ backend.Controller = (*driver)(nil)
	_ backend.Closer     = (*driver)(nil)
)

// waitMinFill blocks until the window holds minFill bytes or the
// producer reaches EOF, enforcing the "minimum fill before reads are
// allowed" parameter.
func (d *driver) waitMinFill() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.bufLen < d.minFill && !d.eof && !d.closed {
		d.cond.Wait()
	}
}

// run is the sole producer: it owns inner exclusively and pulls bytes
// strictly forward, growing the window until it hits capacity, then
// waits for the consumer to make room.
func (d *driver) run() {
	chunk := make([]byte, readChunk)
	for {
		d.mu.Lock()
		for d.bufLen >= d.capacity && !d.closed {
			d.cond.Wait()
		}
		if d.closed {
			d.mu.Unlock()
			close(d.done)
			return
		}
		room := d.capacity - d.bufLen
		d.mu.Unlock()

		want := chunk
		if int64(len(want)) > room {
			want = chunk[:room]
		}
		n := d.inner.Read(d.ctx, want)

		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			close(d.done)
			return
		}
		if n == 0 {
			d.eof = true
			d.mu.Unlock()
			d.cond.Broadcast()
			close(d.done)
			return
		}
		copy(d.buf[d.bufLen:d.bufLen+int64(n)], chunk[:n])
		d.bufLen += int64(n)
		d.mu.Unlock()
		d.cond.Broadcast()
	}
}

func (d *driver) FillBuffer(dst []byte) (int, error) {
	d.mu.Lock()
	for d.bufLen == 0 && !d.eof && !d.closed {
		d.cond.Wait()
	}
	if d.bufLen == 0 {
		d.mu.Unlock()
		return 0, nil
	}
	n := int64(len(dst))
	if n > d.bufLen {
		n = d.bufLen
	}
	copy(dst, d.buf[:n])
	copy(d.buf, d.buf[n:d.bufLen])
	d.bufLen -= n
	d.base += n
	d.mu.Unlock()
	d.cond.Broadcast()
	return int(n), nil
}

// Seek repositions the window. A target inside [base, base+bufLen] is
// satisfied immediately from already-cached bytes. A target within
// seekLimit past the cached window is satisfied by waiting for the
// producer to read up to it. Anything further forwards the seek to the
// inner cursor directly and resets the window.
func (d *driver) Seek(target int64) bool {
	d.mu.Lock()
	if target >= d.base && target <= d.base+d.bufLen {
		shift := target - d.base
		copy(d.buf, d.buf[shift:d.bufLen])
		d.bufLen -= shift
		d.base = target
		d.mu.Unlock()
		d.cond.Broadcast()
		return true
	}

	if target > d.base+d.bufLen && target <= d.base+d.bufLen+d.seekLimit {
		for d.base+d.bufLen < target && !d.eof && !d.closed {
			d.cond.Wait()
		}
		if d.base+d.bufLen >= target {
			shift := target - d.base
			copy(d.buf, d.buf[shift:d.bufLen])
			d.bufLen -= shift
			d.base = target
			d.mu.Unlock()
			d.cond.Broadcast()
			return true
		}
		d.mu.Unlock()
		return false
	}
	d.mu.Unlock()

	if !d.inner.Seek(d.ctx, target) {
		return false
	}

	d.mu.Lock()
	d.bufLen = 0
	d.base = target
	d.eof = false
	d.mu.Unlock()
	d.cond.Broadcast()
	return true
}

func (d *driver) Control(cmd backend.ControlCmd, arg interface{}) (interface{}, backend.Status) {
	return d.inner.Control(cmd, arg)
}

// Close stops the producer and waits for it to exit. The inner cursor
// itself is closed by the outer Cursor's own Close, which recurses into
// it as the cache wrapper's uncached stream.
func (d *driver) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cond.Broadcast()
	<-d.done
	return nil
}
