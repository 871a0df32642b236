package stream

import (
	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/internal/context"
)

// seekStatus is the three-valued result of seekUnbuffered: success, a
// no-op because the target equals the current backend position, or
// failure. seekLong and reconnect only check whether it failed: seekLong
// treats a no-op like success and refills the buffer from the aligned
// position the backend is already at.
type seekStatus int

const (
	seekFailed seekStatus = iota
	seekNoop
	seekOK
)

// seekUnbuffered bypasses the local buffer.
func (c *Cursor) seekUnbuffered(target int64) seekStatus {
	if target == c.pos {
		return seekNoop
	}
	if c.seeker == nil || !c.Flags.Has(backend.FlagSeek) {
		return seekFailed
	}
	if target < c.pos && !c.Flags.Has(backend.FlagSeekBackward) {
		return seekFailed
	}
	if !c.seeker.Seek(target) {
		return seekFailed
	}
	c.pos = target
	c.eof = false
	return seekOK
}

// seekLong performs a seek that doesn't try to satisfy from the buffer
// directly, handling sector alignment.
func (c *Cursor) seekLong(ctx context.Context, target int64) bool {
	oldPos := c.pos
	c.bufPos, c.bufLen = 0, 0
	c.eof = false

	if c.Mode == backend.ModeWrite {
		if c.seeker == nil || !c.seeker.Seek(target) {
			return false
		}
		return true
	}

	aligned := target
	if c.sectorSize != 0 {
		aligned = (target / int64(c.sectorSize)) * int64(c.sectorSize)
	}
	offset := target - aligned

	if c.seekUnbuffered(aligned) == seekFailed {
		// The backend could not honor the aligned position at all: undo
		// and report overall failure rather than attempting a partial fill.
		c.pos = oldPos
		return false
	}

	for c.pos < aligned {
		if c.fillBuffer(ctx) <= 0 {
			break // EOF
		}
	}

	for c.fillBuffer(ctx) > 0 {
		if offset <= int64(c.bufLen) {
			c.bufPos = int(offset)
			c.eof = false
			return true
		}
		offset -= int64(c.bufLen)
	}

	// Fill exhausted without covering offset: a seek past EOF is still a
	// successful seek at the cursor level. EOF is only observed by the
	// next read.
	c.bufPos, c.bufLen = 0, 0
	c.eof = false
	return true
}

// Seek moves the logical read position to target, satisfying it from the
// local buffer when possible. Negative targets are clamped to 0.
func (c *Cursor) Seek(ctx context.Context, target int64) bool {
	if target < 0 {
		context.GetLogger(ctx).Warnf("stream: seek to negative position %d clamped to 0", target)
		target = 0
	}

	if target < c.pos {
		bufStart := c.pos - int64(c.bufLen)
		if x := target - bufStart; x >= 0 {
			c.bufPos = int(x)
			c.eof = false
			return true
		}
	}

	return c.seekLong(ctx, target)
}

// Skip advances the logical position by delta, which may be negative.
func (c *Cursor) Skip(ctx context.Context, delta int64) bool {
	if delta < 0 {
		return c.Seek(ctx, c.Tell()+delta)
	}

	target := c.Tell() + delta
	if delta > 2*DefaultBufferSize && c.Flags.Has(backend.FlagSeekForward) {
		if !c.Seek(ctx, target-1) {
			return false
		}
		var one [1]byte
		c.Read(ctx, one[:])
		return !c.Eof() && c.Tell() == target
	}

	for delta > 0 {
		avail := int64(c.bufLen - c.bufPos)
		if avail == 0 {
			if c.fillBuffer(ctx) <= 0 {
				return false
			}
			avail = int64(c.bufLen - c.bufPos)
		}
		if avail > delta {
			avail = delta
		}
		c.bufPos += int(avail)
		delta -= avail
	}
	return true
}
