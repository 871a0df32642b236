package stream

import (
	"time"

	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/internal/context"
)

const reconnectSleep = 1000 * time.Millisecond

// reconnect implements the retry loop for a lost connection. It is only
// ever engaged when FlagStreaming is set; non-streaming backends treat
// any non-positive FillBuffer as sticky EOF instead.
func (c *Cursor) reconnect(ctx context.Context) bool {
	if !c.Flags.Has(backend.FlagStreaming) {
		return false
	}
	if c.controller == nil {
		return false
	}

	savedPos := c.Tell()
	log := context.GetLogger(ctx)

	for attempt := 0; attempt < MaxReconnectRetries; attempt++ {
		log.Warnf("stream: connection lost on %q, attempting to reconnect (%d)", c.URL, attempt+1)

		if attempt > 0 {
			if checkInterrupt(reconnectSleep) {
				return false
			}
		}

		c.bufPos, c.bufLen = 0, 0
		c.pos = 0
		c.eof = true

		result, status := c.controller.Control(CmdReconnect, nil)
		_ = result
		if status == StatusUnsupported {
			return false
		}
		if status != StatusOK {
			continue
		}

		if c.seekUnbuffered(savedPos) != seekFailed && c.pos == savedPos {
			return true
		}
	}
	return false
}
