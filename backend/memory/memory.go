// Package memory implements a backend over an in-process byte slice, the
// way the distribution inmemory storage driver backs a filesystem with a
// local map instead of a remote object store. It is the canonical
// "memory://" backend: content is supplied after Open via the
// CmdSetContents control command rather than fetched from a URL.
package memory

import (
	"sync"

	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/backend/registry"
	streamctx "github.com/mpvgo/stream/internal/context"
)

const protocol = "memory"

func init() {
	registry.Register(backend.Descriptor{
		Name:      protocol,
		Protocols: []string{protocol},
		Open:      open,
	})
}

type driver struct {
	mu   sync.RWMutex
	data []byte
	pos  int64
}

var (
	_ backend.Filler     = (*driver)(nil)
	_ backend.Seeker     = (*driver)(nil)
	_ backend.BufWriter  = (*driver)(nil)
	_ backend.Controller = (*driver)(nil)
)

func open(ctx streamctx.Context, rawURL string, mode backend.Mode, opts interface{}) (backend.Backend, backend.Attrs, backend.Status, error) {
	d := &driver{}
	attrs := backend.Attrs{
		Flags: backend.FlagSeek | backend.FlagSeekBackward,
		Type:  protocol,
	}
	return d, attrs, backend.StatusOK, nil
}

func (d *driver) FillBuffer(dst []byte) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.pos >= int64(len(d.data)) {
		return 0, nil
	}
	n := copy(dst, d.data[d.pos:])
	d.pos += int64(n)
	return n, nil
}

func (d *driver) Seek(target int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if target < 0 || target > int64(len(d.data)) {
		return false
	}
	d.pos = target
	return true
}

func (d *driver) WriteBuffer(src []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	end := d.pos + int64(len(src))
	if end > int64(len(d.data)) {
		grown := make([]byte, end)
		copy(grown, d.data)
		d.data = grown
	}
	n := copy(d.data[d.pos:end], src)
	d.pos += int64(n)
	return n, nil
}

func (d *driver) Control(cmd backend.ControlCmd, arg interface{}) (interface{}, backend.Status) {
	switch cmd {
	case backend.CmdGetSize:
		d.mu.RLock()
		defer d.mu.RUnlock()
		return uint64(len(d.data)), backend.StatusOK
	case backend.CmdSetContents:
		contents, ok := arg.([]byte)
		if !ok {
			return nil, backend.StatusError
		}
		d.mu.Lock()
		d.data = contents
		d.pos = 0
		d.mu.Unlock()
		return nil, backend.StatusOK
	default:
		return nil, backend.StatusUnsupported
	}
}
