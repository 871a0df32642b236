// Package file implements the local filesystem backend, the bare-path
// fallback every other protocol prefix is tried before. It is grounded on
// the distribution filesystem storage driver's os.File usage, trimmed to
// the single-file, single-cursor shape a media stream needs instead of a
// content-addressed blob tree.
package file

import (
	"io"
	"os"
	"strings"

	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/backend/registry"
	streamctx "github.com/mpvgo/stream/internal/context"
)

func init() {
	registry.Register(backend.Descriptor{
		Name: "file",
		// The empty prefix claims any URL with no "://" in it: the bare
		// local-path fallback, lowest priority in the dispatch scan.
		Protocols: []string{"file", ""},
		Open:      open,
	})
}

type driver struct {
	f *os.File
}

var (
	_ backend.Filler     = (*driver)(nil)
	_ backend.Seeker     = (*driver)(nil)
	_ backend.BufWriter  = (*driver)(nil)
	_ backend.Controller = (*driver)(nil)
	_ backend.Closer     = (*driver)(nil)
)

func open(ctx streamctx.Context, rawURL string, mode backend.Mode, opts interface{}) (backend.Backend, backend.Attrs, backend.Status, error) {
	path := strings.TrimPrefix(rawURL, "file://")

	flag := os.O_RDONLY
	if mode == backend.ModeWrite {
		flag = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}

	attrs := backend.Attrs{
		Flags: backend.FlagSeek | backend.FlagSeekBackward,
		Type:  "file",
	}
	if fi, err := f.Stat(); err == nil && mode == backend.ModeRead {
		attrs.EndPos = fi.Size()
	}

	return &driver{f: f}, attrs, backend.StatusOK, nil
}

func (d *driver) FillBuffer(dst []byte) (int, error) {
	n, err := d.f.Read(dst)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (d *driver) Seek(target int64) bool {
	_, err := d.f.Seek(target, io.SeekStart)
	return err == nil
}

func (d *driver) WriteBuffer(src []byte) (int, error) {
	return d.f.Write(src)
}

func (d *driver) Control(cmd backend.ControlCmd, arg interface{}) (interface{}, backend.Status) {
	if cmd != backend.CmdGetSize {
		return nil, backend.StatusUnsupported
	}
	fi, err := d.f.Stat()
	if err != nil {
		return nil, backend.StatusError
	}
	return uint64(fi.Size()), backend.StatusOK
}

func (d *driver) Close() error {
	return d.f.Close()
}
