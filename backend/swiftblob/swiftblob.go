// Package swiftblob implements the swift:// backend over OpenStack Swift,
// grounded on the distribution swift storage driver's use of ncw/swift:
// a swift.Connection, ObjectOpen with a Range header for seeking, and
// swift.Error status-code inspection for a range-miss on the tail.
package swiftblob

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ncw/swift"

	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/backend/registry"
	streamctx "github.com/mpvgo/stream/internal/context"
)

// Options are the swift:// query parameters decoded by backend/optparse.
type Options struct {
	AuthURL  string `opt:"authurl"`
	Username string `opt:"username"`
	Password string `opt:"password"`
	Tenant   string `opt:"tenant"`
}

func init() {
	registry.Register(backend.Descriptor{
		Name:      "swift",
		Protocols: []string{"swift"},
		Schema:    &Options{},
		Open:      open,
	})
}

type driver struct {
	conn      *swift.Connection
	container string
	object    string
	pos       int64
	size      int64
	body      io.ReadCloser
}

var (
	_ backend.Filler     = (*driver)(nil)
	_ backend.Seeker     = (*driver)(nil)
	_ backend.Controller = (*driver)(nil)
	_ backend.Closer     = (*driver)(nil)
)

func open(ctx streamctx.Context, rawURL string, mode backend.Mode, opts interface{}) (backend.Backend, backend.Attrs, backend.Status, error) {
	if mode == backend.ModeWrite {
		return nil, backend.Attrs{}, backend.StatusUnsupported, fmt.Errorf("swiftblob: write mode not supported")
	}

	o, ok := opts.(*Options)
	if !ok || o.AuthURL == "" {
		return nil, backend.Attrs{}, backend.StatusError, fmt.Errorf("swiftblob: authurl option is required")
	}

	container, object, err := parseURL(rawURL)
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}

	conn := &swift.Connection{
		AuthUrl:  o.AuthURL,
		UserName: o.Username,
		ApiKey:   o.Password,
		Tenant:   o.Tenant,
	}
	if err := conn.Authenticate(); err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}

	d := &driver{conn: conn, container: container, object: object}

	info, _, err := conn.Object(container, object)
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}
	d.size = info.Bytes

	attrs := backend.Attrs{
		Flags:    backend.FlagSeek | backend.FlagSeekForward | backend.FlagStreaming,
		Type:     "swift",
		MimeType: info.ContentType,
		EndPos:   d.size,
	}
	return d, attrs, backend.StatusOK, nil
}

func parseURL(rawURL string) (container, object string, err error) {
	rest := strings.TrimPrefix(rawURL, "swift://")
	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		return "", "", fmt.Errorf("swiftblob: url %q missing object name", rawURL)
	}
	return rest[:idx], rest[idx+1:], nil
}

func (d *driver) connect(from int64) error {
	headers := make(swift.Headers)
	headers["Range"] = "bytes=" + strconv.FormatInt(from, 10) + "-"

	body, _, err := d.conn.ObjectOpen(d.container, d.object, false, headers)
	if err == swift.ObjectNotFound {
		return err
	}
	if swiftErr, ok := err.(*swift.Error); ok && swiftErr.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		d.body = io.NopCloser(bytes.NewReader(nil))
		d.pos = from
		return nil
	}
	if err != nil {
		return err
	}
	d.body = body
	d.pos = from
	return nil
}

func (d *driver) FillBuffer(dst []byte) (int, error) {
	if d.body == nil {
		if err := d.connect(d.pos); err != nil {
			return 0, err
		}
	}
	n, err := d.body.Read(dst)
	d.pos += int64(n)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (d *driver) Seek(target int64) bool {
	if d.body != nil {
		d.body.Close()
		d.body = nil
	}
	return d.connect(target) == nil
}

func (d *driver) Control(cmd backend.ControlCmd, arg interface{}) (interface{}, backend.Status) {
	switch cmd {
	case backend.CmdGetSize:
		return uint64(d.size), backend.StatusOK
	case backend.CmdReconnect:
		if d.body != nil {
			d.body.Close()
			d.body = nil
		}
		if err := d.connect(d.pos); err != nil {
			return nil, backend.StatusError
		}
		return nil, backend.StatusOK
	default:
		return nil, backend.StatusUnsupported
	}
}

func (d *driver) Close() error {
	if d.body != nil {
		return d.body.Close()
	}
	return nil
}
