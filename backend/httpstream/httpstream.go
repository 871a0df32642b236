// Package httpstream implements the http:// and https:// backend: a
// range-request-seekable, reconnectable network stream built on
// go-retryablehttp the way the distribution HTTP blob proxy builds
// resumable transfers on top of net/http, retrying transient network
// failures instead of surfacing them as fatal I/O errors.
package httpstream

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/backend/registry"
	streamctx "github.com/mpvgo/stream/internal/context"
)

// Options are the URL query parameters this backend recognizes, decoded
// by backend/optparse.
type Options struct {
	UserAgent string `opt:"useragent"`
	Referrer  string `opt:"referrer"`
}

func init() {
	registry.Register(backend.Descriptor{
		Name:      "http",
		Protocols: []string{"http", "https"},
		Schema:    &Options{},
		Open:      open,
	})
}

type driver struct {
	client   *retryablehttp.Client
	url      string
	header   http.Header
	body     io.ReadCloser
	pos      int64
	size     int64
	seekable bool
}

var (
	_ backend.Filler     = (*driver)(nil)
	_ backend.Seeker     = (*driver)(nil)
	_ backend.Controller = (*driver)(nil)
	_ backend.Closer     = (*driver)(nil)
)

func open(ctx streamctx.Context, rawURL string, mode backend.Mode, opts interface{}) (backend.Backend, backend.Attrs, backend.Status, error) {
	if mode == backend.ModeWrite {
		return nil, backend.Attrs{}, backend.StatusUnsupported, fmt.Errorf("httpstream: write mode not supported")
	}

	header := http.Header{}
	if o, ok := opts.(*Options); ok {
		if o.UserAgent != "" {
			header.Set("User-Agent", o.UserAgent)
		}
		if o.Referrer != "" {
			header.Set("Referer", o.Referrer)
		}
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3

	d := &driver{client: client, url: rawURL, header: header}

	size, seekable, err := d.probe(ctx)
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}
	d.size = size
	d.seekable = seekable

	flags := backend.FlagStreaming
	if seekable {
		flags |= backend.FlagSeek | backend.FlagSeekForward
	}

	attrs := backend.Attrs{
		Flags:    flags,
		Type:     "http",
		MimeType: "",
		EndPos:   size,
	}
	return d, attrs, backend.StatusOK, nil
}

// probe issues a HEAD request to learn the content length and whether the
// server honors byte ranges, without committing to a body yet.
func (d *driver) probe(ctx streamctx.Context) (size int64, seekable bool, err error) {
	req, err := retryablehttp.NewRequest(http.MethodHead, d.url, nil)
	if err != nil {
		return 0, false, err
	}
	req.Header = d.header.Clone()

	resp, err := d.client.Do(req)
	if err != nil {
		streamctx.GetLogger(ctx).Warnf("httpstream: HEAD probe failed on %q: %v", d.url, err)
		return 0, false, nil
	}
	defer resp.Body.Close()

	seekable = resp.Header.Get("Accept-Ranges") == "bytes"
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			size = n
		}
	}
	return size, seekable, nil
}

func (d *driver) connect(ctx streamctx.Context, from int64) error {
	req, err := retryablehttp.NewRequest(http.MethodGet, d.url, nil)
	if err != nil {
		return err
	}
	req.Header = d.header.Clone()
	if from > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", from))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return fmt.Errorf("httpstream: unexpected status %d for %q", resp.StatusCode, d.url)
	}

	d.body = resp.Body
	d.pos = from
	return nil
}

func (d *driver) FillBuffer(dst []byte) (int, error) {
	if d.body == nil {
		if err := d.connect(streamctx.Background(), d.pos); err != nil {
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
	if !d.seekable {
		return false
	}
	if d.body != nil {
		d.body.Close()
		d.body = nil
	}
	if err := d.connect(streamctx.Background(), target); err != nil {
		return false
	}
	return true
}

func (d *driver) Control(cmd backend.ControlCmd, arg interface{}) (interface{}, backend.Status) {
	switch cmd {
	case backend.CmdGetSize:
		if d.size <= 0 {
			return nil, backend.StatusUnsupported
		}
		return uint64(d.size), backend.StatusOK
	case backend.CmdReconnect:
		if d.body != nil {
			d.body.Close()
			d.body = nil
		}
		if err := d.connect(streamctx.Background(), d.pos); err != nil {
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
