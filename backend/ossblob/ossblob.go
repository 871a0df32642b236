// Package ossblob implements the oss:// backend over Aliyun Object
// Storage Service, grounded on the distribution oss storage driver's use
// of denverdino/aliyungo: an oss.Client scoped to a region and bucket,
// with byte-range reads done through a Range request header.
package ossblob

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/denverdino/aliyungo/oss"

	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/backend/registry"
	streamctx "github.com/mpvgo/stream/internal/context"
)

// Options are the oss:// query parameters decoded by backend/optparse.
type Options struct {
	AccessKeyID     string `opt:"accesskeyid"`
	AccessKeySecret string `opt:"accesskeysecret"`
	Region          string `opt:"region"`
	Internal        bool   `opt:"internal"`
}

func init() {
	registry.Register(backend.Descriptor{
		Name:      "ossblob",
		Protocols: []string{"oss"},
		Schema:    &Options{},
		Open:      open,
	})
}

type driver struct {
	bucket *oss.Bucket
	object string
	pos    int64
	size   int64
	body   io.ReadCloser
}

var (
	_ backend.Filler     = (*driver)(nil)
	_ backend.Seeker     = (*driver)(nil)
	_ backend.Controller = (*driver)(nil)
	_ backend.Closer     = (*driver)(nil)
)

func open(ctx streamctx.Context, rawURL string, mode backend.Mode, opts interface{}) (backend.Backend, backend.Attrs, backend.Status, error) {
	if mode == backend.ModeWrite {
		return nil, backend.Attrs{}, backend.StatusUnsupported, fmt.Errorf("ossblob: write mode not supported")
	}

	o, ok := opts.(*Options)
	if !ok || o.AccessKeyID == "" || o.AccessKeySecret == "" {
		return nil, backend.Attrs{}, backend.StatusError, fmt.Errorf("ossblob: accesskeyid and accesskeysecret options are required")
	}

	bucketName, object, err := parseURL(rawURL)
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}

	client := oss.NewOSSClient(oss.Region(o.Region), o.Internal, o.AccessKeyID, o.AccessKeySecret, false)
	d := &driver{bucket: client.Bucket(bucketName), object: object}

	resp, err := d.connectResponse(0)
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}
	d.body = resp.Body
	d.size = resp.ContentLength

	attrs := backend.Attrs{
		Flags:    backend.FlagSeek | backend.FlagSeekForward | backend.FlagStreaming,
		Type:     "ossblob",
		MimeType: resp.Header.Get("Content-Type"),
		EndPos:   d.size,
	}
	return d, attrs, backend.StatusOK, nil
}

func parseURL(rawURL string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(rawURL, "oss://")
	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		return "", "", fmt.Errorf("ossblob: url %q missing object key", rawURL)
	}
	return rest[:idx], rest[idx+1:], nil
}

func (d *driver) connectResponse(from int64) (*http.Response, error) {
	headers := http.Header{}
	headers.Set("Range", "bytes="+strconv.FormatInt(from, 10)+"-")
	return d.bucket.GetResponseWithHeaders(d.object, headers)
}

func (d *driver) connect(from int64) error {
	resp, err := d.connectResponse(from)
	if err != nil {
		return err
	}
	d.body = resp.Body
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
