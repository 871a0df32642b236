// Package s3 implements the s3:// backend over Amazon S3, grounded on the
// distribution s3-aws storage driver's use of aws-sdk-go: a session built
// from the environment/region, GetObject with a byte Range for seeking,
// and awserr.Error inspection for range-miss handling.
package s3

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/backend/registry"
	streamctx "github.com/mpvgo/stream/internal/context"
)

// Options are the s3:// query parameters decoded by backend/optparse.
type Options struct {
	Region string `opt:"region"`
}

func init() {
	registry.Register(backend.Descriptor{
		Name:      "s3",
		Protocols: []string{"s3"},
		Schema:    &Options{},
		Open:      open,
	})
}

type driver struct {
	svc    *s3.S3
	bucket string
	key    string
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
		return nil, backend.Attrs{}, backend.StatusUnsupported, fmt.Errorf("s3: write mode not supported")
	}

	bucket, key, err := parseURL(rawURL)
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}

	region := ""
	if o, ok := opts.(*Options); ok {
		region = o.Region
	}

	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}

	d := &driver{svc: s3.New(sess), bucket: bucket, key: key}

	head, err := d.svc.HeadObject(&s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, backend.Attrs{}, backend.StatusError, err
	}
	if head.ContentLength != nil {
		d.size = *head.ContentLength
	}

	attrs := backend.Attrs{
		Flags:  backend.FlagSeek | backend.FlagSeekForward | backend.FlagStreaming,
		Type:   "s3",
		EndPos: d.size,
	}
	if head.ContentType != nil {
		attrs.MimeType = *head.ContentType
	}
	return d, attrs, backend.StatusOK, nil
}

func parseURL(rawURL string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(rawURL, "s3://")
	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		return "", "", fmt.Errorf("s3: url %q missing object key", rawURL)
	}
	return rest[:idx], rest[idx+1:], nil
}

func (d *driver) connect(from int64) error {
	out, err := d.svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key),
		Range:  aws.String("bytes=" + strconv.FormatInt(from, 10) + "-"),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == "InvalidRange" {
			d.body = io.NopCloser(bytes.NewReader(nil))
			d.pos = from
			return nil
		}
		return err
	}
	d.body = out.Body
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
