// Package registry is the backend registry and URL dispatcher: an ordered
// list of descriptors, filled by each backend package's init() via
// Register, and a single Open entry point that is the only constructor
// path for a Cursor.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mpvgo/stream"
	"github.com/mpvgo/stream/backend"
	"github.com/mpvgo/stream/backend/optparse"
	"github.com/mpvgo/stream/internal/context"
)

var (
	mu          sync.RWMutex
	descriptors []backend.Descriptor
)

// Register appends a backend descriptor to the ordered dispatch list.
// Order encodes priority: the first matching descriptor whose Open
// succeeds wins, so register a specific network backend before a generic
// fallback if it needs to claim a protocol first.
func Register(d backend.Descriptor) {
	mu.Lock()
	defer mu.Unlock()
	descriptors = append(descriptors, d)
}

// Open resolves rawURL to a backend and returns a ready Cursor.
func Open(ctx context.Context, rawURL string, mode backend.Mode) (*stream.Cursor, error) {
	mu.RLock()
	list := make([]backend.Descriptor, len(descriptors))
	copy(list, descriptors)
	mu.RUnlock()

	log := context.GetLogger(ctx)

	for _, d := range list {
		if len(d.Protocols) == 0 {
			log.Warnf("registry: backend %q has protocols == nil, it's a bug", d.Name)
			continue
		}

		matched := false
		for _, prefix := range d.Protocols {
			if matchesProtocol(prefix, rawURL) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		var opts interface{}
		if d.Schema != nil {
			var err error
			opts, err = optparse.Parse(rawURL, d.Schema)
			if err != nil {
				log.Errorf("registry: url option parsing failed on %q: %v", rawURL, err)
				return nil, err
			}
		}

		be, attrs, status, err := d.Open(ctx, rawURL, mode, opts)
		switch status {
		case backend.StatusOK:
			log.Debugf("registry: [%s] %s", d.Name, rawURL)
			return stream.NewFromBackend(ctx, rawURL, mode, be, attrs), nil
		case backend.StatusUnsupported:
			continue
		default:
			if err == nil {
				err = fmt.Errorf("registry: %s: failed to open %q", d.Name, rawURL)
			}
			log.Errorf("registry: %v", err)
			return nil, err
		}
	}

	return nil, fmt.Errorf("registry: no backend found to handle url %q", rawURL)
}

// matchesProtocol implements the prefix-matching rule: an empty prefix
// matches any URL with no "://" in it; otherwise the prefix must match
// case-insensitively, immediately followed by "://".
func matchesProtocol(prefix, rawURL string) bool {
	if prefix == "" {
		return !strings.Contains(rawURL, "://")
	}
	if len(rawURL) < len(prefix)+3 {
		return false
	}
	return strings.EqualFold(rawURL[:len(prefix)], prefix) && rawURL[len(prefix):len(prefix)+3] == "://"
}

// OpenRead opens rawURL for reading.
func OpenRead(ctx context.Context, rawURL string) (*stream.Cursor, error) {
	return Open(ctx, rawURL, backend.ModeRead)
}

// OpenWrite opens rawURL for writing.
func OpenWrite(ctx context.Context, rawURL string) (*stream.Cursor, error) {
	return Open(ctx, rawURL, backend.ModeWrite)
}
