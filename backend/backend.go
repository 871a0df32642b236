// Package backend defines the contract every transport backend implements,
// the way a storagedriver package defines a StorageDriver interface for
// its object-storage backends. A backend is resolved and instantiated by
// backend/registry; the resulting value is driven exclusively by the
// buffered cursor in package stream.
package backend

import "github.com/mpvgo/stream/internal/context"

// Mode is the direction a cursor was opened for.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

// Flags mirrors the stream_t flag bits from the original C source: which
// seek capabilities and reconnect semantics a backend advertises.
type Flags uint8

const (
	// FlagSeek means arbitrary seeks are supported.
	FlagSeek Flags = 1 << iota
	// FlagSeekForward means only forward seeks are cheap/possible.
	FlagSeekForward
	// FlagSeekBackward means backward seeks are possible.
	FlagSeekBackward
	// FlagStreaming marks a backend as a reconnectable live connection.
	FlagStreaming
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Backend is deliberately empty: every real capability is optional and
// discovered by type-asserting to the interfaces below, in place of a
// vtable of nilable function pointers.
type Backend interface{}

// Filler is implemented by backends that can be read from.
type Filler interface {
	// FillBuffer reads up to len(dst) bytes. It returns n>0 on partial or
	// full success, n==0 with err==nil or err==io.EOF at end of stream, and
	// a non-nil err for any other failure. Partial reads are normal and do
	// not indicate an error.
	FillBuffer(dst []byte) (n int, err error)
}

// Seeker is implemented by backends that can reposition their read/write
// cursor. Seek reports whether the seek succeeded.
type Seeker interface {
	Seek(target int64) bool
}

// BufWriter is implemented by backends that accept writes.
type BufWriter interface {
	WriteBuffer(src []byte) (n int, err error)
}

// Status is the three-valued result of a Control call.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusUnsupported
)

// ControlCmd enumerates the out-of-band control channel commands.
type ControlCmd int

const (
	CmdGetSize ControlCmd = iota
	CmdReconnect
	CmdSetContents
	CmdManagesTimeline
)

// Controller is implemented by backends that expose the typed control
// channel (GET_SIZE, RECONNECT, SET_CONTENTS, MANAGES_TIMELINE, ...).
type Controller interface {
	Control(cmd ControlCmd, arg interface{}) (result interface{}, status Status)
}

// Closer is implemented by backends that hold resources to release.
type Closer interface {
	Close() error
}

// Attrs carries the attributes a backend's Open populates on the cursor:
// flags, sector alignment, preferred read chunk, and descriptive fields.
// An unset ReadChunk is defaulted by stream.NewFromBackend; MimeType is
// used as given.
type Attrs struct {
	Flags       Flags
	SectorSize  int
	ReadChunk   int
	MimeType    string
	Type        string
	StartPos    int64
	EndPos      int64
}

// OpenFunc constructs a Backend for rawURL opened in the given mode, using
// driver-specific options already decoded from the URL by the registry
// (see backend/optparse). Return StatusUnsupported (with any error) to
// let the registry continue scanning to the next descriptor; return
// StatusError to abort dispatch entirely; return StatusOK with a non-nil
// Backend on success.
type OpenFunc func(ctx context.Context, rawURL string, mode Mode, opts interface{}) (Backend, Attrs, Status, error)

// Descriptor is the immutable record a backend package registers itself
// with, mirroring a StorageDriverFactory pattern but keyed by protocol
// prefix instead of a bare name.
type Descriptor struct {
	// Name identifies the backend in logs and errors.
	Name string
	// Protocols lists the URL scheme prefixes this backend claims. An empty
	// string entry matches any URL with no "://" in it at all, the "bare
	// path" fallback case, conventionally given to the lowest-priority
	// descriptor in the registry.
	Protocols []string
	// Schema is the opaque option schema used to decode URL query options
	// before Open is called; nil means the backend takes no options.
	Schema interface{}
	// Open constructs the backend.
	Open OpenFunc
}
