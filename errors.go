package stream

import "errors"

// Sentinel errors for the non-fatal outcomes a Cursor can report.
var (
	// ErrUnsupported names an operation the backend does not support
	// (e.g. seeking on a linear stream). No function in this package
	// returns it: Cursor methods report such failures through their bool
	// or int results.
	ErrUnsupported = errors.New("stream: operation not supported by backend")

	// ErrSeekBackward names a backward seek on a backend without
	// SEEK_BW. No function in this package returns it: seekUnbuffered
	// reports that case as seekFailed.
	ErrSeekBackward = errors.New("stream: cannot seek backward in linear stream")

	// ErrSeekFailed is returned by Std.Seek when the cursor's Seek
	// reports failure.
	ErrSeekFailed = errors.New("stream: seek failed")

	// ErrNoBackend is returned by WriteBuffer when the backend has no
	// write primitive.
	ErrNoBackend = errors.New("stream: backend does not support this direction")

	// ErrSizeLimit is the read_complete size-misuse rail: callers must
	// never pass max_size above the hard limit.
	ErrSizeLimit = errors.New("stream: read_complete max_size exceeds hard limit")

	// ErrTooLarge is returned by ReadComplete when the resource is known,
	// or turns out, to exceed the requested max_size.
	ErrTooLarge = errors.New("stream: resource exceeds max_size")

	// ErrInterrupted names a cooperative cancellation during a reconnect
	// attempt. No function in this package returns it: reconnect reports
	// the cancellation as a failed reconnect.
	ErrInterrupted = errors.New("stream: interrupted")
)
