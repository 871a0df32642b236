// Package stream implements a buffered cursor engine: a uniform,
// byte-oriented, seekable read/write abstraction over pluggable transport
// backends (package backend). It handles partial
// reads, sector-aligned devices, forward-only/full-seek/write-only
// backends, peek-ahead, line-oriented reads with UTF-8/UTF-16 transcoding,
// in-buffer backward seeks, long seeks across sector boundaries,
// skip-past-EOF detection, capture tee-ing, and reconnect on transient
// failure for streaming backends.
//
// Cursors are constructed by package backend/registry, which resolves a
// URL to a backend and wraps it with NewFromBackend. Applications normally
// import backend/registry (and blank-import the concrete backend packages
// they want available) rather than constructing a Cursor directly.
package stream
