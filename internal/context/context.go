// Package context adapts the standard context package with a logger that
// travels with the context, the way a top-level context package does for
// HTTP request handling.
package context

import "context"

// Context is a copy of Context from the standard context package, kept as
// its own type so call sites in this module read as domain code rather than
// stdlib plumbing.
type Context interface {
	context.Context
}

// Background returns a non-nil, empty Context.
func Background() Context {
	return context.Background()
}

// WithValue returns a copy of parent in which the value associated with key
// is val.
func WithValue(parent Context, key, val interface{}) Context {
	return context.WithValue(parent, key, val)
}
