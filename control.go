package stream

import "github.com/mpvgo/stream/backend"

// Status and ControlCmd are re-exported from package backend so that
// callers of the Cursor API don't need to import backend just to name a
// control command or inspect a result status.
type (
	Status     = backend.Status
	ControlCmd = backend.ControlCmd
)

const (
	StatusOK          = backend.StatusOK
	StatusError       = backend.StatusError
	StatusUnsupported = backend.StatusUnsupported

	CmdGetSize         = backend.CmdGetSize
	CmdReconnect       = backend.CmdReconnect
	CmdSetContents     = backend.CmdSetContents
	CmdManagesTimeline = backend.CmdManagesTimeline
)

// Control sends a typed command to the backend's out-of-band control
// channel. Backends that don't implement Controller, or that don't
// recognize cmd, report StatusUnsupported.
func (c *Cursor) Control(cmd ControlCmd, arg interface{}) (interface{}, Status) {
	if c.controller == nil {
		return nil, StatusUnsupported
	}
	return c.controller.Control(cmd, arg)
}

// ManagesTimeline reports whether the backend handles its own
// chapter/timeline bookkeeping.
func (c *Cursor) ManagesTimeline() bool {
	_, status := c.Control(CmdManagesTimeline, nil)
	return status == StatusOK
}
