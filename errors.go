package ice

import "errors"

// ErrInvalidComponentCount is returned by AddStream when n_components != 1,
// the only component count this core supports. Per spec, the agent remains
// usable after this error; only the failed AddStream call is aborted.
var ErrInvalidComponentCount = errors.New("ice: only a single component per stream is supported")

// ErrSocketAllocation is returned when the socket factory fails to bind a
// local candidate's socket. Fatal to the enclosing AddStream call: the
// candidate that failed is not added, and the call returns this error.
var ErrSocketAllocation = errors.New("ice: socket factory failed to allocate a local candidate socket")

// ErrAlreadyAttached is returned by MainContextAttach when the agent already
// has an external readiness source attached; attachment is at most once per
// agent lifetime.
var ErrAlreadyAttached = errors.New("ice: agent is already attached to a readiness source")

// ErrNotIPv4 is returned wherever a non-IPv4 address reaches a boundary that
// only understands IPv4; IPv6 is explicitly out of scope for this core.
var ErrNotIPv4 = errors.New("ice: only IPv4 addresses are supported")
