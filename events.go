package ice

// ComponentStateChangedHandler is invoked synchronously whenever a
// Component's state changes (spec.md §6: "component-state-changed(stream_id,
// component_id, new_state)"). It is the Go replacement for the source's
// GObject signal: a single listener slot set by the embedder, called
// in-line from whichever call triggered the transition.
type ComponentStateChangedHandler func(streamID uint64, componentID uint16, state ComponentState)

// RecvFunc is the callback application data is delivered through from
// PollRead and MainContextAttach (spec.md §6: "(agent, stream_id,
// component_id, bytes, user)"; the user pointer is just the closure's
// environment in Go).
type RecvFunc func(streamID uint64, componentID uint16, data []byte)
