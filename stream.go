package ice

// Stream is a named grouping of exactly one Component; the current core
// supports only single-component streams (RTP without a paired RTCP
// component). A Stream's Component lifetime is exactly the Stream's
// lifetime: destroying the Stream destroys the Component and all its
// candidates.
type Stream struct {
	id        uint64
	component *Component
}

func newStream(id uint64) *Stream {
	return &Stream{id: id, component: newComponent(1)}
}

// ID returns the stream id, assigned monotonically by the owning Agent
// starting at 1.
func (s *Stream) ID() uint64 {
	return s.id
}

// Component returns the stream's single Component.
func (s *Stream) Component() *Component {
	return s.component
}

func (s *Stream) close() {
	s.component.close()
}
