package ice

import "sort"

// ReadinessSource is the external event-loop abstraction MainContextAttach
// registers candidate sockets with (spec.md §4.1/§4.4 "external loop
// attachment"), the Go analogue of a GMainContext. It is the only driver
// that retains per-socket state (spec.md §9): each Attach call is expected
// to keep watching fd until the returned detach func is called.
type ReadinessSource interface {
	// Attach arranges for onReadable to be invoked (on whatever goroutine
	// the source chooses) every time fd becomes readable, and returns a
	// func that stops that.
	Attach(fd int, onReadable func()) (detach func(), err error)
}

// candidatesSortedByFileno returns a component's local candidates sorted by
// ascending fileno, the ordering spec.md §4.4/§5 requires readiness passes
// to honor.
func candidatesSortedByFileno(component *Component) []*Candidate {
	out := component.localCandidatesSnapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].Fileno() < out[j].Fileno() })
	return out
}

// Recv blocks until a non-STUN (application) datagram is available on some
// local candidate of (streamID, componentID), processing STUN in-line, and
// returns the first application datagram's length once one arrives
// (spec.md §4.1).
func (a *Agent) Recv(streamID uint64, componentID uint16, buf []byte) int {
	stream, component, ok := a.findComponent(streamID, componentID)
	if !ok {
		return 0
	}

	for {
		candidates := candidatesSortedByFileno(component)
		if len(candidates) == 0 {
			// Nothing to ever become readable on: a component with no
			// local candidates can't receive anything. Unlike a real
			// select() with an empty fd set blocking indefinitely, we
			// return immediately -- there is no other event that could
			// ever wake this call.
			return 0
		}

		fds := make([]int, len(candidates))
		for i, c := range candidates {
			fds[i] = c.Fileno()
		}

		ready, err := pollReadable(fds, -1)
		if err != nil {
			a.log.Errorf("s%d:%d: poll failed: %v", streamID, componentID, err)
			return 0
		}

		for _, candidate := range candidates {
			if !ready[candidate.Fileno()] {
				continue
			}
			if n := a.processCandidateOnce(stream, component, candidate, buf); n > 0 {
				return n
			}
		}
	}
}

// RecvSock reads and classifies exactly one datagram from a single known
// local candidate socket, identified by fileno (spec.md §4.1). Unlike Recv
// it doesn't wait across every candidate of the component first; its
// blocking behavior is whatever the underlying socket read does.
func (a *Agent) RecvSock(streamID uint64, componentID uint16, fileno int, buf []byte) int {
	stream, component, ok := a.findComponent(streamID, componentID)
	if !ok {
		return 0
	}
	for _, candidate := range component.localCandidates {
		if candidate.Fileno() == fileno {
			return a.processCandidateOnce(stream, component, candidate, buf)
		}
	}
	return 0
}

// PollRead performs one readiness wait mixing every local candidate socket
// of every stream with the caller-supplied otherFds; for each ready agent
// socket it consumes one datagram and, if it was application data, invokes
// callback; it returns the subset of otherFds that were ready (spec.md
// §4.1).
func (a *Agent) PollRead(otherFds []int, callback RecvFunc) []int {
	type owned struct {
		stream    *Stream
		component *Component
		candidate *Candidate
	}

	var all []owned
	for _, stream := range a.streams {
		component := stream.Component()
		for _, candidate := range candidatesSortedByFileno(component) {
			all = append(all, owned{stream, component, candidate})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].candidate.Fileno() < all[j].candidate.Fileno() })

	fds := make([]int, 0, len(all)+len(otherFds))
	for _, o := range all {
		fds = append(fds, o.candidate.Fileno())
	}
	fds = append(fds, otherFds...)

	ready, err := pollReadable(fds, -1)
	if err != nil {
		a.log.Errorf("poll failed: %v", err)
		return nil
	}

	buf := make([]byte, receiveMTU)
	for _, o := range all {
		if !ready[o.candidate.Fileno()] {
			continue
		}
		if n := a.processCandidateOnce(o.stream, o.component, o.candidate, buf); n > 0 && callback != nil {
			callback(o.stream.ID(), o.component.ID(), buf[:n])
		}
	}

	var readyOther []int
	for _, fd := range otherFds {
		if ready[fd] {
			readyOther = append(readyOther, fd)
		}
	}
	return readyOther
}

// MainContextAttach registers each local candidate socket of every stream
// with source so that each readable event performs one read-and-classify
// and delivers application data via callback. At-most-once per agent
// (spec.md §4.1): returns ErrAlreadyAttached if called again.
func (a *Agent) MainContextAttach(source ReadinessSource, callback RecvFunc) (bool, error) {
	if a.attached {
		return false, ErrAlreadyAttached
	}

	for _, stream := range a.streams {
		stream := stream
		component := stream.Component()
		for _, candidate := range component.localCandidates {
			candidate := candidate
			_, err := source.Attach(candidate.Fileno(), func() {
				buf := make([]byte, receiveMTU)
				if n := a.processCandidateOnce(stream, component, candidate, buf); n > 0 && callback != nil {
					callback(stream.ID(), component.ID(), buf[:n])
				}
			})
			if err != nil {
				return false, err
			}
		}
	}

	a.attached = true
	return true, nil
}
