package ice

import (
	"github.com/pion/logging"
)

// AgentConfig configures a new Agent. Every field is optional; zero values
// fall back to the production defaults (real UDP sockets, a crypto-backed
// RNG, a default logger factory). Mirrors the source's GObject-construction
// properties ("socket-factory", "stun-server") expressed as idiomatic Go
// functional defaults rather than a property system (spec.md §2.3).
type AgentConfig struct {
	// SocketFactory allocates the sockets backing local candidates.
	SocketFactory SocketFactory
	// LoggerFactory builds the agent's scoped LeveledLogger.
	LoggerFactory logging.LoggerFactory
	// RNG generates local-candidate credentials.
	RNG RNG
	// StunServer is the STUN server hostname to use for server-reflexive
	// gathering. Unused by the core (spec.md §3): see the srflx package.
	StunServer string
}

// Agent is the top-level container of spec.md §3/§4.1: it owns a set of
// Streams keyed by id, the list of registered local interface addresses,
// the RNG, and the socket factory, and exposes the public ICE-core
// contract.
//
// Scheduling model: single-threaded cooperative (spec.md §5). Every
// exported method here must be serialised by the caller; Agent performs no
// internal locking of its own.
type Agent struct {
	log           logging.LeveledLogger
	socketFactory SocketFactory
	rng           RNG
	stunServer    string

	nextStreamID    uint64
	nextCandidateID uint64

	localAddresses []Address
	streams        map[uint64]*Stream

	onComponentStateChange ComponentStateChangedHandler
	attached               bool
}

// NewAgent creates a new Agent. Counters start at 1; the stream and
// address lists start empty (spec.md §4.1 "new").
func NewAgent(config *AgentConfig) *Agent {
	if config == nil {
		config = &AgentConfig{}
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	socketFactory := config.SocketFactory
	if socketFactory == nil {
		socketFactory = NewUDPSocketFactory()
	}

	rng := config.RNG
	if rng == nil {
		rng = NewDefaultRNG()
	}

	return &Agent{
		log:             loggerFactory.NewLogger("ice"),
		socketFactory:   socketFactory,
		rng:             rng,
		stunServer:      config.StunServer,
		nextStreamID:    1,
		nextCandidateID: 1,
		streams:         make(map[uint64]*Stream),
	}
}

// OnComponentStateChange sets the listener invoked synchronously whenever a
// Component transitions state (spec.md §6/§9).
func (a *Agent) OnComponentStateChange(h ComponentStateChangedHandler) {
	a.onComponentStateChange = h
}

// AddLocalAddress records a local interface address with its port forced
// to 0. Duplicates are not deduplicated, and pre-existing streams don't
// retroactively gain a candidate for it (spec.md §4.1, §9 open question:
// the source doesn't either).
func (a *Agent) AddLocalAddress(addr Address) {
	a.localAddresses = append(a.localAddresses, addr.WithPort(0))
}

// AddStream creates a new Stream with nComponents components, which must
// be 1. It allocates one HOST candidate per registered local address,
// invoking the socket factory for each; a socket allocation failure is
// fatal to this call, and the stream already under construction is torn
// down rather than left half-built (spec.md §4.5, §7).
func (a *Agent) AddStream(nComponents int) (uint64, error) {
	if nComponents != 1 {
		return 0, ErrInvalidComponentCount
	}

	stream := newStream(a.nextStreamID)

	for _, localAddr := range a.localAddresses {
		if err := a.addLocalHostCandidate(stream, localAddr); err != nil {
			stream.close()
			return 0, err
		}
	}

	a.streams[stream.ID()] = stream
	a.nextStreamID++
	return stream.ID(), nil
}

// addLocalHostCandidate implements spec.md §4.5: assign the next candidate
// id, generate printable username/password from the agent RNG, ask the
// socket factory for a socket bound to addr, then let the socket's actual
// bound address become both Addr and BaseAddr.
func (a *Agent) addLocalHostCandidate(stream *Stream, addr Address) error {
	username, err := a.rng.GeneratePrintable(credentialWidth)
	if err != nil {
		return err
	}
	password, err := a.rng.GeneratePrintable(credentialWidth)
	if err != nil {
		return err
	}

	sock, err := a.socketFactory.NewSocket(addr)
	if err != nil {
		return ErrSocketAllocation
	}

	candidate := newLocalCandidate(a.nextCandidateID, stream.ID(), stream.Component().ID(), CandidateTypeHost, username, password, sock)
	a.nextCandidateID++
	stream.Component().addLocalCandidate(candidate)
	return nil
}

// RemoveStream destroys streamID and all its resources (every local
// candidate's socket, in definition order). No-op if streamID is unknown
// (spec.md §4.1).
func (a *Agent) RemoveStream(streamID uint64) {
	stream, ok := a.streams[streamID]
	if !ok {
		return
	}
	stream.close()
	delete(a.streams, streamID)
}

// AddRemoteCandidate appends a candidate the peer signalled to us. No-op if
// (streamID, componentID) doesn't resolve to a known component. Username
// and password are stored truncated to the fixed credential width (spec.md
// §4.1, §4.5).
func (a *Agent) AddRemoteCandidate(streamID uint64, componentID uint16, typ CandidateType, addr Address, username, password string) {
	_, component, ok := a.findComponent(streamID, componentID)
	if !ok {
		return
	}
	component.addRemoteCandidate(newRemoteCandidate(streamID, componentID, typ, addr, username, password))
}

// GetLocalCandidates returns a snapshot of (streamID, componentID)'s local
// candidates, or nil if the component is unknown. The caller owns the
// returned slice, never the candidates it points to (spec.md §4.1).
func (a *Agent) GetLocalCandidates(streamID uint64, componentID uint16) []*Candidate {
	_, component, ok := a.findComponent(streamID, componentID)
	if !ok {
		return nil
	}
	return component.localCandidatesSnapshot()
}

// GetRemoteCandidates is GetLocalCandidates's remote-side counterpart.
func (a *Agent) GetRemoteCandidates(streamID uint64, componentID uint16) []*Candidate {
	_, component, ok := a.findComponent(streamID, componentID)
	if !ok {
		return nil
	}
	return component.remoteCandidatesSnapshot()
}

// Send transmits data once over the component's active candidate to its
// peer address, if both are set; otherwise the data is silently dropped
// (spec.md §4.1).
func (a *Agent) Send(streamID uint64, componentID uint16, data []byte) {
	_, component, ok := a.findComponent(streamID, componentID)
	if !ok {
		return
	}
	active := component.ActiveCandidate()
	peer := component.PeerAddr()
	if active == nil || peer == nil {
		return
	}
	if _, err := active.sock.WriteTo(data, peer.UDPAddr()); err != nil {
		a.log.Warnf("s%d:%d: send to %s failed: %v", streamID, componentID, peer, err)
	}
}

// Close tears down every stream and its resources, mirroring
// nice_agent_dispose. Streams are visited in map order, which is
// unspecified; within each stream, candidates and their sockets are
// released in definition order (spec.md §3, "destruction of a component
// releases all candidates and their sockets in definition order").
func (a *Agent) Close() error {
	for id, stream := range a.streams {
		stream.close()
		delete(a.streams, id)
	}
	a.localAddresses = nil
	return nil
}

// findComponent resolves (streamID, componentID) to its owning Stream and
// Component, returning ok=false if either id is unknown -- the Go
// equivalent of the source's find_component, which only ever recognises
// componentID 1 (spec.md §3: "always 1 in this core").
func (a *Agent) findComponent(streamID uint64, componentID uint16) (*Stream, *Component, bool) {
	if componentID != 1 {
		return nil, nil, false
	}
	stream, ok := a.streams[streamID]
	if !ok {
		return nil, nil, false
	}
	return stream, stream.Component(), true
}
