package ice

// CandidateType identifies what kind of transport address a Candidate
// advertises. RELAYED and SERVER_REFLEXIVE are recognised but never
// produced by this core: TURN relays and server-reflexive gathering via an
// external STUN server are explicit non-goals (spec.md §1).
type CandidateType int

const (
	CandidateTypeHost CandidateType = iota
	CandidateTypeServerReflexive
	CandidateTypePeerReflexive
	CandidateTypeRelayed
)

func (t CandidateType) String() string {
	switch t {
	case CandidateTypeHost:
		return "host"
	case CandidateTypeServerReflexive:
		return "srflx"
	case CandidateTypePeerReflexive:
		return "prflx"
	case CandidateTypeRelayed:
		return "relay"
	default:
		return "unknown"
	}
}

// credentialWidth is the fixed width of a local candidate's generated
// username/password, and the truncation width applied to caller-supplied
// remote credentials (spec.md §3, §4.5). The source truncates silently
// rather than rejecting oversized input; this port preserves that for
// parity even though §9 flags it as worth reconsidering.
const credentialWidth = 8

// newCredential stores s as a fixed-width credential, truncating anything
// longer than credentialWidth bytes. Shorter input is kept at its natural
// length.
func newCredential(s string) string {
	if len(s) > credentialWidth {
		return s[:credentialWidth]
	}
	return s
}

// Candidate is a transport-address endpoint of known type, with the
// credentials used to authenticate STUN Binding checks against it. Local
// candidates additionally own a Socket for their entire lifetime; remote
// candidates (signalled by the peer) do not.
//
// Invariants: a local candidate owns exactly one socket for its entire
// lifetime; Addr and BaseAddr are identical for HOST candidates once bound;
// Username and Password are non-empty ASCII.
type Candidate struct {
	id          uint64 // 0 for remote candidates
	streamID    uint64
	componentID uint16
	typ         CandidateType

	addr     Address
	baseAddr Address

	username string
	password string

	// sock is non-nil only for local candidates.
	sock Socket
}

func newLocalCandidate(id, streamID uint64, componentID uint16, typ CandidateType, username, password string, sock Socket) *Candidate {
	return &Candidate{
		id:          id,
		streamID:    streamID,
		componentID: componentID,
		typ:         typ,
		addr:        sock.Addr(),
		baseAddr:    sock.Addr(),
		username:    newCredential(username),
		password:    newCredential(password),
		sock:        sock,
	}
}

func newRemoteCandidate(streamID uint64, componentID uint16, typ CandidateType, addr Address, username, password string) *Candidate {
	return &Candidate{
		streamID:    streamID,
		componentID: componentID,
		typ:         typ,
		addr:        addr,
		baseAddr:    addr,
		username:    newCredential(username),
		password:    newCredential(password),
	}
}

// ID returns the candidate's stable numeric id. Remote candidates always
// report 0: the source never assigns them one ("XXX: do remote candidates
// need IDs?" in the original is answered "no" for this core).
func (c *Candidate) ID() uint64 { return c.id }

// StreamID returns the id of the owning Stream.
func (c *Candidate) StreamID() uint64 { return c.streamID }

// ComponentID returns the id of the owning Component, always 1.
func (c *Candidate) ComponentID() uint16 { return c.componentID }

// Type returns the candidate's type tag.
func (c *Candidate) Type() CandidateType { return c.typ }

// Addr returns the candidate's advertised transport address.
func (c *Candidate) Addr() Address { return c.addr }

// BaseAddr returns the local interface address probes originate from.
func (c *Candidate) BaseAddr() Address { return c.baseAddr }

// Username returns the candidate's credential username.
func (c *Candidate) Username() string { return c.username }

// Password returns the candidate's credential password.
func (c *Candidate) Password() string { return c.password }

// IsLocal reports whether this candidate owns a socket.
func (c *Candidate) IsLocal() bool { return c.sock != nil }

// Fileno returns the owning socket's readiness-ordering identity, or -1 for
// remote candidates.
func (c *Candidate) Fileno() int {
	if c.sock == nil {
		return -1
	}
	return c.sock.Fileno()
}

func (c *Candidate) close() {
	if c.sock != nil {
		_ = c.sock.Close()
	}
}
