package ice

import (
	"github.com/pion/stun"
)

// receiveMTU is the floor of the scratch buffer processCandidateOnce reads
// into before classifying a datagram; the scratch buffer is grown past buf
// when buf is larger, so the oversized-datagram check always has room to
// see a datagram bigger than buf rather than silently truncating it.
const receiveMTU = 1500

// processCandidateOnce is the single internal primitive spec.md §9 asks
// for: given a socket that's ready, perform exactly one read, classify the
// datagram, and either hand application data back to the caller or dispatch
// it to the STUN handler. All three public readiness drivers (Recv,
// RecvSock, PollRead) and the MainContextAttach callback funnel through
// this one function.
//
// Returns the number of application-data bytes written into buf, or 0 if
// the datagram was STUN, empty, malformed, unclassifiable, or too large for
// buf (spec.md §4.2).
func (a *Agent) processCandidateOnce(stream *Stream, component *Component, candidate *Candidate, buf []byte) int {
	// scratch must stay strictly larger than buf: otherwise a datagram
	// bigger than buf but no bigger than receiveMTU would be read in full
	// (n <= len(scratch)) yet still satisfy n <= len(buf), defeating the
	// oversized-datagram check below instead of triggering it.
	scratchLen := receiveMTU
	if len(buf)+1 > scratchLen {
		scratchLen = len(buf) + 1
	}
	scratch := make([]byte, scratchLen)
	n, addr, err := candidate.sock.ReadFrom(scratch)
	if err != nil || n == 0 {
		return 0
	}

	from, err := udpAddrToAddress(addr)
	if err != nil {
		a.log.Warnf("s%d:%d: datagram from non-IPv4 source %s ignored", stream.ID(), component.ID(), addr)
		return 0
	}

	if n > len(buf) {
		// Buffer is not big enough to accept this packet; discard.
		return 0
	}

	switch classify(scratch[0]) {
	case classApplication:
		return copy(buf, scratch[:n])

	case classStun:
		msg := &stun.Message{Raw: make([]byte, n)}
		copy(msg.Raw, scratch[:n])
		if err := msg.Decode(); err != nil {
			a.log.Debugf("s%d:%d: failed to decode STUN message from %s: %v", stream.ID(), component.ID(), from, err)
			return 0
		}
		a.handleStun(stream, component, candidate, from, msg)
		return 0

	default:
		return 0
	}
}

type datagramClass int

const (
	classOther datagramClass = iota
	classApplication
	classStun
)

// classify implements the two-bit multiplex of spec.md §4.2 and §6: the top
// two bits of an RTP message are always the version number 2 (0b10); the
// top two bits of a STUN message are always 0 (0b00). Anything else is
// discarded.
func classify(firstByte byte) datagramClass {
	switch firstByte & 0xc0 {
	case 0x80:
		return classApplication
	case 0x00:
		return classStun
	default:
		return classOther
	}
}
