package ice

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/packetio"
)

// fakeSocket is a Socket test double that queues inbound datagrams through
// a pion/transport packetio.Buffer (so ReadFrom blocks the same way a real
// socket's would) and records outbound writes for assertions, instead of
// going through a real kernel socket. It has no OS file descriptor, so it
// can't be driven through the poll(2)-based readiness drivers -- tests that
// need those use real loopback sockets instead (see agent_test.go); tests
// using fakeSocket call processCandidateOnce directly.
type fakeSocket struct {
	in     *packetio.Buffer
	addr   Address
	fileno int

	mu   sync.Mutex
	sent []sentPacket
}

type sentPacket struct {
	to   Address
	data []byte
}

func newFakeSocket(addr Address) *fakeSocket {
	return &fakeSocket{in: packetio.NewBuffer(), addr: addr, fileno: nextSyntheticFileno()}
}

// deliver simulates a datagram arriving on this socket from 'from'.
func (s *fakeSocket) deliver(from Address, payload []byte) {
	header := make([]byte, 6)
	ip := from.IP().To4()
	copy(header[0:4], ip)
	binary.BigEndian.PutUint16(header[4:6], uint16(from.Port()))
	_, _ = s.in.Write(append(header, payload...))
}

func (s *fakeSocket) ReadFrom(p []byte) (int, net.Addr, error) {
	framed := make([]byte, len(p)+6)
	n, err := s.in.Read(framed)
	if err != nil {
		return 0, nil, err
	}
	from := MustAddress(net.IP(framed[0:4]), int(binary.BigEndian.Uint16(framed[4:6])))
	copied := copy(p, framed[6:n])
	return copied, from.UDPAddr(), nil
}

func (s *fakeSocket) WriteTo(p []byte, addr net.Addr) (int, error) {
	to, err := udpAddrToAddress(addr)
	if err != nil {
		return 0, err
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	s.mu.Lock()
	s.sent = append(s.sent, sentPacket{to: to, data: cp})
	s.mu.Unlock()
	return len(p), nil
}

func (s *fakeSocket) lastSent() (sentPacket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentPacket{}, false
	}
	return s.sent[len(s.sent)-1], true
}

func (s *fakeSocket) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *fakeSocket) Close() error                      { return s.in.Close() }
func (s *fakeSocket) LocalAddr() net.Addr               { return s.addr.UDPAddr() }
func (s *fakeSocket) SetDeadline(t time.Time) error      { return nil }
func (s *fakeSocket) SetReadDeadline(t time.Time) error  { return nil }
func (s *fakeSocket) SetWriteDeadline(t time.Time) error { return nil }
func (s *fakeSocket) Fileno() int                        { return s.fileno }
func (s *fakeSocket) Addr() Address                      { return s.addr }
