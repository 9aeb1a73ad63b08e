package ice

import (
	"net"
	"sync/atomic"
)

// Socket is the local end of one candidate's UDP transport: a bound
// net.PacketConn plus the "fileno" identity the readiness drivers use to
// order and wait on sockets (spec.md §6: "Bound sockets expose fileno ...
// and addr"). Production sockets report their real OS file descriptor, so
// the readiness drivers can poll(2) them directly alongside caller-supplied
// fds; sockets that don't have one (e.g. an in-memory test double)
// report a synthetic negative id and simply can't be driven by the
// poll-based readiness drivers -- see DESIGN.md.
type Socket interface {
	net.PacketConn
	// Fileno returns this socket's OS file descriptor, or a negative
	// synthetic id if it doesn't have one.
	Fileno() int
	// Addr returns the socket's actual bound address.
	Addr() Address
}

// SocketFactory is the external collaborator that creates bound UDP
// sockets (spec.md §6). It is consumed, not implemented, by the core: the
// Agent asks it for a socket at candidate-creation time and otherwise never
// touches socket internals again.
type SocketFactory interface {
	// NewSocket binds a new UDP socket, preferring requested as the local
	// address (port 0 means "choose any free port"). It returns the bound
	// Socket, whose Addr() reflects where the kernel actually bound it.
	NewSocket(requested Address) (Socket, error)
}

var syntheticFilenoCounter int64

// nextSyntheticFileno hands out negative, monotonically-decreasing ids for
// sockets that have no real OS file descriptor (test doubles). Negative so
// they never collide with a real fd.
func nextSyntheticFileno() int {
	return -int(atomic.AddInt64(&syntheticFilenoCounter, 1))
}

// udpSocket is the production Socket backed by a real net.UDPConn.
type udpSocket struct {
	*net.UDPConn
	fileno int
	addr   Address
}

func (s *udpSocket) Fileno() int   { return s.fileno }
func (s *udpSocket) Addr() Address { return s.addr }

// udpSocketFactory is the default, production SocketFactory: it binds real
// UDP sockets via net.ListenUDP.
type udpSocketFactory struct{}

// NewUDPSocketFactory returns the SocketFactory used when an AgentConfig
// doesn't supply one: it binds real OS UDP sockets.
func NewUDPSocketFactory() SocketFactory {
	return udpSocketFactory{}
}

func (udpSocketFactory) NewSocket(requested Address) (Socket, error) {
	conn, err := net.ListenUDP("udp4", requested.UDPAddr())
	if err != nil {
		return nil, err
	}
	localAddr := conn.LocalAddr().(*net.UDPAddr)
	bound, err := NewAddress(localAddr.IP, localAddr.Port)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	fileno, err := udpConnFileno(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &udpSocket{UDPConn: conn, fileno: fileno, addr: bound}, nil
}

// udpConnFileno extracts the real OS file descriptor backing conn, so the
// readiness drivers can poll(2) it directly (spec.md §4.4/§5: "sockets are
// visited in ascending fd order").
func udpConnFileno(conn *net.UDPConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	ctrlErr := raw.Control(func(descriptor uintptr) {
		fd = int(descriptor)
	})
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}
