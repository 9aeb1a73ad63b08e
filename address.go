package ice

import (
	"fmt"
	"net"
)

// Address is an opaque IPv4 address plus UDP port. It is a plain value type:
// copying an Address copies the whole thing, and two Addresses compare equal
// iff their bytes are bit-exact. A Port of 0 means "unbound, to be chosen".
type Address struct {
	ip   [4]byte
	port uint16
}

// NewAddress builds an Address from a net.IP and a port. Non-IPv4 addresses
// are rejected; IPv6 is out of scope for this core.
func NewAddress(ip net.IP, port int) (Address, error) {
	v4 := ip.To4()
	if v4 == nil {
		return Address{}, fmt.Errorf("%w: %v is not an IPv4 address", ErrNotIPv4, ip)
	}
	var a Address
	copy(a.ip[:], v4)
	a.port = uint16(port)
	return a, nil
}

// MustAddress is NewAddress but panics on error, for use with literal
// addresses known to be valid at compile time (tests, examples).
func MustAddress(ip net.IP, port int) Address {
	a, err := NewAddress(ip, port)
	if err != nil {
		panic(err)
	}
	return a
}

// IP returns a copy of the address's IP bytes.
func (a Address) IP() net.IP {
	ip := make(net.IP, 4)
	copy(ip, a.ip[:])
	return ip
}

// Port returns the UDP port, or 0 if unbound.
func (a Address) Port() int {
	return int(a.port)
}

// WithPort returns a copy of a with the port replaced.
func (a Address) WithPort(port int) Address {
	a.port = uint16(port)
	return a
}

// IsUnbound reports whether the port is 0, i.e. "to be chosen".
func (a Address) IsUnbound() bool {
	return a.port == 0
}

// Equal reports bit-exact equality of (ip, port).
func (a Address) Equal(b Address) bool {
	return a.ip == b.ip && a.port == b.port
}

// UDPAddr converts to the stdlib net.UDPAddr, for use with the socket
// factory boundary.
func (a Address) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: a.IP(), Port: a.Port()}
}

// String renders "ip:port".
func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", a.ip[0], a.ip[1], a.ip[2], a.ip[3], a.port)
}

// udpAddrToAddress converts a net.Addr returned by a Socket's ReadFrom into
// an Address, rejecting anything that isn't a plain IPv4 UDP address.
func udpAddrToAddress(addr net.Addr) (Address, error) {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return Address{}, ErrNotIPv4
	}
	return NewAddress(udpAddr.IP, udpAddr.Port)
}
