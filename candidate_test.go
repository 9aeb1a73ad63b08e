package ice

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredentialTruncates(t *testing.T) {
	assert.Equal(t, "ABCDEFGH", newCredential("ABCDEFGHIJKL"))
	assert.Equal(t, "AB", newCredential("AB"))
	assert.Equal(t, "", newCredential(""))
}

func TestNewLocalCandidateUsesSocketAddr(t *testing.T) {
	addr := MustAddress(net.ParseIP("10.0.0.5"), 5000)
	sock := newFakeSocket(addr)

	cand := newLocalCandidate(1, 1, 1, CandidateTypeHost, "useruseruser", "passpasspass", sock)

	assert.True(t, cand.Addr().Equal(addr))
	assert.True(t, cand.BaseAddr().Equal(addr))
	assert.Equal(t, "useruser", cand.Username())
	assert.Equal(t, "passpass", cand.Password())
	assert.True(t, cand.IsLocal())
	assert.Equal(t, sock.fileno, cand.Fileno())
}

func TestNewRemoteCandidateHasNoSocket(t *testing.T) {
	addr := MustAddress(net.ParseIP("10.0.0.6"), 6000)
	cand := newRemoteCandidate(1, 1, CandidateTypeHost, addr, "remoteuser", "remotepass")

	assert.False(t, cand.IsLocal())
	assert.Equal(t, -1, cand.Fileno())
	assert.Equal(t, uint64(0), cand.ID(), "remote candidates never get an id")
	assert.Equal(t, "remoteus", cand.Username())
}

func TestCandidateTypeString(t *testing.T) {
	require.Equal(t, "host", CandidateTypeHost.String())
	require.Equal(t, "srflx", CandidateTypeServerReflexive.String())
	require.Equal(t, "prflx", CandidateTypePeerReflexive.String())
	require.Equal(t, "relay", CandidateTypeRelayed.String())
}

func TestCandidateCloseClosesSocket(t *testing.T) {
	addr := MustAddress(net.ParseIP("10.0.0.7"), 7000)
	sock := newFakeSocket(addr)
	cand := newLocalCandidate(1, 1, 1, CandidateTypeHost, "u", "p", sock)

	cand.close()

	_, _, err := sock.ReadFrom(make([]byte, 10))
	assert.Error(t, err, "reading from a closed fake socket's buffer should fail")
}
