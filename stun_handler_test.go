package ice

import (
	"net"
	"testing"

	"github.com/pion/stun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBindingRequest(t *testing.T, username string) *stun.Message {
	t.Helper()
	setters := []stun.Setter{stun.BindingRequest, stun.TransactionID}
	if username != "" {
		setters = append(setters, stun.NewUsername(username))
	}
	msg, err := stun.Build(setters...)
	require.NoError(t, err)
	return msg
}

// newStunTestFixture wires up one component with a single local host
// candidate (backed by a fake socket) and one remote candidate, matching
// the "valid inbound check" scenario of spec.md §8.
func newStunTestFixture(t *testing.T) (agent *Agent, stream *Stream, component *Component, local *Candidate, localSock *fakeSocket, remote *Candidate) {
	t.Helper()
	agent = NewAgent(nil)
	component = newComponent(1)
	stream = &Stream{id: 1, component: component}

	localAddr := MustAddress(net.ParseIP("127.0.0.1"), 5000)
	localSock = newFakeSocket(localAddr)
	local = newLocalCandidate(1, 1, 1, CandidateTypeHost, "localuser", "localpass", localSock)
	component.addLocalCandidate(local)

	remoteAddr := MustAddress(net.ParseIP("127.0.0.1"), 6000)
	remote = newRemoteCandidate(1, 1, CandidateTypeHost, remoteAddr, "remoteuser", "remotepass")
	component.addRemoteCandidate(remote)

	return
}

func TestHandleBindingRequestValidCheck(t *testing.T) {
	agent, stream, component, local, localSock, remote := newStunTestFixture(t)

	var gotStream uint64
	var gotComponent uint16
	var gotState ComponentState
	agent.OnComponentStateChange(func(streamID uint64, componentID uint16, state ComponentState) {
		gotStream, gotComponent, gotState = streamID, componentID, state
	})

	from := MustAddress(net.ParseIP("127.0.0.1"), 6000)
	req := buildBindingRequest(t, local.Username()+remote.Username())

	agent.handleBindingRequest(stream, component, local, from, req)

	// Responds, then triggers a reciprocal check: two packets sent.
	require.Equal(t, 2, localSock.sentCount())

	respRaw := localSock.sent[0].data
	respMsg := &stun.Message{Raw: respRaw}
	require.NoError(t, respMsg.Decode())
	assert.Equal(t, stun.BindingSuccess, respMsg.Type)

	checkRaw := localSock.sent[1].data
	checkMsg := &stun.Message{Raw: checkRaw}
	require.NoError(t, checkMsg.Decode())
	assert.Equal(t, stun.BindingRequest, checkMsg.Type)

	var username stun.Username
	require.NoError(t, username.GetFrom(checkMsg))
	assert.Equal(t, remote.Username()+local.Username(), username.String())

	assert.True(t, component.ActiveCandidate() == local)
	require.NotNil(t, component.PeerAddr())
	assert.True(t, component.PeerAddr().Equal(from))
	assert.Equal(t, ComponentStateConnected, component.State())

	assert.Equal(t, uint64(1), gotStream)
	assert.Equal(t, uint16(1), gotComponent)
	assert.Equal(t, ComponentStateConnected, gotState)
}

func TestHandleBindingRequestUnknownUsernameSendsError(t *testing.T) {
	agent, stream, component, local, localSock, _ := newStunTestFixture(t)

	from := MustAddress(net.ParseIP("127.0.0.1"), 6000)
	req := buildBindingRequest(t, local.Username()+"bogus")

	agent.handleBindingRequest(stream, component, local, from, req)

	require.Equal(t, 1, localSock.sentCount())
	sent, _ := localSock.lastSent()
	msg := &stun.Message{Raw: sent.data}
	require.NoError(t, msg.Decode())
	assert.Equal(t, stun.BindingError, msg.Type)

	assert.Nil(t, component.ActiveCandidate())
	assert.Equal(t, ComponentStateDisconnected, component.State())
}

func TestHandleBindingRequestMissingUsernameSendsError(t *testing.T) {
	agent, stream, component, local, localSock, _ := newStunTestFixture(t)

	from := MustAddress(net.ParseIP("127.0.0.1"), 6000)
	req := buildBindingRequest(t, "")

	agent.handleBindingRequest(stream, component, local, from, req)

	require.Equal(t, 1, localSock.sentCount())
	sent, _ := localSock.lastSent()
	msg := &stun.Message{Raw: sent.data}
	require.NoError(t, msg.Decode())
	assert.Equal(t, stun.BindingError, msg.Type)
}

func TestHandleStunIgnoresBindingSuccess(t *testing.T) {
	agent, stream, component, local, localSock, _ := newStunTestFixture(t)

	from := MustAddress(net.ParseIP("127.0.0.1"), 6000)
	resp, err := stun.Build(stun.BindingSuccess, stun.TransactionID)
	require.NoError(t, err)

	agent.handleStun(stream, component, local, from, resp)

	assert.Equal(t, 0, localSock.sentCount())
}

func TestMatchRemoteCandidatePrefixSuffix(t *testing.T) {
	_, _, component, local, _, remote := newStunTestFixture(t)

	got := matchRemoteCandidate(component, local, local.Username()+remote.Username())
	assert.Same(t, remote, got)

	assert.Nil(t, matchRemoteCandidate(component, local, "nomatch"))
	assert.Nil(t, matchRemoteCandidate(component, local, local.Username()+"wrongsuffix"))
}
