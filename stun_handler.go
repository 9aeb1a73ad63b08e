package ice

import (
	"strings"

	"github.com/pion/stun"
)

// handleStun dispatches a decoded STUN message received on local from the
// peer at from (spec.md §4.3). BINDING_RESPONSE is accepted silently: this
// core keeps no outstanding-transaction table (spec.md §9, first open
// question), so nothing ties a response back to a request. Anything other
// than a Binding request or response is ignored.
func (a *Agent) handleStun(stream *Stream, component *Component, local *Candidate, from Address, msg *stun.Message) {
	switch msg.Type {
	case stun.BindingRequest:
		a.handleBindingRequest(stream, component, local, from, msg)
	case stun.BindingSuccess:
		a.log.Tracef("s%d:%d: ignoring unsolicited binding response from %s", stream.ID(), component.ID(), from)
	default:
		a.log.Tracef("s%d:%d: ignoring STUN message type %s from %s", stream.ID(), component.ID(), msg.Type, from)
	}
}

// handleBindingRequest implements spec.md §4.3's binding-request processing:
// authenticate by USERNAME prefix/suffix match against this component's
// remote candidates, then either respond + trigger a reciprocal check +
// flip to CONNECTED, or send a BINDING_ERROR_RESPONSE.
func (a *Agent) handleBindingRequest(stream *Stream, component *Component, local *Candidate, from Address, msg *stun.Message) {
	var username stun.Username
	if err := username.GetFrom(msg); err != nil {
		a.sendBindingError(local, from, msg)
		return
	}

	remote := matchRemoteCandidate(component, local, username.String())
	if remote == nil {
		a.log.Warnf("s%d:%d: no remote candidate matches username %q from %s", stream.ID(), component.ID(), username.String(), from)
		a.sendBindingError(local, from, msg)
		return
	}

	// Update candidate/peer affinity. Unconditional overwrite: whichever
	// check most recently validated wins. @from is not required to match
	// @remote's address; a full ICE implementation would mint a new
	// peer-reflexive candidate here (spec.md §9) -- this core doesn't.
	component.setPeerAffinity(local, from)

	a.sendBindingResponse(local, from, msg, username.String())
	a.sendTriggeredCheck(local, remote, from)

	if component.markConnected() {
		if a.onComponentStateChange != nil {
			a.onComponentStateChange(stream.ID(), component.ID(), component.State())
		}
	}
}

// matchRemoteCandidate implements the USERNAME = local||remote match of
// spec.md §4.3: the first remote candidate (in signalling order) whose
// username is exactly the suffix left after stripping local's username as
// a prefix wins.
func matchRemoteCandidate(component *Component, local *Candidate, username string) *Candidate {
	if !strings.HasPrefix(username, local.Username()) {
		return nil
	}
	suffix := username[len(local.Username()):]
	for _, remote := range component.remoteCandidates {
		if suffix == remote.Username() {
			return remote
		}
	}
	return nil
}

func (a *Agent) sendBindingResponse(local *Candidate, from Address, req *stun.Message, username string) {
	resp, err := stun.Build(req, stun.BindingSuccess,
		&stun.MappedAddress{IP: from.IP(), Port: from.Port()},
		stun.NewUsername(username),
	)
	if err != nil {
		a.log.Warnf("failed to build binding response: %v", err)
		return
	}
	if _, err := local.sock.WriteTo(resp.Raw, from.UDPAddr()); err != nil {
		a.log.Warnf("failed to send binding response to %s: %v", from, err)
	}
}

func (a *Agent) sendTriggeredCheck(local, remote *Candidate, to Address) {
	req, err := stun.Build(stun.BindingRequest, stun.TransactionID,
		stun.NewUsername(remote.Username()+local.Username()),
	)
	if err != nil {
		a.log.Warnf("failed to build triggered check: %v", err)
		return
	}
	if _, err := local.sock.WriteTo(req.Raw, to.UDPAddr()); err != nil {
		a.log.Warnf("failed to send triggered check to %s: %v", to, err)
	}
}

func (a *Agent) sendBindingError(local *Candidate, from Address, req *stun.Message) {
	resp, err := stun.Build(req, stun.BindingError)
	if err != nil {
		a.log.Warnf("failed to build binding error response: %v", err)
		return
	}
	if _, err := local.sock.WriteTo(resp.Raw, from.UDPAddr()); err != nil {
		a.log.Warnf("failed to send binding error response to %s: %v", from, err)
	}
}
