// Package srflx is the placeholder server-reflexive candidate discovery
// spec.md §3 documents but §1 marks a non-goal: "server-reflexive candidate
// gathering via an external STUN server (placeholder in the source, not
// implemented)". The source's nice_agent_set_stun_server is commented out
// entirely ("later"); this package is the Go equivalent of that
// placeholder -- present, usable on its own, but never invoked by
// (*ice.Agent).AddStream.
package srflx

import (
	"context"
	"fmt"
	"time"

	"github.com/chyeh/pubip"
	"github.com/jpillora/backoff"
)

// Discoverer finds the public IP an agent's host candidates are reachable
// behind, using an external address-discovery service the way a real
// server-reflexive STUN gathering step eventually would. It is not part of
// the core ICE state machine: nothing calls it during AddStream.
type Discoverer struct {
	backoff *backoff.Backoff
	retries int
}

// NewDiscoverer returns a Discoverer that retries its lookup up to
// maxRetries times with exponential backoff between attempts.
func NewDiscoverer(maxRetries int) *Discoverer {
	return &Discoverer{
		backoff: &backoff.Backoff{
			Min:    100 * time.Millisecond,
			Max:    5 * time.Second,
			Factor: 2,
			Jitter: true,
		},
		retries: maxRetries,
	}
}

// Discover returns the public IPv4 address visible to an external service,
// retrying transient failures with backoff. Unlike every in-core STUN send
// (best-effort, fire-once), this is the one place the module performs a
// retried network operation -- fitting, since it's explicitly
// gathering-not-checking and outside the core's no-retry policy (spec.md
// §5).
func (d *Discoverer) Discover(ctx context.Context) (string, error) {
	d.backoff.Reset()

	var lastErr error
	for attempt := 0; attempt <= d.retries; attempt++ {
		ip, err := pubip.Get()
		if err == nil {
			return ip.String(), nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(d.backoff.Duration()):
		}
	}
	return "", fmt.Errorf("srflx: giving up after %d attempts: %w", d.retries+1, lastErr)
}
