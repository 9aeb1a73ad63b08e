package ice

import (
	"github.com/pion/randutil"
)

// printableRunes is the alphabet used for generated local-candidate
// usernames and passwords: printable ASCII, matching the "8 printable
// bytes" credential shape the original source generates with
// nice_rng_generate_bytes_print.
const printableRunes = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RNG is the agent's random number generator handle (spec.md §3, "an RNG
// handle"). It is exclusively owned by the Agent; nothing else generates
// credentials or reaches into it directly.
type RNG interface {
	// GeneratePrintable returns n printable ASCII bytes as a string.
	GeneratePrintable(n int) (string, error)
}

// cryptoRNG is the default RNG, backed by pion/randutil's crypto-grade
// generator.
type cryptoRNG struct{}

// NewDefaultRNG returns the RNG used when an AgentConfig doesn't supply one.
func NewDefaultRNG() RNG {
	return cryptoRNG{}
}

func (cryptoRNG) GeneratePrintable(n int) (string, error) {
	return randutil.GenerateCryptoRandomString(n, printableRunes)
}
