// Package protocol implements the quantum circuit-execution strategies that
// turn backend measurements into usable random bitstrings.
package protocol

import (
	"github.com/quantumrand/qrng/qrng/platform"
)

// A Protocol owns the policy for turning a backend capability snapshot into
// a circuit plan, and for reducing the backend's raw per-shot measurement
// strings into a single bitstring.
type Protocol interface {
	// Run executes one round of the protocol against b and returns the
	// produced entropy. Backend failures propagate; Run performs no
	// retries.
	Run(b platform.Backend) (*Result, error)

	// Verify reports whether the protocol certifies its own output. Bare
	// strategies return false: external validation is required.
	Verify() bool
}

// A Validator is a Protocol that can also judge a Result. Validated
// wrappers implement it; bare strategies do not.
type Validator interface {
	Protocol

	// Validate reports whether this layer, and every layer beneath it,
	// accepts r.
	Validate(r *Result) bool
}

// A Result holds the usable entropy produced by one protocol run, plus the
// token reserved for statistical testing.
type Result struct {
	// Bitstring is the usable entropy.
	Bitstring string

	// ValidationToken is the substring used only for statistical testing.
	// For protocols without a dedicated calibration stream it equals
	// Bitstring.
	ValidationToken string
}

// NewResult returns a Result carrying bitstring with token reserved for
// validation. An empty token means the bitstring validates itself.
func NewResult(bitstring, token string) *Result {
	if token == "" {
		token = bitstring
	}
	return &Result{Bitstring: bitstring, ValidationToken: token}
}

// Erase irrecoverably blanks both the bitstring and the token. Callers use
// it to degrade untrusted results to empty ones.
func (r *Result) Erase() {
	r.Bitstring = ""
	r.ValidationToken = ""
}

// Empty reports whether r carries no usable entropy.
func (r *Result) Empty() bool {
	return r.Bitstring == ""
}
