// Package validation provides statistical randomness tests for protocol
// validation tokens, following NIST SP 800-22 rev. 1a.
//
// Every test uses the conventional 0.01 significance threshold and fails
// closed on inputs shorter than 100 bits: a token too short to test is
// treated as untrustworthy rather than trusted by default.
package validation

import (
	"math"
)

// Significance is the p-value threshold shared by all tests.
const Significance = 0.01

// MinSampleBits is the smallest token length any test accepts.
const MinSampleBits = 100

// A Strategy is a stateless pass/fail predicate over a bitstring. A
// strategy may carry small configuration parameters, but holds no mutable
// state across calls.
type Strategy interface {
	Validate(bitstring string) bool
}

// Monobit implements the frequency (monobit) test, SP 800-22 §2.1: the
// proportion of ones and zeros should be close to one half.
type Monobit struct{}

// Validate implements the Strategy interface.
func (Monobit) Validate(bitstring string) bool {
	n := len(bitstring)
	if n < MinSampleBits {
		return false
	}
	var sum float64
	for i := 0; i < n; i++ {
		if bitstring[i] == '1' {
			sum++
		} else {
			sum--
		}
	}
	sObs := math.Abs(sum) / math.Sqrt(float64(n))
	p := math.Erfc(sObs / math.Sqrt2)
	return p >= Significance
}

// proportionOfOnes returns the fraction of '1' characters in bitstring.
func proportionOfOnes(bitstring string) float64 {
	var ones int
	for i := 0; i < len(bitstring); i++ {
		if bitstring[i] == '1' {
			ones++
		}
	}
	return float64(ones) / float64(len(bitstring))
}
