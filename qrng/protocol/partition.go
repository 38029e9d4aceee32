package protocol

import (
	"fmt"
)

// BoundedFactorization partitions a target count n into a pair (a, b) with
// a <= boundA, b <= boundB and a*b <= n, minimizing the gap n - a*b. It is
// the resource-allocation core that turns "bits requested" into
// "qubits x repetitions" and "repetitions" into "shots x experiments".
//
// If boundA*boundB < n the full resource envelope (boundA, boundB) is the
// best achievable and is returned directly. Otherwise the optimum is found
// by bounded exhaustive search: fix b at its ceiling, derive a = n/b, then
// walk a upward (b shrinking correspondingly) while a stays within its
// bound and below b, stopping early on a zero gap.
//
// The result is stable under self-composition: re-applying the function to
// (a*b, boundA, boundB) returns the same pair.
func BoundedFactorization(n, boundA, boundB int) (a, b int, err error) {
	if n < 1 {
		return 0, 0, fmt.Errorf("target must be a positive integer, got %d", n)
	}
	if boundA < 1 || boundB < 1 {
		return 0, 0, fmt.Errorf("bounds must be positive integers, got %d and %d", boundA, boundB)
	}
	if boundA*boundB < n {
		return boundA, boundB, nil
	}
	swapped := boundA > boundB
	if swapped {
		boundA, boundB = boundB, boundA
	}
	finalA, finalB, finalDelta := 0, 0, n
	cb := boundB
	ca := n / cb
	delta := n - ca*cb
	for ca <= boundA && ca <= cb && finalDelta != 0 {
		if delta < finalDelta {
			finalA, finalB, finalDelta = ca, cb, delta
		}
		ca++
		cb = n / ca
		delta = n - ca*cb
	}
	if swapped {
		return finalB, finalA, nil
	}
	return finalA, finalB, nil
}
