package validation

import "math"

// Runs implements the runs test, SP 800-22 §2.3: the number of
// uninterrupted sequences of identical bits should be consistent with a
// random oscillation between zeros and ones.
type Runs struct{}

// Validate implements the Strategy interface.
func (Runs) Validate(bitstring string) bool {
	n := len(bitstring)
	if n < MinSampleBits {
		return false
	}
	pi := proportionOfOnes(bitstring)
	// Precondition: the sequence must already pass a coarse frequency
	// check, otherwise the runs statistic is meaningless.
	if math.Abs(pi-0.5) >= 2/math.Sqrt(float64(n)) {
		return false
	}
	vObs := 1.0
	for i := 0; i < n-1; i++ {
		if bitstring[i] != bitstring[i+1] {
			vObs++
		}
	}
	num := math.Abs(vObs - 2*float64(n)*pi*(1-pi))
	den := 2 * math.Sqrt(2*float64(n)) * pi * (1 - pi)
	p := math.Erfc(num / den)
	return p >= Significance
}
