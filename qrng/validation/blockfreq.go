package validation

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// BlockFrequency implements the frequency test within a block, SP 800-22
// §2.2: the proportion of ones within each M-bit block should be close to
// one half.
type BlockFrequency struct {
	blockSize int
}

// NewBlockFrequency returns a BlockFrequency test over blocks of blockSize
// bits, or an error if blockSize is not positive.
func NewBlockFrequency(blockSize int) (*BlockFrequency, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}
	return &BlockFrequency{blockSize: blockSize}, nil
}

// Validate implements the Strategy interface. Trailing bits that do not
// fill a complete block are discarded.
func (b *BlockFrequency) Validate(bitstring string) bool {
	n := len(bitstring)
	if n < MinSampleBits {
		return false
	}
	numBlocks := n / b.blockSize
	if numBlocks < 1 {
		return false
	}
	var chiSq float64
	for i := 0; i < numBlocks; i++ {
		block := bitstring[i*b.blockSize : (i+1)*b.blockSize]
		pi := proportionOfOnes(block)
		chiSq += (pi - 0.5) * (pi - 0.5)
	}
	chiSq *= 4 * float64(b.blockSize)
	// The incomplete gamma function gammaincc(N/2, chi2/2) of SP 800-22 is
	// the survival function of a chi-squared distribution with N degrees
	// of freedom.
	p := distuv.ChiSquared{K: float64(numBlocks)}.Survival(chiSq)
	return p >= Significance
}
