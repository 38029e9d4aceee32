// Package bitcache provides a FIFO buffer for random bits.
package bitcache

import (
	"errors"
	"fmt"
	"strings"
)

// TODO: this could be more efficient on many architectures if we used larger
//   blocks than 8-bit bytes.

const blockSize = 8

var (
	// ErrInvalidBitstring indicates an input containing symbols outside {0,1}.
	ErrInvalidBitstring = errors.New("invalid bitstring")

	// ErrBitCount indicates a non-positive number of requested bits.
	ErrBitCount = errors.New("number of bits must be greater than zero")

	// ErrInsufficient indicates a pop exceeding the cached bit count.
	ErrInsufficient = errors.New("insufficient cache size")
)

// A Cache is an ordered, densely-packed buffer of bits with first-in,
// first-out semantics. The zero value is an empty cache ready for use.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	bits []byte
	len  int

	// head counts bits already popped from the front of bits. Whole
	// consumed blocks are trimmed on pop, so head stays below blockSize.
	head int
}

// New returns a new, empty Cache.
func New() *Cache {
	return &Cache{}
}

// Size returns the number of bits currently stored in c.
func (c *Cache) Size() int {
	return c.len
}

// Push appends a bitstring to the tail of c. It returns an error if bits
// contains any symbol other than '0' or '1', in which case c is unchanged.
func (c *Cache) Push(bits string) error {
	for i := 0; i < len(bits); i++ {
		if bits[i] != '0' && bits[i] != '1' {
			return fmt.Errorf("%w: unexpected symbol %q", ErrInvalidBitstring, bits[i])
		}
	}
	for i := 0; i < len(bits); i++ {
		c.appendBit(bits[i] == '1')
	}
	return nil
}

// Pop removes and returns the first n bits of c. It returns an error,
// leaving c unchanged, if n is less than one or exceeds the cache size.
func (c *Cache) Pop(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("%w: got %d", ErrBitCount, n)
	}
	if n > c.len {
		return "", fmt.Errorf("%w: want %d bits, have %d", ErrInsufficient, n, c.len)
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		if c.get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	c.head += n
	c.len -= n
	c.bits = c.bits[c.head/blockSize:]
	c.head %= blockSize
	if c.len == 0 {
		c.bits, c.head = nil, 0
	}
	return sb.String(), nil
}

// Dump returns the full contents of c without mutating it.
func (c *Cache) Dump() string {
	var sb strings.Builder
	sb.Grow(c.len)
	for i := 0; i < c.len; i++ {
		if c.get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Flush erases all contents of c.
func (c *Cache) Flush() {
	c.bits = nil
	c.len = 0
	c.head = 0
}

// get returns the i-th live bit, i.e. offset by the consumed head.
func (c *Cache) get(i int) bool {
	idx := c.head + i
	block := c.bits[idx/blockSize]
	pos := idx % blockSize
	return 0 < block&(1<<pos)
}

// appendBit adds a single bit to the tail of c.
func (c *Cache) appendBit(bit bool) {
	pos := (c.head + c.len) % blockSize
	c.len++
	if pos == 0 {
		c.bits = append(c.bits, 0)
	}
	if bit {
		c.bits[len(c.bits)-1] |= 1 << pos
	}
}
