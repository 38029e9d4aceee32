package qrng

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
)

// doubleBits is the number of random bits consumed per double. The low 12
// bits are shifted out and the remaining 52 fill the FP64 mantissa.
const doubleBits = 64

// RandomBitstring returns numBits random bits as a '0'/'1' string. A
// non-positive numBits defaults to the configured output width. The cache
// is refilled through the active protocol until it can satisfy the
// request; a refill that yields no bits fails with ErrNoProgress.
func (g *Generator) RandomBitstring(numBits int) (string, error) {
	if numBits < 1 {
		numBits = g.bits
	}
	for g.cache.Size() < numBits {
		if err := g.refill(); err != nil {
			return "", err
		}
	}
	return g.cache.Pop(numBits)
}

// RandomUint returns a random unsigned integer drawn uniformly from
// numBits bits, most-significant bit first. A non-positive numBits
// defaults to the configured output width; widths above 64 are an error.
func (g *Generator) RandomUint(numBits int) (uint64, error) {
	if numBits < 1 {
		numBits = g.bits
	}
	if numBits > 64 {
		return 0, fmt.Errorf("cannot fit %d bits in a uint64", numBits)
	}
	bits, err := g.RandomBitstring(numBits)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(bits, 2, 64)
}

// RandomUint32 returns a random 32-bit unsigned integer.
func (g *Generator) RandomUint32() (uint32, error) {
	v, err := g.RandomUint(Bits32)
	return uint32(v), err
}

// RandomUint64 returns a random 64-bit unsigned integer.
func (g *Generator) RandomUint64() (uint64, error) {
	return g.RandomUint(Bits64)
}

// RandomRaw returns a random value of the configured output width.
func (g *Generator) RandomRaw() (uint64, error) {
	return g.RandomUint(g.bits)
}

// RandomDouble returns a uniform double in [0, 1). It forces 52 random
// bits into the mantissa of a float in [1, 2) and subtracts 1, avoiding
// rejection sampling.
func (g *Generator) RandomDouble() (float64, error) {
	u, err := g.RandomUint(doubleBits)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(0x3FF0000000000000|u>>12) - 1.0, nil
}

// RandomFloat64In returns a uniform double in [min, max).
func (g *Generator) RandomFloat64In(min, max float64) (float64, error) {
	if max < min {
		return 0, fmt.Errorf("empty range [%g, %g)", min, max)
	}
	d, err := g.RandomDouble()
	if err != nil {
		return 0, err
	}
	return (max-min)*d + min, nil
}

// RandomBytes returns numBytes random bytes. A non-positive numBytes
// defaults to the configured output width divided by eight.
func (g *Generator) RandomBytes(numBytes int) ([]byte, error) {
	if numBytes < 1 {
		numBytes = g.bits / 8
	}
	bits, err := g.RandomBitstring(numBytes * 8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, numBytes)
	for i := range out {
		b, err := strconv.ParseUint(bits[i*8:(i+1)*8], 2, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(b)
	}
	return out, nil
}

// DumpCache returns the full cache contents, erasing them afterwards if
// flush is set.
func (g *Generator) DumpCache(flush bool) string {
	bits := g.cache.Dump()
	if flush {
		g.cache.Flush()
	}
	return bits
}

// LoadCache pre-seeds the cache from a bitstring, optionally erasing the
// current contents first. The input is validated before any mutation.
func (g *Generator) LoadCache(bits string, flush bool) error {
	if flush {
		g.cache.Flush()
	}
	return g.cache.Push(bits)
}

// FlushCache erases the cache.
func (g *Generator) FlushCache() {
	g.cache.Flush()
}

// CacheSize returns the number of bits currently cached.
func (g *Generator) CacheSize() int {
	return g.cache.Size()
}

// State is the introspection snapshot exposed to monitoring and
// persistence callers.
type State struct {
	Bits      int        `json:"bits"`
	BitCache  CacheState `json:"bitcache"`
	JobConfig JobConfig  `json:"job_config"`
}

// CacheState describes the bit cache.
type CacheState struct {
	Size int `json:"size"`
}

// JobConfig is the backend resource snapshot current jobs are shaped by.
type JobConfig struct {
	MaxQubits      int `json:"max_qubits"`
	MaxShots       int `json:"max_shots"`
	MaxExperiments int `json:"max_experiments"`
}

// State returns the current introspection snapshot.
func (g *Generator) State() State {
	caps := g.backend.Capabilities()
	if normalized, err := caps.Normalize(); err == nil {
		caps = normalized
	}
	return State{
		Bits:     g.bits,
		BitCache: CacheState{Size: g.cache.Size()},
		JobConfig: JobConfig{
			MaxQubits:      caps.MaxQubits,
			MaxShots:       caps.MaxShots,
			MaxExperiments: caps.MaxExperiments,
		},
	}
}

// refill runs one protocol round against the backend's current capability
// snapshot and pushes the produced bits. Backend failures propagate
// without retry. An empty result, whether from an always-rejecting
// validation chain or a protocol that retained no measurements, is fatal:
// looping on it would block forever.
func (g *Generator) refill() error {
	result, err := g.proto.Run(g.backend)
	if err != nil {
		return fmt.Errorf("running protocol: %w", err)
	}
	if result.Empty() {
		return ErrNoProgress
	}
	g.logger.Debug("cache refill", zap.Int("bits", len(result.Bitstring)))
	return g.cache.Push(result.Bitstring)
}
