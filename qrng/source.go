package qrng

import "fmt"

// Source adapts a Generator to math/rand's Source64 interface, letting the
// standard library's distributions draw from quantum entropy.
//
// Source64 methods cannot return errors, so a failing backend panics. Use
// the Generator's typed accessors directly where failures must be handled.
type Source struct {
	g *Generator
}

// NewSource returns a math/rand compatible source backed by g.
func NewSource(g *Generator) *Source {
	return &Source{g: g}
}

// Uint64 implements rand.Source64.
func (s *Source) Uint64() uint64 {
	v, err := s.g.RandomUint64()
	if err != nil {
		panic(fmt.Sprintf("qrng: source failure: %v", err))
	}
	return v
}

// Int63 implements rand.Source.
func (s *Source) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// Seed implements rand.Source. Quantum entropy has no seed; it is a no-op.
func (s *Source) Seed(int64) {}
