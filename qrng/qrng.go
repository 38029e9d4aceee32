// Package qrng provides a quantum random number generator: random bits are
// produced by measuring quantum circuits on a pluggable backend, buffered
// in a FIFO cache to amortize backend round-trips, and exposed as
// bitstrings, unsigned integers and doubles.
package qrng

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/quantumrand/qrng/qrng/bitcache"
	"github.com/quantumrand/qrng/qrng/platform"
	"github.com/quantumrand/qrng/qrng/protocol"
)

// Output widths selectable through Options.Raw32.
const (
	Bits32 = 32
	Bits64 = 64
)

// ErrNoProgress indicates a cache refill that contributed no bits: the
// active protocol returned an empty result, so looping again cannot make
// progress. A validation chain that always rejects produces this error.
var ErrNoProgress = errors.New("cache refill produced no bits")

// Options packages together the arguments necessary to construct a
// Generator. Only Backend is required.
type Options struct {
	// Backend executes the quantum circuits. Must be non-nil.
	Backend platform.Backend

	// Protocol turns backend capabilities into random bits. Defaults to
	// the plain Hadamard strategy over the full backend envelope.
	Protocol protocol.Protocol

	// Raw32 selects a 32-bit output width for raw values. The default
	// width is 64 bits. Fixed for the lifetime of the generator.
	Raw32 bool

	// Logger receives refill diagnostics. Defaults to a nop logger.
	Logger *zap.Logger
}

// A Generator is the facade over one backend, one protocol and one bit
// cache. It is not safe for concurrent use; callers needing concurrency
// must serialize externally or use one Generator per worker.
type Generator struct {
	backend platform.Backend
	proto   protocol.Protocol
	cache   *bitcache.Cache
	bits    int
	logger  *zap.Logger
}

// New returns a new Generator, configured in accordance with opts, or an
// error if the options are nonsensical.
func New(opts Options) (*Generator, error) {
	if opts.Backend == nil {
		return nil, errors.New("must provide Backend")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	proto := opts.Protocol
	if proto == nil {
		var err error
		proto, err = protocol.NewHadamard(protocol.HadamardOpts{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("building default protocol: %w", err)
		}
	}
	bits := Bits64
	if opts.Raw32 {
		bits = Bits32
	}
	return &Generator{
		backend: opts.Backend,
		proto:   proto,
		cache:   bitcache.New(),
		bits:    bits,
		logger:  logger,
	}, nil
}

// Bits returns the configured raw output width, either 32 or 64.
func (g *Generator) Bits() int {
	return g.bits
}

// SetProtocol replaces the active protocol. The cache is kept: already
// produced bits remain valid entropy.
func (g *Generator) SetProtocol(p protocol.Protocol) error {
	if p == nil {
		return errors.New("must provide a protocol")
	}
	g.proto = p
	return nil
}

// SetBackend replaces the backend collaborator. Capability snapshots are
// taken fresh on every refill, so the change takes effect immediately.
func (g *Generator) SetBackend(b platform.Backend) error {
	if b == nil {
		return errors.New("must provide a backend")
	}
	g.backend = b
	return nil
}
