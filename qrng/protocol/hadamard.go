package protocol

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quantumrand/qrng/qrng/platform"
)

// Hadamard is the plain measurement strategy: every qubit is placed into an
// unbiased superposition and measured, and every per-shot measurement
// string is usable entropy. The validation token equals the bitstring.
type Hadamard struct {
	maxBits int
	logger  *zap.Logger
}

// HadamardOpts packages together the arguments necessary to construct a
// Hadamard protocol.
type HadamardOpts struct {
	// MaxBits caps the number of bits requested per run. Zero means "as
	// many as the backend envelope allows".
	MaxBits int

	// Logger receives partitioning diagnostics. Defaults to a nop logger.
	Logger *zap.Logger
}

// NewHadamard returns a new Hadamard protocol, or an error if opts is
// nonsensical.
func NewHadamard(opts HadamardOpts) (*Hadamard, error) {
	if opts.MaxBits < 0 {
		return nil, fmt.Errorf("max bits must be non-negative, got %d", opts.MaxBits)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hadamard{maxBits: opts.MaxBits, logger: logger}, nil
}

// Run implements the Protocol interface.
func (h *Hadamard) Run(b platform.Backend) (*Result, error) {
	caps, err := b.Capabilities().Normalize()
	if err != nil {
		return nil, fmt.Errorf("normalizing backend capabilities: %w", err)
	}
	numQubits, repetitions, err := h.partition(caps)
	if err != nil {
		return nil, err
	}
	circuit, err := b.NewCircuit(numQubits)
	if err != nil {
		return nil, fmt.Errorf("creating circuit: %w", err)
	}
	if err := assembleHadamard(circuit); err != nil {
		return nil, fmt.Errorf("assembling circuit: %w", err)
	}
	shots, experiments, err := BoundedFactorization(repetitions, caps.MaxShots, caps.MaxExperiments)
	if err != nil {
		return nil, err
	}
	job, err := b.NewJob(circuit, shots, experiments)
	if err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	h.logger.Debug("running hadamard protocol",
		zap.Int("qubits", numQubits),
		zap.Int("shots", shots),
		zap.Int("experiments", experiments))
	measurements, err := job.Execute()
	if err != nil {
		return nil, fmt.Errorf("executing job: %w", err)
	}
	var sb strings.Builder
	for _, m := range measurements {
		sb.WriteString(m)
	}
	bits := sb.String()
	return NewResult(bits, bits), nil
}

// Verify implements the Protocol interface.
func (h *Hadamard) Verify() bool { return false }

func (h *Hadamard) partition(caps platform.Capabilities) (numQubits, repetitions int, err error) {
	if h.maxBits == 0 {
		return caps.MaxQubits, caps.MaxMeasurements(), nil
	}
	return BoundedFactorization(h.maxBits, caps.MaxQubits, caps.MaxMeasurements())
}

func assembleHadamard(c platform.Circuit) error {
	for q := 0; q < c.NumQubits(); q++ {
		if err := c.H(q); err != nil {
			return err
		}
		if err := c.Measure(q); err != nil {
			return err
		}
	}
	return nil
}
