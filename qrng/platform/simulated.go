package platform

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// A Simulator is an in-memory Backend for experimentation and testing. It
// does not model a full state vector: a qubit under a Hadamard gate yields
// an unbiased random outcome, and a CX gate folds the control's outcome
// into the target's parity. That is exact for the circuits the protocols
// in this module build, and deterministic given a fixed entropy stream.
type Simulator struct {
	caps    Capabilities
	entropy *bitReader
	logger  *zap.Logger
}

// SimulatorOpts packages together the arguments necessary to construct a
// Simulator.
type SimulatorOpts struct {
	// Capabilities advertises the resource ceilings the simulator should
	// enforce. MaxQubits must be positive; unstated shot and experiment
	// limits default to 1.
	Capabilities Capabilities

	// Entropy is the source of measurement randomness. Defaults to
	// crypto/rand. Tests may inject a deterministic reader.
	Entropy io.Reader

	// Logger receives clamping warnings. Defaults to a nop logger.
	Logger *zap.Logger
}

// NewSimulator returns a new Simulator, or an error if opts is nonsensical.
func NewSimulator(opts SimulatorOpts) (*Simulator, error) {
	caps, err := opts.Capabilities.Normalize()
	if err != nil {
		return nil, err
	}
	entropy := opts.Entropy
	if entropy == nil {
		entropy = crand.Reader
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		caps:    caps,
		entropy: &bitReader{r: entropy},
		logger:  logger,
	}, nil
}

// Capabilities implements the Backend interface.
func (s *Simulator) Capabilities() Capabilities {
	return s.caps
}

// NewCircuit implements the Backend interface.
func (s *Simulator) NewCircuit(numQubits int) (Circuit, error) {
	if numQubits < 1 {
		return nil, fmt.Errorf("circuit needs at least one qubit, got %d", numQubits)
	}
	if numQubits > s.caps.MaxQubits {
		return nil, fmt.Errorf("circuit width %d exceeds backend limit %d", numQubits, s.caps.MaxQubits)
	}
	return &simCircuit{numQubits: numQubits}, nil
}

// NewJob implements the Backend interface. Shot and experiment counts
// beyond the advertised limits are clamped and logged, not rejected.
func (s *Simulator) NewJob(circuit Circuit, shots, experiments int) (Job, error) {
	sc, ok := circuit.(*simCircuit)
	if !ok {
		return nil, fmt.Errorf("foreign circuit type %T", circuit)
	}
	if shots < 1 || experiments < 1 {
		return nil, fmt.Errorf("need positive shot and experiment counts, got %d and %d", shots, experiments)
	}
	if shots > s.caps.MaxShots {
		s.logger.Warn("clamping shots to backend limit",
			zap.Int("requested", shots), zap.Int("max", s.caps.MaxShots))
		shots = s.caps.MaxShots
	}
	if experiments > s.caps.MaxExperiments {
		s.logger.Warn("clamping experiments to backend limit",
			zap.Int("requested", experiments), zap.Int("max", s.caps.MaxExperiments))
		experiments = s.caps.MaxExperiments
	}
	return &simJob{
		circuit:     sc,
		shots:       shots,
		experiments: experiments,
		entropy:     s.entropy,
	}, nil
}

// A simCircuit records gate instructions for later replay.
type simCircuit struct {
	numQubits int
	hadamard  []int
	cnots     [][2]int
	measured  []int
}

func (c *simCircuit) NumQubits() int { return c.numQubits }

func (c *simCircuit) H(q int) error {
	if err := c.checkIndex(q); err != nil {
		return err
	}
	c.hadamard = append(c.hadamard, q)
	return nil
}

func (c *simCircuit) CX(control, target int) error {
	if err := c.checkIndex(control); err != nil {
		return err
	}
	if err := c.checkIndex(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("cx with identical control and target %d", control)
	}
	c.cnots = append(c.cnots, [2]int{control, target})
	return nil
}

func (c *simCircuit) Measure(q int) error {
	if err := c.checkIndex(q); err != nil {
		return err
	}
	c.measured = append(c.measured, q)
	return nil
}

func (c *simCircuit) checkIndex(q int) error {
	if q < 0 || q >= c.numQubits {
		return fmt.Errorf("%w: %d not in [0, %d)", errQubitRange, q, c.numQubits)
	}
	return nil
}

type simJob struct {
	circuit     *simCircuit
	shots       int
	experiments int
	entropy     *bitReader
}

// Execute implements the Job interface.
func (j *simJob) Execute() ([]string, error) {
	total := j.shots * j.experiments
	shots := make([]string, 0, total)
	for i := 0; i < total; i++ {
		shot, err := j.runShot()
		if err != nil {
			return nil, fmt.Errorf("executing shot %d: %w", i, err)
		}
		shots = append(shots, shot)
	}
	return shots, nil
}

func (j *simJob) runShot() (string, error) {
	outcomes := make([]bool, j.circuit.numQubits)
	for _, q := range j.circuit.hadamard {
		bit, err := j.entropy.readBit()
		if err != nil {
			return "", fmt.Errorf("reading entropy: %w", err)
		}
		outcomes[q] = bit
	}
	for _, cx := range j.circuit.cnots {
		if outcomes[cx[0]] {
			outcomes[cx[1]] = !outcomes[cx[1]]
		}
	}
	var sb strings.Builder
	sb.Grow(len(j.circuit.measured))
	for _, q := range j.circuit.measured {
		if outcomes[q] {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String(), nil
}

// A bitReader doles out single bits from a byte-oriented entropy source.
type bitReader struct {
	r    io.Reader
	cur  byte
	left int
}

func (b *bitReader) readBit() (bool, error) {
	if b.left == 0 {
		var buf [1]byte
		if _, err := io.ReadFull(b.r, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return false, fmt.Errorf("entropy source exhausted: %w", err)
			}
			return false, err
		}
		b.cur = buf[0]
		b.left = 8
	}
	bit := b.cur&1 == 1
	b.cur >>= 1
	b.left--
	return bit, nil
}
