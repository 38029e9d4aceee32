package protocol

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quantumrand/qrng/qrng/platform"
)

// minEntanglementQubits is the narrowest circuit the entanglement protocol
// can run: one control qubit plus one token column plus one output column.
const minEntanglementQubits = 3

// Entanglement is the entangled-parity strategy of Jacak et al. (Sci Rep
// 10, 164, 2020): qubits 1..n-1 are put into superposition and entangled
// with qubit 0, so that a third party can test the withheld token column
// without learning the delivered bits. With purification enabled, shots
// whose total parity is odd are discarded as corrupted.
type Entanglement struct {
	maxBits int
	purify  bool
	logger  *zap.Logger
}

// EntanglementOpts packages together the arguments necessary to construct
// an Entanglement protocol.
type EntanglementOpts struct {
	// MaxBits caps the number of usable bits requested per run. Zero
	// means "as many as the backend envelope allows".
	MaxBits int

	// SkipPurification disables the even-parity filter. Purification is
	// on by default.
	SkipPurification bool

	// Logger receives clamping warnings. Defaults to a nop logger.
	Logger *zap.Logger
}

// NewEntanglement returns a new Entanglement protocol, or an error if opts
// is nonsensical.
func NewEntanglement(opts EntanglementOpts) (*Entanglement, error) {
	if opts.MaxBits < 0 {
		return nil, fmt.Errorf("max bits must be non-negative, got %d", opts.MaxBits)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Entanglement{
		maxBits: opts.MaxBits,
		purify:  !opts.SkipPurification,
		logger:  logger,
	}, nil
}

// Run implements the Protocol interface. It fails fast, without retrying,
// on backends narrower than three qubits.
func (e *Entanglement) Run(b platform.Backend) (*Result, error) {
	caps, err := b.Capabilities().Normalize()
	if err != nil {
		return nil, fmt.Errorf("normalizing backend capabilities: %w", err)
	}
	numQubits, repetitions, err := e.partition(caps)
	if err != nil {
		return nil, err
	}
	circuit, err := b.NewCircuit(numQubits)
	if err != nil {
		return nil, fmt.Errorf("creating circuit: %w", err)
	}
	if err := assembleEntanglement(circuit); err != nil {
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
	e.logger.Debug("running entanglement protocol",
		zap.Int("qubits", numQubits),
		zap.Int("shots", shots),
		zap.Int("experiments", experiments),
		zap.Bool("purify", e.purify))
	measurements, err := job.Execute()
	if err != nil {
		return nil, fmt.Errorf("executing job: %w", err)
	}
	return e.parse(measurements)
}

// Verify implements the Protocol interface.
func (e *Entanglement) Verify() bool { return false }

func (e *Entanglement) partition(caps platform.Capabilities) (numQubits, repetitions int, err error) {
	if caps.MaxQubits < minEntanglementQubits {
		return 0, 0, fmt.Errorf(
			"entanglement protocol needs at least %d qubits, backend offers %d",
			minEntanglementQubits, caps.MaxQubits)
	}
	if e.maxBits == 0 {
		return caps.MaxQubits, caps.MaxMeasurements(), nil
	}
	numQubits = e.maxBits + 2
	if numQubits > caps.MaxQubits {
		numQubits = caps.MaxQubits
	}
	repetitions = e.maxBits / (numQubits - 2)
	if max := caps.MaxMeasurements(); repetitions > max {
		e.logger.Warn("clamping repetitions to backend limit",
			zap.Int("requested", repetitions), zap.Int("max", max))
		repetitions = max
	}
	return numQubits, repetitions, nil
}

// assembleEntanglement builds the measurement plan: qubits 1..n-1 are each
// superposed, entangled with qubit 0 and measured; qubit 0 is measured
// last. Shot strings therefore hold qubits 1..n-1 followed by qubit 0.
func assembleEntanglement(c platform.Circuit) error {
	for q := 1; q < c.NumQubits(); q++ {
		if err := c.H(q); err != nil {
			return err
		}
		if err := c.CX(q, 0); err != nil {
			return err
		}
		if err := c.Measure(q); err != nil {
			return err
		}
	}
	return c.Measure(0)
}

// parse reduces raw per-shot measurement strings into a Result. The first
// measured column of the retained shots is withheld as the validation
// token; the middle columns, concatenated column by column, become the
// output. The final column is qubit 0, whose outcome is fixed by the
// others once purification holds, so it carries no marginal entropy and is
// discarded. Zero retained shots yield an empty, non-error result: whether
// that starves the caller is the refill loop's judgement to make.
func (e *Entanglement) parse(measurements []string) (*Result, error) {
	if len(measurements) == 0 {
		return NewResult("", ""), nil
	}
	width := len(measurements[0])
	if width < 2 {
		return nil, fmt.Errorf("measurement too narrow for entanglement parsing: %d columns", width)
	}
	numColumns := width - 1
	columns := make([]strings.Builder, numColumns)
	for _, m := range measurements {
		if len(m) != width {
			return nil, fmt.Errorf("ragged measurement: len %d != %d", len(m), width)
		}
		if err := checkBits(m); err != nil {
			return nil, err
		}
		if e.purify && !evenParity(m) {
			continue
		}
		for c := 0; c < numColumns; c++ {
			columns[c].WriteByte(m[c])
		}
	}
	token := columns[0].String()
	var sb strings.Builder
	for c := 1; c < numColumns; c++ {
		sb.WriteString(columns[c].String())
	}
	return &Result{Bitstring: sb.String(), ValidationToken: token}, nil
}

func evenParity(m string) bool {
	var ones int
	for i := 0; i < len(m); i++ {
		if m[i] == '1' {
			ones++
		}
	}
	return ones%2 == 0
}

func checkBits(m string) error {
	for i := 0; i < len(m); i++ {
		if m[i] != '0' && m[i] != '1' {
			return fmt.Errorf("malformed measurement %q", m)
		}
	}
	return nil
}
