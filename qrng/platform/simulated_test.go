package platform

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var _ Backend = (*Simulator)(nil)

// fixedReader repeats a single byte forever.
type fixedReader byte

func (f fixedReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(f)
	}
	return len(p), nil
}

// otherCircuit is a Circuit the simulator did not build.
type otherCircuit struct{}

func (otherCircuit) NumQubits() int      { return 1 }
func (otherCircuit) H(int) error         { return nil }
func (otherCircuit) CX(int, int) error   { return nil }
func (otherCircuit) Measure(q int) error { return nil }

func newTestSimulator(t *testing.T, caps Capabilities, entropy byte) *Simulator {
	t.Helper()
	sim, err := NewSimulator(SimulatorOpts{Capabilities: caps, Entropy: fixedReader(entropy)})
	require.NoError(t, err)
	return sim
}

func buildHadamardCircuit(t *testing.T, sim *Simulator, numQubits int) Circuit {
	t.Helper()
	c, err := sim.NewCircuit(numQubits)
	require.NoError(t, err)
	for q := 0; q < numQubits; q++ {
		require.NoError(t, c.H(q))
		require.NoError(t, c.Measure(q))
	}
	return c
}

func TestSimulatorDeterministicOutcomes(t *testing.T) {
	tcs := []struct {
		name    string
		entropy byte
		want    string
	}{
		{name: "zero entropy", entropy: 0x00, want: "000"},
		{name: "saturated entropy", entropy: 0xFF, want: "111"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			sim := newTestSimulator(t, Capabilities{MaxQubits: 3, MaxShots: 1, MaxExperiments: 1}, tc.entropy)
			c := buildHadamardCircuit(t, sim, 3)
			job, err := sim.NewJob(c, 1, 1)
			require.NoError(t, err)

			shots, err := job.Execute()
			require.NoError(t, err)
			require.Equal(t, []string{tc.want}, shots)
		})
	}
}

func TestSimulatorCXFoldsParity(t *testing.T) {
	// Qubits 1 and 2 are randomized and folded into qubit 0, so the total
	// parity of every shot is even regardless of the entropy stream.
	sim := newTestSimulator(t, Capabilities{MaxQubits: 3, MaxShots: 8, MaxExperiments: 1}, 0xB5)
	c, err := sim.NewCircuit(3)
	require.NoError(t, err)
	for q := 1; q < 3; q++ {
		require.NoError(t, c.H(q))
		require.NoError(t, c.CX(q, 0))
		require.NoError(t, c.Measure(q))
	}
	require.NoError(t, c.Measure(0))

	job, err := sim.NewJob(c, 8, 1)
	require.NoError(t, err)
	shots, err := job.Execute()
	require.NoError(t, err)
	require.Len(t, shots, 8)
	for _, shot := range shots {
		require.Len(t, shot, 3)
		var parity int
		for i := 0; i < len(shot); i++ {
			if shot[i] == '1' {
				parity++
			}
		}
		require.Zero(t, parity%2, "shot %q has odd parity", shot)
	}
}

func TestSimulatorClampsOversizedJobs(t *testing.T) {
	sim := newTestSimulator(t, Capabilities{MaxQubits: 2, MaxShots: 2, MaxExperiments: 2}, 0x00)
	c := buildHadamardCircuit(t, sim, 2)

	job, err := sim.NewJob(c, 5, 5)
	require.NoError(t, err)
	shots, err := job.Execute()
	require.NoError(t, err)
	require.Len(t, shots, 4)
}

func TestSimulatorRejectsInvalidRequests(t *testing.T) {
	sim := newTestSimulator(t, Capabilities{MaxQubits: 2, MaxShots: 1, MaxExperiments: 1}, 0x00)

	_, err := sim.NewCircuit(0)
	require.Error(t, err)
	_, err = sim.NewCircuit(3)
	require.ErrorContains(t, err, "exceeds backend limit")

	c := buildHadamardCircuit(t, sim, 2)
	_, err = sim.NewJob(otherCircuit{}, 1, 1)
	require.ErrorContains(t, err, "foreign circuit")
	_, err = sim.NewJob(c, 0, 1)
	require.Error(t, err)
	_, err = sim.NewJob(c, 1, -1)
	require.Error(t, err)
}

func TestSimCircuitGateValidation(t *testing.T) {
	sim := newTestSimulator(t, Capabilities{MaxQubits: 3, MaxShots: 1, MaxExperiments: 1}, 0x00)
	c, err := sim.NewCircuit(3)
	require.NoError(t, err)

	require.Error(t, c.H(3))
	require.Error(t, c.H(-1))
	require.Error(t, c.CX(0, 3))
	require.Error(t, c.CX(1, 1))
	require.Error(t, c.Measure(3))
}

func TestNormalizeCapabilities(t *testing.T) {
	caps, err := Capabilities{MaxQubits: 3}.Normalize()
	require.NoError(t, err)
	require.Equal(t, Capabilities{MaxQubits: 3, MaxShots: 1, MaxExperiments: 1}, caps)
	require.Equal(t, 1, caps.MaxMeasurements())

	_, err = Capabilities{}.Normalize()
	require.Error(t, err)
}

func TestSimulatorEntropyExhaustion(t *testing.T) {
	sim, err := NewSimulator(SimulatorOpts{
		Capabilities: Capabilities{MaxQubits: 3, MaxShots: 3, MaxExperiments: 1},
		Entropy:      bytes.NewReader([]byte{0x00}),
	})
	require.NoError(t, err)
	c := buildHadamardCircuit(t, sim, 3)
	job, err := sim.NewJob(c, 3, 1)
	require.NoError(t, err)

	_, err = job.Execute()
	require.ErrorContains(t, err, "entropy source exhausted")
}
