// Package platform defines the contract between quantum protocols and the
// backends that execute their circuits, along with an in-memory simulator.
package platform

import (
	"errors"
	"fmt"
)

// Capabilities is an immutable per-request snapshot of a backend's resource
// ceilings. Protocols consume it read-only to shape their jobs.
type Capabilities struct {
	// MaxQubits is the widest circuit the backend accepts. Required.
	MaxQubits int

	// MaxShots is the largest number of circuit repetitions per experiment.
	// A non-positive value means the backend runs a single shot.
	MaxShots int

	// MaxExperiments is the largest number of experiments per job
	// submission. A non-positive value means one experiment per job.
	MaxExperiments int
}

// Normalize applies the defaulting rules for unstated limits and returns an
// error if the capabilities are unusable. It is meant to be called once per
// capability snapshot, at the point where it is received from a backend.
func (c Capabilities) Normalize() (Capabilities, error) {
	if c.MaxQubits < 1 {
		return Capabilities{}, fmt.Errorf("backend reports %d qubits", c.MaxQubits)
	}
	if c.MaxShots < 1 {
		c.MaxShots = 1
	}
	if c.MaxExperiments < 1 {
		c.MaxExperiments = 1
	}
	return c, nil
}

// MaxMeasurements returns the combined repetition ceiling for one job.
func (c Capabilities) MaxMeasurements() int {
	shots, experiments := c.MaxShots, c.MaxExperiments
	if shots < 1 {
		shots = 1
	}
	if experiments < 1 {
		experiments = 1
	}
	return shots * experiments
}

// A Backend executes quantum circuits and reports its resource ceilings.
// Implementations adapt one concrete platform (a simulator, a cloud QPU)
// to this interface; protocols never depend on a concrete backend type.
type Backend interface {
	// Capabilities returns the current resource-limit snapshot. Backends
	// whose limits change between calls (e.g. machine reselection) return
	// the limits of the machine that the next job will run on.
	Capabilities() Capabilities

	// NewCircuit returns an empty circuit over numQubits qubits, or an
	// error if the backend cannot execute circuits that wide.
	NewCircuit(numQubits int) (Circuit, error)

	// NewJob prepares the execution of circuit for shots repetitions in
	// each of experiments batches. Counts exceeding the backend's limits
	// are clamped, not rejected.
	NewJob(circuit Circuit, shots, experiments int) (Job, error)
}

// A Circuit accumulates gate and measurement instructions.
type Circuit interface {
	// NumQubits returns the width of the circuit.
	NumQubits() int

	// H applies a Hadamard gate, placing qubit q into an unbiased
	// two-outcome superposition.
	H(q int) error

	// CX applies a controlled-NOT gate entangling control into target.
	CX(control, target int) error

	// Measure reads qubit q into the next classical output position.
	// Output characters appear in measurement order.
	Measure(q int) error
}

// A Job is a prepared circuit execution.
type Job interface {
	// Execute blocks until the backend has run the job and returns one
	// measurement string per shot, in shot order, across all experiments.
	// Each string holds one '0'/'1' character per measured qubit, in the
	// order the Measure instructions were issued.
	Execute() ([]string, error)
}

var errQubitRange = errors.New("qubit index out of range")
