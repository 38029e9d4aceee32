// qrngen draws random values from a simulated quantum backend and prints
// them to stdout, one per line. It exists to exercise the qrng pipeline
// end to end: protocol selection, statistical validation, and the typed
// accessors are all reachable from the command line.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/montanaflynn/stats"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/quantumrand/qrng/qrng"
	"github.com/quantumrand/qrng/qrng/platform"
	"github.com/quantumrand/qrng/qrng/protocol"
	"github.com/quantumrand/qrng/qrng/validation"
)

// config holds the defaults overridable through the environment. Flags
// take precedence over environment variables.
type config struct {
	Qubits      int `env:"QRNGEN_QUBITS" envDefault:"16"`
	Shots       int `env:"QRNGEN_SHOTS" envDefault:"64"`
	Experiments int `env:"QRNGEN_EXPERIMENTS" envDefault:"1"`
}

var (
	count  = flag.IntP("count", "n", 10, "Number of values to generate.")
	format = flag.StringP("format", "f", "uint",
		"Output format, one of bits, uint, double.")
	proto = flag.StringP("protocol", "p", "hadamard",
		"Bit-generation protocol, one of hadamard, entanglement.")
	maxBits = flag.Int("max-bits", 0,
		"Per-round bit budget. Zero uses the backend's full envelope.")
	skipPurification = flag.Bool("skip-purification", false,
		"Deliver entanglement measurements without parity purification.")
	validate = flag.Bool("validate", false,
		"Reject protocol output failing the SP 800-22 monobit, runs and block frequency tests.")
	blockSize = flag.Int("block-size", 8,
		"Block size for the block frequency validation test.")
	raw32   = flag.Bool("raw32", false, "Use a 32-bit raw output width instead of 64.")
	summary = flag.Bool("summary", false,
		"Print mean/stddev/min/max of the generated values to stderr (uint and double formats).")
	verbose = flag.BoolP("verbose", "v", false, "Log pipeline diagnostics to stderr.")

	qubits      = flag.Int("qubits", 0, "Simulator qubit ceiling. Overrides QRNGEN_QUBITS.")
	shots       = flag.Int("shots", 0, "Simulator shot ceiling. Overrides QRNGEN_SHOTS.")
	experiments = flag.Int("experiments", 0, "Simulator experiment ceiling. Overrides QRNGEN_EXPERIMENTS.")
)

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Parsing environment: %v", err)
	}
	flag.Parse()
	if *qubits > 0 {
		cfg.Qubits = *qubits
	}
	if *shots > 0 {
		cfg.Shots = *shots
	}
	if *experiments > 0 {
		cfg.Experiments = *experiments
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Building logger: %v", err)
		}
		defer l.Sync()
		logger = l
	}

	g, err := buildGenerator(cfg, logger)
	if err != nil {
		log.Fatalf("Building generator: %v", err)
	}

	samples := make([]float64, 0, *count)
	for i := 0; i < *count; i++ {
		v, err := emit(g)
		if err != nil {
			log.Fatalf("Generating value %d: %v", i, err)
		}
		samples = append(samples, v)
	}
	if *summary && *format != "bits" {
		printSummary(samples)
	}
}

func buildGenerator(cfg config, logger *zap.Logger) (*qrng.Generator, error) {
	backend, err := platform.NewSimulator(platform.SimulatorOpts{
		Capabilities: platform.Capabilities{
			MaxQubits:      cfg.Qubits,
			MaxShots:       cfg.Shots,
			MaxExperiments: cfg.Experiments,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	p, err := buildProtocol(logger)
	if err != nil {
		return nil, err
	}
	return qrng.New(qrng.Options{
		Backend:  backend,
		Protocol: p,
		Raw32:    *raw32,
		Logger:   logger,
	})
}

func buildProtocol(logger *zap.Logger) (protocol.Protocol, error) {
	var base protocol.Protocol
	var err error
	switch *proto {
	case "hadamard":
		base, err = protocol.NewHadamard(protocol.HadamardOpts{
			MaxBits: *maxBits,
			Logger:  logger,
		})
	case "entanglement":
		base, err = protocol.NewEntanglement(protocol.EntanglementOpts{
			MaxBits:          *maxBits,
			SkipPurification: *skipPurification,
			Logger:           logger,
		})
	default:
		err = fmt.Errorf("unknown protocol %q", *proto)
	}
	if err != nil || !*validate {
		return base, err
	}
	bf, err := validation.NewBlockFrequency(*blockSize)
	if err != nil {
		return nil, err
	}
	return protocol.NewValidated(protocol.ValidatedOpts{
		Base:       base,
		Strategies: []validation.Strategy{validation.Monobit{}, validation.Runs{}, bf},
		Logger:     logger,
	})
}

// emit prints one value in the selected format and returns its numeric
// form for the summary.
func emit(g *qrng.Generator) (float64, error) {
	switch *format {
	case "bits":
		bits, err := g.RandomBitstring(0)
		if err != nil {
			return 0, err
		}
		fmt.Println(bits)
		return 0, nil
	case "uint":
		v, err := g.RandomRaw()
		if err != nil {
			return 0, err
		}
		fmt.Println(v)
		return float64(v), nil
	case "double":
		d, err := g.RandomDouble()
		if err != nil {
			return 0, err
		}
		fmt.Println(d)
		return d, nil
	default:
		return 0, fmt.Errorf("unknown format %q", *format)
	}
}

func printSummary(samples []float64) {
	mean, _ := stats.Mean(samples)
	stddev, _ := stats.StandardDeviation(samples)
	min, _ := stats.Min(samples)
	max, _ := stats.Max(samples)
	fmt.Fprintf(os.Stderr, "n=%d mean=%g stddev=%g min=%g max=%g\n",
		len(samples), mean, stddev, min, max)
}
