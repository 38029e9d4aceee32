package protocol

import (
	"errors"

	"go.uber.org/zap"

	"github.com/quantumrand/qrng/qrng/platform"
	"github.com/quantumrand/qrng/qrng/validation"
)

// Validated layers statistical-randomness validation around a base
// protocol without modifying its logic. Strategies are held as an explicit
// ordered list rather than nested decorators, keeping the chain
// introspectable; wrapping a Validated in another Validated composes the
// layers.
//
// A Validated is indistinguishable from a bare Protocol at the call site:
// Run delegates to the base protocol, evaluates every strategy against the
// result's validation token, and on any failure erases the result before
// returning it. The caller receives an empty result rather than untrusted
// entropy; validation failure is not an error.
type Validated struct {
	base       Protocol
	strategies []validation.Strategy
	logger     *zap.Logger
}

// ValidatedOpts packages together the arguments necessary to construct a
// Validated protocol.
type ValidatedOpts struct {
	// Base is the protocol whose results are validated. Must be non-nil.
	Base Protocol

	// Strategies are evaluated in order against the validation token.
	// Must be non-empty.
	Strategies []validation.Strategy

	// Logger receives rejection diagnostics. Defaults to a nop logger.
	Logger *zap.Logger
}

// NewValidated returns a new Validated protocol, or an error if opts is
// nonsensical.
func NewValidated(opts ValidatedOpts) (*Validated, error) {
	if opts.Base == nil {
		return nil, errors.New("must provide a base protocol")
	}
	if len(opts.Strategies) == 0 {
		return nil, errors.New("must provide at least one validation strategy")
	}
	for _, s := range opts.Strategies {
		if s == nil {
			return nil, errors.New("nil validation strategy")
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	strategies := make([]validation.Strategy, len(opts.Strategies))
	copy(strategies, opts.Strategies)
	return &Validated{base: opts.Base, strategies: strategies, logger: logger}, nil
}

// Run implements the Protocol interface.
func (v *Validated) Run(b platform.Backend) (*Result, error) {
	result, err := v.base.Run(b)
	if err != nil {
		return nil, err
	}
	if !v.validateLayer(result) {
		v.logger.Warn("validation rejected protocol result",
			zap.Int("bits", len(result.Bitstring)),
			zap.Int("token_bits", len(result.ValidationToken)))
		result.Erase()
	}
	return result, nil
}

// Verify implements the Protocol interface by deferring to the base
// protocol's self-certification.
func (v *Validated) Verify() bool {
	return v.base.Verify()
}

// Validate implements the Validator interface: r is accepted only if this
// layer's strategies and every inner validation layer accept it.
func (v *Validated) Validate(r *Result) bool {
	if !v.validateLayer(r) {
		return false
	}
	if inner, ok := v.base.(Validator); ok {
		return inner.Validate(r)
	}
	return true
}

func (v *Validated) validateLayer(r *Result) bool {
	for _, s := range v.strategies {
		if !s.Validate(r.ValidationToken) {
			return false
		}
	}
	return true
}
