package layers

import (
	"secureshare/kwargs"
	"secureshare/tensor"
)

// Dropout is an inference no-op kept for config fidelity with trained
// models. It has no counterpart in the secure layer registry, so sharing a
// model that contains one fails with an unsupported-layer error.
type Dropout struct {
	name string
	rate float64
}

// NewDropout creates a dropout layer with the given rate.
func NewDropout(rate float64, opts ...func(*Dropout)) *Dropout {
	d := &Dropout{rate: rate}
	for _, opt := range opts {
		opt(d)
	}
	if d.name == "" {
		d.name = nextName("dropout")
	}
	return d
}

// WithDropoutName sets an explicit layer name.
func WithDropoutName(name string) func(*Dropout) {
	return func(d *Dropout) { d.name = name }
}

func (d *Dropout) Name() string     { return d.name }
func (d *Dropout) TypeName() string { return "Dropout" }

// Config returns the constructor arguments.
func (d *Dropout) Config() kwargs.Args {
	return kwargs.Args{
		"rate":   d.rate,
		"kwargs": kwargs.Args{"name": d.name},
	}
}

// Weights returns nil: dropout carries no parameters.
func (d *Dropout) Weights() []*tensor.Tensor { return nil }

// Forward is the identity at inference time.
func (d *Dropout) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return x, nil
}
