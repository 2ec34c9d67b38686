package layers

import (
	"fmt"

	"secureshare/kwargs"
	"secureshare/tensor"
)

// Activation applies a named element-wise function.
type Activation struct {
	name       string
	activation string
}

// NewActivation creates an activation layer. Supported functions: "relu",
// "linear".
func NewActivation(activation string, opts ...func(*Activation)) (*Activation, error) {
	if activation != "relu" && activation != "linear" {
		return nil, fmt.Errorf("unsupported activation: %s", activation)
	}
	a := &Activation{activation: activation}
	for _, opt := range opts {
		opt(a)
	}
	if a.name == "" {
		a.name = nextName("activation")
	}
	return a, nil
}

// WithActivationName sets an explicit layer name.
func WithActivationName(name string) func(*Activation) {
	return func(a *Activation) { a.name = name }
}

func (a *Activation) Name() string     { return a.name }
func (a *Activation) TypeName() string { return "Activation" }

// Config returns the constructor arguments.
func (a *Activation) Config() kwargs.Args {
	return kwargs.Args{
		"activation": a.activation,
		"kwargs":     kwargs.Args{"name": a.name},
	}
}

// Weights returns nil: activations carry no parameters.
func (a *Activation) Weights() []*tensor.Tensor { return nil }

// Forward applies the activation element-wise.
func (a *Activation) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return applyActivation(a.activation, x)
}

func applyActivation(name string, x *tensor.Tensor) (*tensor.Tensor, error) {
	switch name {
	case "linear", "":
		return x, nil
	case "relu":
		out := tensor.New(x.Shape...)
		for i, v := range x.Data {
			if v > 0 {
				out.Data[i] = v
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported activation: %s", name)
	}
}
