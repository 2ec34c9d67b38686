package nn

import (
	"fmt"

	"secureshare/kwargs"
	"secureshare/tensor"
)

// Layer is a single plaintext layer in a model.
//
// Config returns the layer's constructor arguments, including defaulted
// ones, keyed the way they are persisted; common options (name, batch input
// shape) ride in a nested "kwargs" entry. Weights returns references into
// the layer's live parameter tensors, kernel first, bias second.
type Layer interface {
	Name() string
	TypeName() string
	Config() kwargs.Args
	Weights() []*tensor.Tensor
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
}

// OutputShaper is implemented by layers that know their output shape.
type OutputShaper interface {
	OutputShape() []int
}

// Sequential chains layers in order.
type Sequential struct {
	layers []Layer
}

// NewSequential creates a model from the given layers.
func NewSequential(layers ...Layer) *Sequential {
	return &Sequential{layers: layers}
}

// Add appends a layer to the model.
func (s *Sequential) Add(l Layer) {
	s.layers = append(s.layers, l)
}

// Layers returns the model's layers in order.
func (s *Sequential) Layers() []Layer {
	return s.layers
}

// Forward applies each layer in sequence.
func (s *Sequential) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	var err error
	out := x
	for _, layer := range s.layers {
		out, err = layer.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.Name(), err)
		}
	}
	return out, nil
}

// OutputShape returns the declared output shape of the last layer that
// exposes one.
func (s *Sequential) OutputShape() []int {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if shaper, ok := s.layers[i].(OutputShaper); ok {
			return shaper.OutputShape()
		}
	}
	return nil
}
