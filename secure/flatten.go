package secure

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"secureshare/kwargs"
)

// Flatten is the secure counterpart of the plaintext flatten layer.
// Ciphertext slots are already packed flat, so the forward pass is the
// identity; the layer's job is carrying the batch input shape.
type Flatten struct {
	name            string
	batchInputShape []int
}

func newFlatten(_ *Graph, args kwargs.Args) (*Flatten, error) {
	name, err := stringArg(args, "name", "")
	if err != nil {
		return nil, err
	}
	shape, err := shapeArg(args, "batch_input_shape")
	if err != nil {
		return nil, err
	}
	return &Flatten{name: name, batchInputShape: shape}, nil
}

func (f *Flatten) Name() string { return f.name }
func (f *Flatten) Levels() int  { return 0 }

// BatchInputShape returns the declared batch input shape, if any.
func (f *Flatten) BatchInputShape() []int { return f.batchInputShape }

// Forward is the identity on slot-packed ciphertexts.
func (f *Flatten) Forward(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return ct, nil
}
