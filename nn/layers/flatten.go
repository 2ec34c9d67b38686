package layers

import (
	"secureshare/kwargs"
	"secureshare/tensor"
)

// Flatten reshapes its input to 1-D. With slot-packed secure inputs the
// rebuilt counterpart is a no-op, but the layer still anchors the batch
// input shape for models that start with multi-dimensional data.
type Flatten struct {
	name            string
	batchInputShape []int
}

// NewFlatten creates a flatten layer.
func NewFlatten(opts ...func(*Flatten)) *Flatten {
	f := &Flatten{}
	for _, opt := range opts {
		opt(f)
	}
	if f.name == "" {
		f.name = nextName("flatten")
	}
	return f
}

// WithFlattenName sets an explicit layer name.
func WithFlattenName(name string) func(*Flatten) {
	return func(f *Flatten) { f.name = name }
}

// WithFlattenInputShape declares the batch input shape, e.g. [1, 28, 28].
func WithFlattenInputShape(shape ...int) func(*Flatten) {
	return func(f *Flatten) { f.batchInputShape = append([]int(nil), shape...) }
}

func (f *Flatten) Name() string     { return f.name }
func (f *Flatten) TypeName() string { return "Flatten" }

// Config returns the constructor arguments.
func (f *Flatten) Config() kwargs.Args {
	common := kwargs.Args{"name": f.name}
	if f.batchInputShape != nil {
		common["batch_input_shape"] = append([]int(nil), f.batchInputShape...)
	}
	return kwargs.Args{"kwargs": common}
}

// Weights returns nil: flatten carries no parameters.
func (f *Flatten) Weights() []*tensor.Tensor { return nil }

// Forward returns the input reshaped to 1-D.
func (f *Flatten) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := x.Clone()
	out.Shape = []int{out.Size()}
	return out, nil
}
