package layers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"secureshare/kwargs"
	"secureshare/nn"
	"secureshare/tensor"
)

// Dense is a fully-connected plaintext layer, y = W·x + b, with W stored
// row-major as (units, inputDim).
type Dense struct {
	name            string
	inputDim        int
	units           int
	activation      string
	useBias         bool
	batchInputShape []int

	kernelInit nn.Initializer
	biasInit   nn.Initializer

	// Filtered out when the layer is rebuilt for the secure runtime.
	kernelRegularizer   interface{}
	biasRegularizer     interface{}
	activityRegularizer interface{}
	kernelConstraint    interface{}
	biasConstraint      interface{}

	W, B *tensor.Tensor
}

// DenseOption configures a Dense layer at construction.
type DenseOption func(*Dense)

// WithName sets an explicit layer name.
func WithName(name string) DenseOption {
	return func(d *Dense) { d.name = name }
}

// WithBatchInputShape declares the batch input shape, e.g. [1, 784].
func WithBatchInputShape(shape ...int) DenseOption {
	return func(d *Dense) { d.batchInputShape = append([]int(nil), shape...) }
}

// WithActivation sets the activation applied after the affine transform.
func WithActivation(name string) DenseOption {
	return func(d *Dense) { d.activation = name }
}

// WithoutBias disables the bias term.
func WithoutBias() DenseOption {
	return func(d *Dense) { d.useBias = false }
}

// WithKernelInitializer overrides the default Glorot-uniform kernel init.
func WithKernelInitializer(init nn.Initializer) DenseOption {
	return func(d *Dense) { d.kernelInit = init }
}

// WithBiasInitializer overrides the default zero bias init.
func WithBiasInitializer(init nn.Initializer) DenseOption {
	return func(d *Dense) { d.biasInit = init }
}

// WithKernelRegularizer attaches a training-time kernel regularizer.
func WithKernelRegularizer(reg interface{}) DenseOption {
	return func(d *Dense) { d.kernelRegularizer = reg }
}

// WithKernelConstraint attaches a training-time kernel constraint.
func WithKernelConstraint(c interface{}) DenseOption {
	return func(d *Dense) { d.kernelConstraint = c }
}

// NewDense creates a Dense(inputDim → units) layer and initializes its
// parameters.
func NewDense(inputDim, units int, opts ...DenseOption) *Dense {
	d := &Dense{
		inputDim:   inputDim,
		units:      units,
		useBias:    true,
		kernelInit: nn.GlorotUniform{},
		biasInit:   nn.Zeros{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.name == "" {
		d.name = nextName("dense")
	}
	d.W = tensor.New(units, inputDim)
	d.B = tensor.New(units)
	d.kernelInit.Fill(d.W)
	if d.useBias {
		d.biasInit.Fill(d.B)
	}
	return d
}

func (d *Dense) Name() string     { return d.name }
func (d *Dense) TypeName() string { return "Dense" }

// Units returns the output dimension.
func (d *Dense) Units() int { return d.units }

// OutputShape returns the declared output shape (batch of 1).
func (d *Dense) OutputShape() []int { return []int{1, d.units} }

// Config returns the constructor arguments, including defaults.
func (d *Dense) Config() kwargs.Args {
	common := kwargs.Args{"name": d.name}
	if d.batchInputShape != nil {
		common["batch_input_shape"] = append([]int(nil), d.batchInputShape...)
	}
	return kwargs.Args{
		"units":                d.units,
		"input_dim":            d.inputDim,
		"activation":           d.activation,
		"use_bias":             d.useBias,
		"kernel_initializer":   d.kernelInit,
		"bias_initializer":     d.biasInit,
		"kernel_regularizer":   d.kernelRegularizer,
		"bias_regularizer":     d.biasRegularizer,
		"activity_regularizer": d.activityRegularizer,
		"kernel_constraint":    d.kernelConstraint,
		"bias_constraint":      d.biasConstraint,
		"kwargs":               common,
	}
}

// Weights returns references to the live parameter tensors, kernel first.
func (d *Dense) Weights() []*tensor.Tensor {
	if !d.useBias {
		return []*tensor.Tensor{d.W}
	}
	return []*tensor.Tensor{d.W, d.B}
}

// Forward computes y = W·x + b (+ activation) for a 1-D input.
func (d *Dense) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if x.Size() != d.inputDim {
		return nil, fmt.Errorf("dense %s: input size %d, want %d", d.name, x.Size(), d.inputDim)
	}
	w := mat.NewDense(d.units, d.inputDim, d.W.Data)
	in := mat.NewVecDense(d.inputDim, x.Data)
	var y mat.VecDense
	y.MulVec(w, in)

	out := tensor.New(d.units)
	for i := 0; i < d.units; i++ {
		out.Data[i] = y.AtVec(i)
		if d.useBias {
			out.Data[i] += d.B.Data[i]
		}
	}
	if d.activation != "" {
		return applyActivation(d.activation, out)
	}
	return out, nil
}
