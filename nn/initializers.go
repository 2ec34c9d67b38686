package nn

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"secureshare/tensor"
)

// Initializer fills a parameter tensor with its starting values.
type Initializer interface {
	Fill(t *tensor.Tensor)
}

// Constant fills a tensor with fixed values. It is how trained weights are
// carried into a rebuilt layer.
type Constant struct {
	Values *tensor.Tensor
}

// NewConstant wraps values in a Constant initializer.
func NewConstant(values *tensor.Tensor) *Constant {
	return &Constant{Values: values}
}

// Fill copies the stored values into t. Shapes are taken on faith; the
// element counts must match.
func (c *Constant) Fill(t *tensor.Tensor) {
	copy(t.Data, c.Values.Data)
}

// Zeros fills a tensor with zeros.
type Zeros struct{}

func (Zeros) Fill(t *tensor.Tensor) {
	for i := range t.Data {
		t.Data[i] = 0
	}
}

// GlorotUniform samples from U(-limit, limit) with
// limit = sqrt(6 / (fanIn + fanOut)), reading fan sizes from the tensor's
// shape (rows = fanOut, cols = fanIn for a 2-D kernel).
type GlorotUniform struct{}

func (GlorotUniform) Fill(t *tensor.Tensor) {
	fanOut, fanIn := 1, 1
	if len(t.Shape) == 2 {
		fanOut, fanIn = t.Shape[0], t.Shape[1]
	} else if len(t.Shape) == 1 {
		fanIn = t.Shape[0]
	}
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -limit, Max: limit}
	for i := range t.Data {
		t.Data[i] = dist.Rand()
	}
}
