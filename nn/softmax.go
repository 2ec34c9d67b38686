package nn

import (
	"math"

	"secureshare/tensor"
)

// Softmax returns the softmax of x as a new tensor.
func Softmax(x *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(x.Shape...)
	maxVal := math.Inf(-1)
	for _, v := range x.Data {
		if v > maxVal {
			maxVal = v
		}
	}
	sum := 0.0
	for i, v := range x.Data {
		out.Data[i] = math.Exp(v - maxVal)
		sum += out.Data[i]
	}
	for i := range out.Data {
		out.Data[i] /= sum
	}
	return out
}
