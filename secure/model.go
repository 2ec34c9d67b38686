package secure

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"secureshare/core/ckkswrapper"
	"secureshare/tensor"
)

// Layer is a single layer executing under the secure protocol.
type Layer interface {
	Name() string
	// Levels is the number of modulus levels one forward pass consumes.
	Levels() int
	Forward(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error)
}

// BatchShaper is implemented by secure layers that declare the batch input
// shape of the model they head.
type BatchShaper interface {
	BatchInputShape() []int
}

// Sequential chains secure layers in order over one graph.
type Sequential struct {
	graph  *Graph
	layers []Layer
}

// NewSequential creates an empty secure model on the given graph.
func NewSequential(g *Graph) *Sequential {
	return &Sequential{graph: g}
}

// Add appends a layer.
func (m *Sequential) Add(l Layer) {
	m.layers = append(m.layers, l)
}

// Layers returns the model's layers in order.
func (m *Sequential) Layers() []Layer { return m.layers }

// Graph returns the graph the model was built into.
func (m *Sequential) Graph() *Graph { return m.graph }

// Forward runs the ciphertext through every layer, refreshing it whenever
// the remaining levels would not cover the next layer.
func (m *Sequential) Forward(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	heCtx := m.graph.Context()
	var err error
	for _, layer := range m.layers {
		if ckkswrapper.NeedsBootstrap(ct, layer.Levels()) {
			ct, err = heCtx.CheatBootstrap(ct)
			if err != nil {
				return nil, fmt.Errorf("bootstrap before %s: %w", layer.Name(), err)
			}
		}
		ct, err = layer.Forward(ct)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.Name(), err)
		}
	}
	return ct, nil
}

// Predict encrypts x, runs the model, and decrypts the first outSize slots.
func (m *Sequential) Predict(x *tensor.Tensor, outSize int) (*tensor.Tensor, error) {
	heCtx := m.graph.Context()

	vec := make([]complex128, heCtx.Params.MaxSlots())
	for i := 0; i < len(x.Data) && i < len(vec); i++ {
		vec[i] = complex(x.Data[i], 0)
	}
	pt := ckks.NewPlaintext(heCtx.Params, heCtx.Params.MaxLevel())
	if err := heCtx.Encoder.Encode(vec, pt); err != nil {
		return nil, err
	}
	ct, err := heCtx.Encryptor.EncryptNew(pt)
	if err != nil {
		return nil, err
	}

	ct, err = m.Forward(ct)
	if err != nil {
		return nil, err
	}

	ptOut := heCtx.Decryptor.DecryptNew(ct)
	decoded := make([]complex128, heCtx.Params.MaxSlots())
	if err := heCtx.Encoder.Decode(ptOut, decoded); err != nil {
		return nil, err
	}
	out := tensor.New(outSize)
	for i := 0; i < outSize; i++ {
		out.Data[i] = real(decoded[i])
	}
	return out, nil
}
