package secure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"secureshare/core/ckkswrapper"
	"secureshare/kwargs"
	"secureshare/nn"
	"secureshare/tensor"
)

func encryptVector(heCtx *ckkswrapper.HeContext, v []float64) (*rlwe.Ciphertext, error) {
	vec := make([]complex128, heCtx.Params.MaxSlots())
	for i, x := range v {
		vec[i] = complex(x, 0)
	}
	pt := ckks.NewPlaintext(heCtx.Params, heCtx.Params.MaxLevel())
	if err := heCtx.Encoder.Encode(vec, pt); err != nil {
		return nil, err
	}
	return heCtx.Encryptor.EncryptNew(pt)
}

func decryptVector(heCtx *ckkswrapper.HeContext, ct *rlwe.Ciphertext, n int) ([]float64, error) {
	decoded := make([]complex128, heCtx.Params.MaxSlots())
	if err := heCtx.Encoder.Decode(heCtx.Decryptor.DecryptNew(ct), decoded); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = real(decoded[i])
	}
	return out, nil
}

func buildDense(t *testing.T, g *Graph, args kwargs.Args) *Dense {
	t.Helper()
	builder, ok := Registry["Dense"]
	require.True(t, ok, "Dense missing from registry")
	layer, err := builder.Build(g, args)
	require.NoError(t, err)
	d, ok := layer.(*Dense)
	require.True(t, ok, "builder returned %T", layer)
	return d
}

func TestDenseForwardCipher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ciphertext evaluation in short mode")
	}
	g := NewGraph(CKKSLight())

	kernel, err := tensor.NewWithShape([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	d := buildDense(t, g, kwargs.Args{
		"units":              2,
		"input_dim":          2,
		"name":               "d0",
		"kernel_initializer": nn.NewConstant(kernel),
		"bias_initializer":   nn.NewConstant(tensor.NewWithData([]float64{0.5, -0.5})),
	})

	sess := NewSession(g)
	require.NoError(t, sess.Init())

	model := NewSequential(g)
	model.Add(d)
	out, err := model.Predict(tensor.NewWithData([]float64{1, 2}), 2)
	require.NoError(t, err)

	// [1 2; 3 4]·[1 2] + [0.5 -0.5] = [5.5 10.5]
	require.InDelta(t, 5.5, out.Data[0], 1e-2)
	require.InDelta(t, 10.5, out.Data[1], 1e-2)
}

func TestDenseForwardCipherNoBias(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ciphertext evaluation in short mode")
	}
	g := NewGraph(CKKSLight())

	kernel, err := tensor.NewWithShape([]float64{1, -1, 0, 2}, 2, 2)
	require.NoError(t, err)
	d := buildDense(t, g, kwargs.Args{
		"units":              2,
		"input_dim":          2,
		"use_bias":           false,
		"name":               "d0",
		"kernel_initializer": nn.NewConstant(kernel),
	})

	sess := NewSession(g)
	require.NoError(t, sess.Init())

	ct, err := encryptVector(g.Context(), []float64{3, 1})
	require.NoError(t, err)
	res, err := d.Forward(ct)
	require.NoError(t, err)
	out, err := decryptVector(g.Context(), res, 2)
	require.NoError(t, err)

	require.InDelta(t, 2.0, out[0], 1e-2)
	require.InDelta(t, 2.0, out[1], 1e-2)
}

func TestDensePolyActivation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ciphertext evaluation in short mode")
	}
	g := NewGraph(CKKSLight())

	kernel, err := tensor.NewWithShape([]float64{0.3, 0.1}, 1, 2)
	require.NoError(t, err)
	d := buildDense(t, g, kwargs.Args{
		"units":              1,
		"input_dim":          2,
		"activation":         "relu",
		"name":               "d0",
		"kernel_initializer": nn.NewConstant(kernel),
		"bias_initializer":   nn.NewConstant(tensor.NewWithData([]float64{0.1})),
	})

	sess := NewSession(g)
	require.NoError(t, sess.Init())

	model := NewSequential(g)
	model.Add(d)
	out, err := model.Predict(tensor.NewWithData([]float64{0.5, 0.5}), 1)
	require.NoError(t, err)

	// 0.3*0.5 + 0.1*0.5 + 0.1 = 0.3, pushed through the polynomial
	poly := SupportedPolynomials["relu"]
	want := 0.0
	for i := len(poly.Coeffs) - 1; i >= 0; i-- {
		want = want*0.3 + poly.Coeffs[i]
	}
	require.InDelta(t, want, out.Data[0], 1e-2)
}

func TestDenseRejectsUnknownActivation(t *testing.T) {
	g := NewGraph(CKKSLight())
	builder := Registry["Dense"]
	_, err := builder.Build(g, kwargs.Args{
		"units":      2,
		"input_dim":  2,
		"activation": "selu",
	})
	require.Error(t, err)
}

func TestDenseLevels(t *testing.T) {
	g := NewGraph(CKKSLight())
	linear := buildDense(t, g, kwargs.Args{"units": 1, "input_dim": 1})
	require.Equal(t, 1, linear.Levels())

	relu := buildDense(t, g, kwargs.Args{"units": 1, "input_dim": 1, "activation": "relu"})
	require.Equal(t, 1+SupportedPolynomials["relu"].Levels, relu.Levels())
}

func TestSupportedLayersSorted(t *testing.T) {
	names := SupportedLayers()
	require.Equal(t, []string{"Activation", "Dense", "Flatten"}, names)
}

func TestDenseDefaultInitializers(t *testing.T) {
	g := NewGraph(CKKSLight())
	d := buildDense(t, g, kwargs.Args{"units": 3, "input_dim": 4})

	nonzero := false
	for _, v := range d.Kernel().Data {
		if v != 0 {
			nonzero = true
		}
		require.LessOrEqual(t, math.Abs(v), 1.0)
	}
	require.True(t, nonzero, "kernel left at zero")
	for _, v := range d.Bias().Data {
		require.Zero(t, v)
	}
}
