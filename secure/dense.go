package secure

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"secureshare/core/ckkswrapper"
	"secureshare/kwargs"
	"secureshare/nn"
	"secureshare/tensor"
)

// Dense is a fully-connected layer evaluated over ciphertexts. Weights are
// encrypted row-wise during session initialization; the forward pass
// computes each output slot as a rotation tree-sum of a ciphertext product,
// then repacks the outputs into one ciphertext and adds the plaintext bias.
type Dense struct {
	name            string
	inputDim        int
	units           int
	activation      string
	useBias         bool
	batchInputShape []int

	W, B *tensor.Tensor

	heCtx     *ckkswrapper.HeContext
	kit       *ckkswrapper.ServerKit
	weightCTs []*rlwe.Ciphertext
}

func newDense(g *Graph, args kwargs.Args) (*Dense, error) {
	units, err := intArg(args, "units")
	if err != nil {
		return nil, err
	}
	inputDim, err := intArg(args, "input_dim")
	if err != nil {
		return nil, err
	}
	activation, err := stringArg(args, "activation", "")
	if err != nil {
		return nil, err
	}
	if activation != "" && activation != "linear" {
		if _, ok := SupportedPolynomials[activation]; !ok {
			return nil, fmt.Errorf("no polynomial approximation for activation %q", activation)
		}
	}
	useBias, err := boolArg(args, "use_bias", true)
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args, "name", "")
	if err != nil {
		return nil, err
	}
	shape, err := shapeArg(args, "batch_input_shape")
	if err != nil {
		return nil, err
	}
	kernelInit, err := initializerArg(args, "kernel_initializer")
	if err != nil {
		return nil, err
	}
	biasInit, err := initializerArg(args, "bias_initializer")
	if err != nil {
		return nil, err
	}
	if kernelInit == nil {
		kernelInit = nn.GlorotUniform{}
	}
	if biasInit == nil {
		biasInit = nn.Zeros{}
	}

	d := &Dense{
		name:            name,
		inputDim:        inputDim,
		units:           units,
		activation:      activation,
		useBias:         useBias,
		batchInputShape: shape,
		W:               tensor.New(units, inputDim),
		B:               tensor.New(units),
		heCtx:           g.Context(),
	}
	kernelInit.Fill(d.W)
	if useBias {
		biasInit.Fill(d.B)
	}
	g.RegisterInit(d.syncHE)
	return d, nil
}

func (d *Dense) Name() string { return d.name }

// Units returns the output dimension.
func (d *Dense) Units() int { return d.units }

// Levels returns the levels one forward pass consumes.
func (d *Dense) Levels() int {
	levels := 1
	if poly, ok := SupportedPolynomials[d.activation]; ok {
		levels += poly.Levels
	}
	return levels
}

// BatchInputShape returns the declared batch input shape, if any.
func (d *Dense) BatchInputShape() []int { return d.batchInputShape }

// Kernel returns the layer's kernel tensor.
func (d *Dense) Kernel() *tensor.Tensor { return d.W }

// Bias returns the layer's bias tensor.
func (d *Dense) Bias() *tensor.Tensor { return d.B }

// syncHE generates the rotation keys the forward pass needs and encrypts
// each weight row. Runs once, at session initialization.
func (d *Dense) syncHE() error {
	rots := []int{}
	// tree-sum over the input dimension
	for step := 1; step < d.inputDim; step *= 2 {
		rots = append(rots, step)
	}
	// slot-0 → slot-j assembly per output unit
	for j := 0; j < d.units; j++ {
		rots = append(rots, -j)
	}
	d.kit = d.heCtx.GenServerKit(rots)

	slots := d.heCtx.Params.MaxSlots()
	d.weightCTs = make([]*rlwe.Ciphertext, d.units)
	for j := 0; j < d.units; j++ {
		wrow := make([]complex128, slots)
		for i := 0; i < d.inputDim; i++ {
			wrow[i] = complex(d.W.Data[j*d.inputDim+i], 0)
		}
		pt := ckks.NewPlaintext(d.heCtx.Params, d.heCtx.Params.MaxLevel())
		pt.Scale = d.heCtx.Params.DefaultScale()
		if err := d.heCtx.Encoder.Encode(wrow, pt); err != nil {
			return err
		}
		ct, err := d.heCtx.Encryptor.EncryptNew(pt)
		if err != nil {
			return err
		}
		d.weightCTs[j] = ct
	}
	return nil
}

// treeSum multiplies ctX by ctW and folds the product into slot 0.
func (d *Dense) treeSum(ctX, ctW *rlwe.Ciphertext, eval *ckks.Evaluator) (*rlwe.Ciphertext, error) {
	tmp, err := eval.MulNew(ctX, ctW)
	if err != nil {
		return nil, err
	}
	tmp, err = eval.RelinearizeNew(tmp)
	if err != nil {
		return nil, err
	}
	if err := eval.Rescale(tmp, tmp); err != nil {
		return nil, err
	}
	for step := 1; step < d.inputDim; step *= 2 {
		rot, err := eval.RotateNew(tmp, step)
		if err != nil {
			return nil, err
		}
		tmp, err = eval.AddNew(tmp, rot)
		if err != nil {
			return nil, err
		}
	}
	return tmp, nil
}

// Forward returns y = W·x (+ b) (+ activation) as one ciphertext.
func (d *Dense) Forward(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if d.kit == nil {
		return nil, fmt.Errorf("dense %s: layer not initialized", d.name)
	}
	eval := d.kit.GetWorkerEvaluator()
	slots := d.heCtx.Params.MaxSlots()

	// Assemble the output with plaintext packing: per unit, dot-product into
	// slot 0, rotate into slot j, mask, and extract.
	outputVec := make([]complex128, slots)
	for j := 0; j < d.units; j++ {
		dot, err := d.treeSum(ct, d.weightCTs[j], eval)
		if err != nil {
			return nil, err
		}
		rot, err := eval.RotateNew(dot, -j)
		if err != nil {
			return nil, err
		}

		oneHot := make([]complex128, slots)
		oneHot[j] = 1
		maskPT := ckks.NewPlaintext(d.heCtx.Params, rot.Level())
		maskPT.Scale = rot.Scale
		if err := d.heCtx.Encoder.Encode(oneHot, maskPT); err != nil {
			return nil, err
		}
		masked, err := eval.MulNew(rot, maskPT)
		if err != nil {
			return nil, err
		}

		ptMasked := d.heCtx.Decryptor.DecryptNew(masked)
		vals := make([]complex128, slots)
		if err := d.heCtx.Encoder.Decode(ptMasked, vals); err != nil {
			return nil, err
		}
		outputVec[j] = vals[j]
	}

	ptOut := ckks.NewPlaintext(d.heCtx.Params, d.heCtx.Params.MaxLevel())
	ptOut.Scale = d.heCtx.Params.DefaultScale()
	if err := d.heCtx.Encoder.Encode(outputVec, ptOut); err != nil {
		return nil, err
	}
	res, err := d.heCtx.Encryptor.EncryptNew(ptOut)
	if err != nil {
		return nil, err
	}

	if d.useBias {
		biasVec := make([]complex128, slots)
		for j := 0; j < d.units; j++ {
			biasVec[j] = complex(d.B.Data[j], 0)
		}
		biasPT := ckks.NewPlaintext(d.heCtx.Params, res.Level())
		biasPT.Scale = res.Scale
		if err := d.heCtx.Encoder.Encode(biasVec, biasPT); err != nil {
			return nil, err
		}
		res, err = d.kit.Evaluator.AddNew(res, biasPT)
		if err != nil {
			return nil, err
		}
	}

	if poly, ok := SupportedPolynomials[d.activation]; ok {
		return evalPolyCipher(d.heCtx, d.kit.Evaluator, res, poly)
	}
	return res, nil
}
