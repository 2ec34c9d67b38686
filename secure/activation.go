package secure

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"secureshare/core/ckkswrapper"
	"secureshare/kwargs"
)

// Poly is a polynomial approximation of an activation function.
type Poly struct {
	Name   string
	Coeffs []float64 // c0..cN, ascending degree
	Degree int
	Levels int // levels consumed by one HE evaluation
}

// SupportedPolynomials maps activation names to their approximations.
var SupportedPolynomials = map[string]Poly{
	"relu": {
		Name:   "relu",
		Coeffs: []float64{0.3183099, 0.5, 0.2122066, 0},
		Degree: 3,
		Levels: 2,
	},
}

// Activation applies a polynomial activation to a ciphertext.
type Activation struct {
	name  string
	poly  Poly
	heCtx *ckkswrapper.HeContext
	kit   *ckkswrapper.ServerKit
}

func newActivation(g *Graph, args kwargs.Args) (*Activation, error) {
	fn, err := stringArg(args, "activation", "")
	if err != nil {
		return nil, err
	}
	poly, ok := SupportedPolynomials[fn]
	if !ok {
		return nil, fmt.Errorf("no polynomial approximation for activation %q", fn)
	}
	name, err := stringArg(args, "name", "")
	if err != nil {
		return nil, err
	}

	a := &Activation{name: name, poly: poly, heCtx: g.Context()}
	g.RegisterInit(func() error {
		a.kit = a.heCtx.GenServerKit(nil)
		return nil
	})
	return a, nil
}

func (a *Activation) Name() string { return a.name }
func (a *Activation) Levels() int  { return a.poly.Levels }

// Forward evaluates the polynomial on the ciphertext.
func (a *Activation) Forward(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if a.kit == nil {
		return nil, fmt.Errorf("activation %s: layer not initialized", a.name)
	}
	return evalPolyCipher(a.heCtx, a.kit.Evaluator, ct, a.poly)
}

// evalPolyCipher evaluates poly on ct with Horner's method. Coefficient
// plaintexts are encoded at the running ciphertext's scale so additions
// line up after each rescale.
func evalPolyCipher(heCtx *ckkswrapper.HeContext, eval *ckks.Evaluator, ct *rlwe.Ciphertext, poly Poly) (*rlwe.Ciphertext, error) {
	coeffs := poly.Coeffs
	degree := poly.Degree

	res, err := eval.AddNew(ct, 0)
	if err != nil {
		return nil, err
	}
	if err := eval.Mul(res, 0, res); err != nil {
		return nil, err
	}
	if err := addCoeff(heCtx, eval, res, coeffs[degree], ct.Scale); err != nil {
		return nil, err
	}

	for i := degree - 1; i >= 0; i-- {
		tmp, err := eval.MulNew(res, ct)
		if err != nil {
			return nil, err
		}
		tmp, err = eval.RelinearizeNew(tmp)
		if err != nil {
			return nil, err
		}
		if err = eval.Rescale(tmp, tmp); err != nil {
			return nil, err
		}
		if coeffs[i] != 0 {
			if err := addCoeff(heCtx, eval, tmp, coeffs[i], tmp.Scale); err != nil {
				return nil, err
			}
		}
		res = tmp
	}
	return res, nil
}

func addCoeff(heCtx *ckkswrapper.HeContext, eval *ckks.Evaluator, ct *rlwe.Ciphertext, coeff float64, scale rlwe.Scale) error {
	vec := make([]complex128, heCtx.Params.MaxSlots())
	for i := range vec {
		vec[i] = complex(coeff, 0)
	}
	pt := ckks.NewPlaintext(heCtx.Params, ct.Level())
	pt.Scale = scale
	if err := heCtx.Encoder.Encode(vec, pt); err != nil {
		return err
	}
	return eval.Add(ct, pt, ct)
}
