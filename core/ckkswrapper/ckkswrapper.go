// Package ckkswrapper wraps the lattigo CKKS scheme with the key material
// and evaluator kits the secure layers need.
package ckkswrapper

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// DefaultLogN is the ring dimension log2 used when none is specified.
const DefaultLogN = 13

// HeContext bundles CKKS parameters with the keys and the encode/encrypt/
// decrypt primitives derived from them. One context backs one execution
// graph; all layers built into that graph share it.
type HeContext struct {
	Params    ckks.Parameters
	Encoder   *ckks.Encoder
	Encryptor *rlwe.Encryptor
	Decryptor *rlwe.Decryptor

	sk  *rlwe.SecretKey
	pk  *rlwe.PublicKey
	rlk *rlwe.RelinearizationKey
}

// ServerKit holds an evaluator provisioned with the rotation keys a single
// layer requires, plus the shared encoder and parameters.
type ServerKit struct {
	Params    ckks.Parameters
	Encoder   *ckks.Encoder
	Evaluator *ckks.Evaluator
}

// NewHeContext creates a context with the default ring dimension.
func NewHeContext() *HeContext {
	return NewHeContextWithLogN(DefaultLogN)
}

// NewHeContextWithLogN creates a context for the given ring dimension log2.
func NewHeContextWithLogN(logN int) *HeContext {
	params, err := ckks.NewParametersFromLiteral(ckks.ParametersLiteral{
		LogN:            logN,
		LogQ:            []int{55, 45, 45, 45, 45},
		LogP:            []int{55},
		LogDefaultScale: 45,
	})
	if err != nil {
		panic(err)
	}
	return NewHeContextWithParams(params)
}

// NewHeContextWithParams creates a context from already-built parameters.
func NewHeContextWithParams(params ckks.Parameters) *HeContext {
	kgen := rlwe.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)

	return &HeContext{
		Params:    params,
		Encoder:   ckks.NewEncoder(params),
		Encryptor: rlwe.NewEncryptor(params, pk),
		Decryptor: rlwe.NewDecryptor(params, sk),
		sk:        sk,
		pk:        pk,
		rlk:       rlk,
	}
}

// GenServerKit builds an evaluator carrying galois keys for the given
// rotation steps. Layers request exactly the rotations their forward pass
// uses; an empty list yields an evaluator with relinearization only.
func (h *HeContext) GenServerKit(rots []int) *ServerKit {
	kgen := rlwe.NewKeyGenerator(h.Params)

	galEls := make([]uint64, 0, len(rots))
	seen := make(map[int]bool, len(rots))
	for _, rot := range rots {
		if seen[rot] {
			continue
		}
		seen[rot] = true
		galEls = append(galEls, h.Params.GaloisElement(rot))
	}
	galKeys := kgen.GenGaloisKeysNew(galEls, h.sk)
	evk := rlwe.NewMemEvaluationKeySet(h.rlk, galKeys...)

	return &ServerKit{
		Params:    h.Params,
		Encoder:   h.Encoder,
		Evaluator: ckks.NewEvaluator(h.Params, evk),
	}
}

// GetWorkerEvaluator returns an evaluator safe to use from another
// goroutine. Evaluators share keys but carry per-instance buffers.
func (k *ServerKit) GetWorkerEvaluator() *ckks.Evaluator {
	return k.Evaluator.ShallowCopy()
}
