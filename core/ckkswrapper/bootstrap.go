package ckkswrapper

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// CheatBootstrap refreshes a ciphertext's level by decrypting and
// re-encrypting. It requires the secret key, so it only works for contexts
// where keys stay local; in a multi-party deployment this is where real
// bootstrapping would go.
//
// The refreshed ciphertext has the maximum level and default scale.
func (h *HeContext) CheatBootstrap(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	pt := h.Decryptor.DecryptNew(ct)

	values := make([]complex128, h.Params.MaxSlots())
	if err := h.Encoder.Decode(pt, values); err != nil {
		return nil, err
	}

	newPt := ckks.NewPlaintext(h.Params, h.Params.MaxLevel())
	if err := h.Encoder.Encode(values, newPt); err != nil {
		return nil, err
	}
	return h.Encryptor.EncryptNew(newPt)
}

// NeedsBootstrap returns true if the ciphertext level is at or below the
// threshold. A threshold of 0 or less means 1 level remaining.
func NeedsBootstrap(ct *rlwe.Ciphertext, threshold int) bool {
	if threshold <= 0 {
		threshold = 1
	}
	return ct.Level() <= threshold
}
