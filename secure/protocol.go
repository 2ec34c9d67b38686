// Package secure provides the protocol-backed runtime: CKKS protocol
// profiles, the execution graph/session pair, and the secure layer set a
// plaintext model can be rebuilt into.
package secure

import (
	"fmt"

	"secureshare/core/ckkswrapper"
)

// Protocol is a secure-computation profile. A profile fixes the CKKS
// parameter set every context built for it uses; the graph a model is
// rebuilt into carries exactly one protocol.
type Protocol struct {
	name string
	logN int
}

// Name returns the protocol's registry name.
func (p *Protocol) Name() string { return p.name }

func (p *Protocol) newContext() *ckkswrapper.HeContext {
	return ckkswrapper.NewHeContextWithLogN(p.logN)
}

// CKKS is the default profile (ring dimension 2^13).
func CKKS() *Protocol { return &Protocol{name: "ckks", logN: 13} }

// CKKSLight is a reduced profile (ring dimension 2^12) for tests and
// development. Its modulus chain is not sized for production security.
func CKKSLight() *Protocol { return &Protocol{name: "ckks-light", logN: 12} }

// DefaultProtocol returns the profile used when a caller specifies none.
func DefaultProtocol() *Protocol { return CKKS() }

// UnknownProtocolError is returned when a named protocol lookup misses.
type UnknownProtocolError struct {
	Name string
}

func (e *UnknownProtocolError) Error() string {
	return fmt.Sprintf("unknown protocol %q (known: ckks, ckks-light)", e.Name)
}

// NamedProtocol resolves one of the built-in protocol names.
func NamedProtocol(name string) (*Protocol, error) {
	switch name {
	case "ckks":
		return CKKS(), nil
	case "ckks-light":
		return CKKSLight(), nil
	default:
		return nil, &UnknownProtocolError{Name: name}
	}
}
