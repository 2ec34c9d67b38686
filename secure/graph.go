package secure

import "secureshare/core/ckkswrapper"

// Graph is the unit of compiled secure computation. Layers built into a
// graph share its protocol context and register their expensive setup
// (key generation, weight encryption) as initializers, run later by a
// Session bound to the graph.
type Graph struct {
	prot  *Protocol
	ctx   *ckkswrapper.HeContext
	inits []func() error
}

// NewGraph creates a graph for the given protocol. A nil protocol selects
// the default.
func NewGraph(prot *Protocol) *Graph {
	if prot == nil {
		prot = DefaultProtocol()
	}
	return &Graph{prot: prot}
}

// Protocol returns the protocol the graph was built for.
func (g *Graph) Protocol() *Protocol { return g.prot }

// Context returns the graph's HE context, creating it on first use.
// Context creation generates the key material, so it is deferred until a
// layer actually needs it.
func (g *Graph) Context() *ckkswrapper.HeContext {
	if g.ctx == nil {
		g.ctx = g.prot.newContext()
	}
	return g.ctx
}

// RegisterInit queues an initializer to run when a session initializes the
// graph's runtime state.
func (g *Graph) RegisterInit(fn func() error) {
	g.inits = append(g.inits, fn)
}
