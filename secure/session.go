package secure

import "secureshare/core/ckkswrapper"

// Session is the execution context for one graph. It runs the graph's
// registered initializers exactly once per Reset.
type Session struct {
	graph       *Graph
	initialized bool
}

// NewSession binds a session to a graph.
func NewSession(g *Graph) *Session {
	return &Session{graph: g}
}

// Graph returns the bound graph.
func (s *Session) Graph() *Graph { return s.graph }

// Context returns the bound graph's HE context.
func (s *Session) Context() *ckkswrapper.HeContext { return s.graph.Context() }

// Reset discards any prior initialization state.
func (s *Session) Reset() { s.initialized = false }

// Initialized reports whether Init has completed.
func (s *Session) Initialized() bool { return s.initialized }

// Init runs the graph's registered initializers in registration order.
// Repeated calls after a successful Init are no-ops.
func (s *Session) Init() error {
	if s.initialized {
		return nil
	}
	for _, fn := range s.graph.inits {
		if err := fn(); err != nil {
			return err
		}
	}
	s.initialized = true
	return nil
}

// Close releases the session. The key material lives on the graph, so
// closing only invalidates the initialization state.
func (s *Session) Close() error {
	s.initialized = false
	return nil
}
