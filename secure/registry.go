package secure

import (
	"sort"

	"secureshare/kwargs"
)

// Builder is one entry of the layer translation table: the constructor
// parameter names the secure layer accepts, and the typed build function.
// The table is the closed set of plaintext layer types that can be rebuilt
// under a secure protocol.
type Builder struct {
	Params []string
	Build  func(g *Graph, args kwargs.Args) (Layer, error)
}

// Registry maps plaintext layer type names to their secure builders.
var Registry = map[string]Builder{
	"Dense": {
		Params: []string{
			"units", "input_dim", "activation", "use_bias",
			"kernel_initializer", "bias_initializer",
			"name", "batch_input_shape",
		},
		Build: func(g *Graph, args kwargs.Args) (Layer, error) {
			return newDense(g, args)
		},
	},
	"Activation": {
		Params: []string{"activation", "name"},
		Build: func(g *Graph, args kwargs.Args) (Layer, error) {
			return newActivation(g, args)
		},
	},
	"Flatten": {
		Params: []string{"name", "batch_input_shape"},
		Build: func(g *Graph, args kwargs.Args) (Layer, error) {
			return newFlatten(g, args)
		},
	},
}

// SupportedLayers returns the registered layer type names, sorted.
func SupportedLayers() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
