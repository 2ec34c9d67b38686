package secure

import (
	"fmt"

	"secureshare/kwargs"
	"secureshare/nn"
)

// Typed accessors over the constructor-argument sets the layer builders
// receive. Missing optional arguments fall back to the given default;
// wrongly-typed values are construction errors.

func intArg(args kwargs.Args, name string) (int, error) {
	v, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("argument %q: expected int, got %T", name, v)
	}
	return n, nil
}

func boolArg(args kwargs.Args, name string, def bool) (bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %q: expected bool, got %T", name, v)
	}
	return b, nil
}

func stringArg(args kwargs.Args, name, def string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q: expected string, got %T", name, v)
	}
	return s, nil
}

func initializerArg(args kwargs.Args, name string) (nn.Initializer, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	init, ok := v.(nn.Initializer)
	if !ok {
		return nil, fmt.Errorf("argument %q: expected nn.Initializer, got %T", name, v)
	}
	return init, nil
}

func shapeArg(args kwargs.Args, name string) ([]int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	shape, ok := v.([]int)
	if !ok {
		return nil, fmt.Errorf("argument %q: expected []int, got %T", name, v)
	}
	return shape, nil
}
