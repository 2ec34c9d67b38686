package sharing

import (
	"fmt"

	"secureshare/kwargs"
	"secureshare/nn"
	"secureshare/secure"
	"secureshare/tensor"
)

// Arguments with no secure equivalent, removed before a layer is rebuilt.
var argsNotSupportedBySecure = []string{
	"activity_regularizer",
	"kernel_regularizer",
	"bias_regularizer",
	"kernel_constraint",
	"bias_constraint",
	"dilation_rate",
}

// instantiateSecureLayer rebuilds one plaintext layer as its secure
// counterpart: filter the constructor arguments down to what the secure
// builder declares, then re-inject the snapshotted weights as constant
// initializers.
func instantiateSecureLayer(g *secure.Graph, layer nn.Layer, stored map[string][]*tensor.Tensor) (secure.Layer, error) {
	args := layer.Config().Clone()
	kwargs.Trim(args, argsNotSupportedBySecure)

	builder, ok := secure.Registry[layer.TypeName()]
	if !ok {
		return nil, &UnsupportedLayerError{Type: layer.TypeName()}
	}

	accepted := append([]string(nil), builder.Params...)
	kwargs.Trim(&accepted, argsNotSupportedBySecure)

	// Common options ride in a nested entry; pull it out before
	// restricting and merge it back below.
	var common kwargs.Args
	if v, ok := args["kwargs"]; ok {
		common, _ = v.(kwargs.Args)
		delete(args, "kwargs")
	}

	args.Restrict(accepted)

	if _, ok := args["kernel_initializer"]; ok {
		weights := stored[layer.Name()]
		if len(weights) == 0 {
			return nil, fmt.Errorf("layer %s: no snapshotted kernel weights", layer.Name())
		}
		args["kernel_initializer"] = nn.NewConstant(weights[0])
	}
	if useBias, ok := args["use_bias"].(bool); ok && useBias {
		weights := stored[layer.Name()]
		if len(weights) < 2 {
			return nil, fmt.Errorf("layer %s: no snapshotted bias weights", layer.Name())
		}
		args["bias_initializer"] = nn.NewConstant(weights[1])
	}

	if common != nil {
		args.Merge(common)
	}

	return builder.Build(g, args)
}

// rebuildSecureModel translates every layer of the plaintext model, in
// order, into a secure model on the given graph. The batch input shape is
// taken from the last built layer that declares one.
func rebuildSecureModel(g *secure.Graph, model *nn.Sequential, stored map[string][]*tensor.Tensor) (*secure.Sequential, []int, error) {
	secureModel := secure.NewSequential(g)
	var batchInputShape []int

	for _, layer := range model.Layers() {
		secureLayer, err := instantiateSecureLayer(g, layer, stored)
		if err != nil {
			return nil, nil, err
		}
		secureModel.Add(secureLayer)

		if shaper, ok := secureLayer.(secure.BatchShaper); ok {
			if shape := shaper.BatchInputShape(); shape != nil {
				batchInputShape = shape
			}
		}
	}
	return secureModel, batchInputShape, nil
}
