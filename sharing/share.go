// Package sharing converts a trained plaintext model into its
// secure-protocol equivalent and serves it: Share rebuilds the model under
// a protocol and stands up a queue server; Serve drives the server's
// request loop for a bounded number of steps.
package sharing

import (
	"fmt"

	"secureshare/nn"
	"secureshare/secure"
	"secureshare/serving"
	"secureshare/tensor"
	"secureshare/utils"
)

// DefaultServeSteps is the number of loop steps Serve runs when the caller
// passes a non-positive count.
const DefaultServeSteps = 5

// ServedModel owns the runtime state produced by Share: the request server
// bound to the rebuilt computation and the session holding its initialized
// state. The caller keeps the handle; the input model is never mutated.
type ServedModel struct {
	Model   *nn.Sequential
	Server  *serving.QueueServer
	Session *secure.Session

	secureModel *secure.Sequential
}

// SecureModel returns the rebuilt protocol-backed model.
func (sm *ServedModel) SecureModel() *secure.Sequential { return sm.secureModel }

// Close stops the request server and releases the session.
func (sm *ServedModel) Close() error {
	sm.Server.Close()
	return sm.Session.Close()
}

type options struct {
	prot     *secure.Protocol
	protName string
	graph    *secure.Graph
}

// Option configures Share.
type Option func(*options)

// WithProtocol reuses a caller-supplied protocol instance.
func WithProtocol(p *secure.Protocol) Option {
	return func(o *options) { o.prot = p }
}

// WithProtocolName selects one of the built-in protocols by name.
// Unrecognized names make Share fail with secure.UnknownProtocolError.
func WithProtocolName(name string) Option {
	return func(o *options) { o.protName = name }
}

// WithGraph rebuilds the model into a caller-supplied graph instead of a
// fresh one. The graph's protocol governs; the rebuild and the server
// share the graph.
func WithGraph(g *secure.Graph) Option {
	return func(o *options) { o.graph = g }
}

// Share converts model into a secure model and returns the handle owning
// its request server and session. On error no handle is returned and the
// input model is untouched.
func Share(model *nn.Sequential, opts ...Option) (*ServedModel, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Snapshot weights strictly before the rebuild: weight retrieval is
	// by-reference into the live layers.
	stored := snapshotWeights(model)

	prot := o.prot
	if prot == nil {
		if o.protName != "" {
			named, err := secure.NamedProtocol(o.protName)
			if err != nil {
				return nil, err
			}
			prot = named
		} else {
			prot = secure.DefaultProtocol()
		}
	}

	graph := o.graph
	if graph == nil {
		graph = secure.NewGraph(prot)
	}

	secureModel, batchInputShape, err := rebuildSecureModel(graph, model, stored)
	if err != nil {
		return nil, err
	}
	if batchInputShape == nil {
		return nil, fmt.Errorf("no layer declares a batch input shape")
	}
	outputShape := model.OutputShape()
	if outputShape == nil {
		return nil, fmt.Errorf("model declares no output shape")
	}

	outSize := 1
	for _, d := range outputShape {
		outSize *= d
	}
	server := serving.NewQueueServer(batchInputShape, outputShape,
		func(input *tensor.Tensor) (*tensor.Tensor, error) {
			return secureModel.Predict(input, outSize)
		})

	sess := secure.NewSession(graph)
	sess.Reset()
	if err := sess.Init(); err != nil {
		return nil, err
	}

	return &ServedModel{
		Model:       model,
		Server:      server,
		Session:     sess,
		secureModel: secureModel,
	}, nil
}

// Serve runs the attached server's loop for numSteps steps (DefaultServeSteps
// when numSteps <= 0), logging one line per served step. Blocks until the
// steps complete; loop errors propagate unchanged.
func Serve(sm *ServedModel, numSteps int) error {
	if numSteps <= 0 {
		numSteps = DefaultServeSteps
	}
	return sm.Server.Run(numSteps, func() {
		if utils.Verbose {
			fmt.Fprintln(utils.Output, "served")
		}
	})
}

// snapshotWeights deep-copies every layer's weights, keyed by layer name.
func snapshotWeights(model *nn.Sequential) map[string][]*tensor.Tensor {
	stored := make(map[string][]*tensor.Tensor)
	for _, layer := range model.Layers() {
		weights := layer.Weights()
		copies := make([]*tensor.Tensor, len(weights))
		for i, w := range weights {
			copies[i] = w.Clone()
		}
		stored[layer.Name()] = copies
	}
	return stored
}
