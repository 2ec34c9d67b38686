package sharing

import (
	"errors"
	"testing"

	"secureshare/nn"
	"secureshare/nn/layers"
	"secureshare/secure"
	"secureshare/tensor"
)

func TestInstantiateDenseFiltersAndInjectsWeights(t *testing.T) {
	kernel, _ := tensor.NewWithShape([]float64{1, 2, 3, 4}, 1, 4)
	bias := tensor.NewWithData([]float64{0.5})
	d := layers.NewDense(4, 1,
		layers.WithName("d0"),
		layers.WithBatchInputShape(1, 4),
		layers.WithKernelInitializer(nn.NewConstant(kernel)),
		layers.WithBiasInitializer(nn.NewConstant(bias)),
		layers.WithKernelRegularizer("l2"),
	)

	g := secure.NewGraph(secure.CKKSLight())
	stored := map[string][]*tensor.Tensor{"d0": {kernel.Clone(), bias.Clone()}}
	layer, err := instantiateSecureLayer(g, d, stored)
	if err != nil {
		t.Fatalf("instantiateSecureLayer failed: %v", err)
	}

	sd, ok := layer.(*secure.Dense)
	if !ok {
		t.Fatalf("built %T, want *secure.Dense", layer)
	}
	if sd.Name() != "d0" {
		t.Errorf("name = %q, want d0", sd.Name())
	}
	if !tensor.Equal(sd.Kernel(), kernel) {
		t.Errorf("kernel = %v, want %v", sd.Kernel().Data, kernel.Data)
	}
	if !tensor.Equal(sd.Bias(), bias) {
		t.Errorf("bias = %v, want %v", sd.Bias().Data, bias.Data)
	}
	shape := sd.BatchInputShape()
	if len(shape) != 2 || shape[0] != 1 || shape[1] != 4 {
		t.Errorf("batch input shape = %v, want [1 4]", shape)
	}
}

func TestInstantiateUnsupportedLayer(t *testing.T) {
	g := secure.NewGraph(secure.CKKSLight())
	_, err := instantiateSecureLayer(g, layers.NewDropout(0.5), nil)
	if err == nil {
		t.Fatalf("expected error for dropout")
	}
	var unsupported *UnsupportedLayerError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error type = %T, want *UnsupportedLayerError", err)
	}
	if unsupported.Type != "Dropout" {
		t.Errorf("error names %q, want Dropout", unsupported.Type)
	}
}

func TestRebuildPreservesLayerOrder(t *testing.T) {
	model := nn.NewSequential(
		layers.NewDense(4, 3, layers.WithName("a"), layers.WithBatchInputShape(1, 4)),
		layers.NewDense(3, 2, layers.WithName("b")),
		layers.NewDense(2, 2, layers.WithName("c")),
	)

	g := secure.NewGraph(secure.CKKSLight())
	sm, batchInputShape, err := rebuildSecureModel(g, model, snapshotWeights(model))
	if err != nil {
		t.Fatalf("rebuildSecureModel failed: %v", err)
	}
	if got := len(sm.Layers()); got != 3 {
		t.Fatalf("rebuilt %d layers, want 3", got)
	}
	for i, want := range []string{"a", "b", "c"} {
		if sm.Layers()[i].Name() != want {
			t.Errorf("layer %d name = %q, want %q", i, sm.Layers()[i].Name(), want)
		}
	}
	if len(batchInputShape) != 2 || batchInputShape[1] != 4 {
		t.Errorf("batch input shape = %v, want [1 4]", batchInputShape)
	}
}

func TestRebuildStopsAtFirstUnsupported(t *testing.T) {
	model := nn.NewSequential(
		layers.NewDense(4, 3, layers.WithBatchInputShape(1, 4)),
		layers.NewDropout(0.2),
		layers.NewDense(3, 2),
	)

	g := secure.NewGraph(secure.CKKSLight())
	sm, _, err := rebuildSecureModel(g, model, snapshotWeights(model))
	if err == nil {
		t.Fatalf("expected unsupported-layer error")
	}
	if sm != nil {
		t.Errorf("got a partial model alongside the error")
	}
}
