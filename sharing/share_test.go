package sharing

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"secureshare/nn"
	"secureshare/nn/layers"
	"secureshare/secure"
	"secureshare/tensor"
	"secureshare/utils"
)

func singleDenseModel(t *testing.T) *nn.Sequential {
	t.Helper()
	kernel, err := tensor.NewWithShape([]float64{1, 2, 3, 4}, 1, 4)
	if err != nil {
		t.Fatalf("NewWithShape failed: %v", err)
	}
	return nn.NewSequential(
		layers.NewDense(4, 1,
			layers.WithName("d0"),
			layers.WithBatchInputShape(1, 4),
			layers.WithKernelInitializer(nn.NewConstant(kernel)),
			layers.WithBiasInitializer(nn.NewConstant(tensor.NewWithData([]float64{0.5}))),
		),
	)
}

func TestSharePreservesWeights(t *testing.T) {
	model := singleDenseModel(t)

	sm, err := Share(model, WithProtocol(secure.CKKSLight()))
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	defer sm.Close()

	if sm.Model != model {
		t.Errorf("handle does not reference the input model")
	}
	if !sm.Session.Initialized() {
		t.Errorf("session not initialized after Share")
	}

	secureLayers := sm.SecureModel().Layers()
	if len(secureLayers) != 1 {
		t.Fatalf("rebuilt %d layers, want 1", len(secureLayers))
	}
	sd, ok := secureLayers[0].(*secure.Dense)
	if !ok {
		t.Fatalf("rebuilt layer is %T, want *secure.Dense", secureLayers[0])
	}
	want := []float64{1, 2, 3, 4}
	for i, v := range want {
		if sd.Kernel().Data[i] != v {
			t.Errorf("kernel = %v, want %v", sd.Kernel().Data, want)
			break
		}
	}
	if sd.Bias().Data[0] != 0.5 {
		t.Errorf("bias = %v, want [0.5]", sd.Bias().Data)
	}
}

func TestShareSnapshotsWeights(t *testing.T) {
	model := singleDenseModel(t)

	// Mutating the plaintext model after sharing must not leak into the
	// rebuilt layer.
	sm, err := Share(model, WithProtocol(secure.CKKSLight()))
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	defer sm.Close()

	model.Layers()[0].Weights()[0].Data[0] = 99
	sd := sm.SecureModel().Layers()[0].(*secure.Dense)
	if sd.Kernel().Data[0] != 1 {
		t.Errorf("secure kernel follows plaintext mutation: %v", sd.Kernel().Data)
	}
}

func TestShareUnsupportedLayer(t *testing.T) {
	model := nn.NewSequential(
		layers.NewDense(4, 3, layers.WithBatchInputShape(1, 4)),
		layers.NewDropout(0.5),
	)

	sm, err := Share(model, WithProtocol(secure.CKKSLight()))
	if err == nil {
		t.Fatalf("expected unsupported-layer error")
	}
	if sm != nil {
		t.Errorf("got a handle alongside the error")
	}
	var unsupported *UnsupportedLayerError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error type = %T, want *UnsupportedLayerError", err)
	}
}

func TestShareUnknownProtocolName(t *testing.T) {
	sm, err := Share(singleDenseModel(t), WithProtocolName("pond"))
	if err == nil {
		t.Fatalf("expected unknown-protocol error")
	}
	if sm != nil {
		t.Errorf("got a handle alongside the error")
	}
	var unknown *secure.UnknownProtocolError
	if !errors.As(err, &unknown) {
		t.Fatalf("error type = %T, want *UnknownProtocolError", err)
	}
}

func TestShareRequiresBatchInputShape(t *testing.T) {
	model := nn.NewSequential(layers.NewDense(4, 1))
	if _, err := Share(model, WithProtocol(secure.CKKSLight())); err == nil {
		t.Errorf("expected error for missing batch input shape")
	}
}

func TestShareIntoCallerGraph(t *testing.T) {
	g := secure.NewGraph(secure.CKKSLight())
	sm, err := Share(singleDenseModel(t), WithGraph(g))
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	defer sm.Close()
	if sm.SecureModel().Graph() != g {
		t.Errorf("rebuilt model does not use the supplied graph")
	}
}

func TestServeStepsAndPrediction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ciphertext evaluation in short mode")
	}
	sm, err := Share(singleDenseModel(t), WithProtocol(secure.CKKSLight()))
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	defer sm.Close()

	var buf bytes.Buffer
	oldVerbose, oldOutput := utils.Verbose, utils.Output
	utils.Verbose, utils.Output = true, &buf
	defer func() { utils.Verbose, utils.Output = oldVerbose, oldOutput }()

	const steps = 3
	var wg sync.WaitGroup
	results := make([]serveResult, steps)
	for i := 0; i < steps; i++ {
		ch, err := sm.Server.Enqueue(tensor.NewWithData([]float64{1, 1, 1, 1}))
		if err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := <-ch
			results[i] = serveResult{out: resp.Output, err: resp.Err}
		}(i)
	}

	if err := Serve(sm, steps); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "served"); got != steps {
		t.Errorf("logged %d served steps, want %d", got, steps)
	}
	for i, r := range results {
		if r.err != nil {
			t.Fatalf("request %d failed: %v", i, r.err)
		}
		// 1+2+3+4 + 0.5 = 10.5
		if diff := r.out.Data[0] - 10.5; diff > 1e-2 || diff < -1e-2 {
			t.Errorf("request %d output = %v, want ~10.5", i, r.out.Data)
		}
	}
}

type serveResult struct {
	out *tensor.Tensor
	err error
}
