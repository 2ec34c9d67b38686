package serving

import (
	"fmt"
	"testing"
	"time"

	"secureshare/tensor"
)

func doubler(input *tensor.Tensor) (*tensor.Tensor, error) {
	out := input.Clone()
	for i := range out.Data {
		out.Data[i] *= 2
	}
	return out, nil
}

func TestRunServesExactSteps(t *testing.T) {
	srv := NewQueueServer([]int{1, 2}, []int{1, 2}, doubler)

	resps := make([]<-chan Response, 0, 3)
	for i := 0; i < 3; i++ {
		ch, err := srv.Enqueue(tensor.NewWithData([]float64{float64(i), 1}))
		if err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
		resps = append(resps, ch)
	}

	steps := 0
	if err := srv.Run(3, func() { steps++ }); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if steps != 3 {
		t.Errorf("stepFn ran %d times, want 3", steps)
	}

	for i, ch := range resps {
		resp := <-ch
		if resp.Err != nil {
			t.Fatalf("request %d failed: %v", i, resp.Err)
		}
		if resp.Output.Data[0] != float64(2*i) {
			t.Errorf("request %d output = %v, want first slot %d", i, resp.Output.Data, 2*i)
		}
	}
}

func TestEnqueueRejectsBadShape(t *testing.T) {
	srv := NewQueueServer([]int{1, 4}, []int{1, 2}, doubler)
	if _, err := srv.Enqueue(tensor.NewWithData([]float64{1, 2})); err == nil {
		t.Errorf("expected shape mismatch error")
	}
}

func TestComputationErrorStopsRun(t *testing.T) {
	srv := NewQueueServer([]int{1, 1}, []int{1, 1}, func(*tensor.Tensor) (*tensor.Tensor, error) {
		return nil, fmt.Errorf("kaboom")
	})
	ch, err := srv.Enqueue(tensor.NewWithData([]float64{1}))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	steps := 0
	if err := srv.Run(2, func() { steps++ }); err == nil {
		t.Fatalf("Run swallowed the computation error")
	}
	if steps != 0 {
		t.Errorf("stepFn ran %d times after a failed step", steps)
	}
	resp := <-ch
	if resp.Err == nil {
		t.Errorf("requester did not receive the error")
	}
}

func TestCloseUnblocksRun(t *testing.T) {
	srv := NewQueueServer([]int{1, 1}, []int{1, 1}, doubler)

	ret := make(chan error, 1)
	go func() { ret <- srv.Run(5, nil) }()
	srv.Close()

	select {
	case err := <-ret:
		if err != nil {
			t.Errorf("Run returned %v after Close, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Close")
	}

	if _, err := srv.Enqueue(tensor.NewWithData([]float64{1})); err == nil {
		t.Errorf("Enqueue succeeded on closed server")
	}
}

func TestCloseIdempotent(t *testing.T) {
	srv := NewQueueServer([]int{1, 1}, []int{1, 1}, doubler)
	srv.Close()
	srv.Close()
}
