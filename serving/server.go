// Package serving runs prediction requests against a fixed, pre-built
// secure computation: an in-process queue server plus a gob wire protocol
// for remote clients.
package serving

import (
	"fmt"

	"secureshare/tensor"
)

// Computation answers one prediction request.
type Computation func(input *tensor.Tensor) (*tensor.Tensor, error)

// Response is the outcome of one served request.
type Response struct {
	Output *tensor.Tensor
	Err    error
}

type request struct {
	input *tensor.Tensor
	resp  chan Response
}

// QueueServer serves requests against one computation with fixed input and
// output shapes. Requests queue up via Enqueue (directly or through a
// transport); Run drains the queue for a bounded number of steps.
type QueueServer struct {
	inputShape  []int
	outputShape []int
	computation Computation
	queue       chan *request
	done        chan struct{}
}

// DefaultQueueDepth bounds how many requests may wait between Run steps.
const DefaultQueueDepth = 16

// NewQueueServer creates a server bound to the given computation.
func NewQueueServer(inputShape, outputShape []int, fn Computation) *QueueServer {
	return &QueueServer{
		inputShape:  append([]int(nil), inputShape...),
		outputShape: append([]int(nil), outputShape...),
		computation: fn,
		queue:       make(chan *request, DefaultQueueDepth),
		done:        make(chan struct{}),
	}
}

// InputShape returns the server's declared input shape.
func (s *QueueServer) InputShape() []int { return s.inputShape }

// OutputShape returns the server's declared output shape.
func (s *QueueServer) OutputShape() []int { return s.outputShape }

// Enqueue submits one request. The returned channel delivers exactly one
// Response once a Run step picks the request up.
func (s *QueueServer) Enqueue(input *tensor.Tensor) (<-chan Response, error) {
	if want := shapeSize(s.inputShape); input.Size() != want {
		return nil, fmt.Errorf("input size %d, want %d (shape %v)", input.Size(), want, s.inputShape)
	}
	req := &request{input: input, resp: make(chan Response, 1)}
	select {
	case s.queue <- req:
		return req.resp, nil
	case <-s.done:
		return nil, fmt.Errorf("server closed")
	}
}

// Run serves numSteps requests, blocking until each arrives, and invokes
// stepFn after every served step. A computation error is delivered to the
// requester and also stops the loop.
func (s *QueueServer) Run(numSteps int, stepFn func()) error {
	for step := 0; step < numSteps; step++ {
		var req *request
		select {
		case req = <-s.queue:
		case <-s.done:
			return nil
		}

		out, err := s.computation(req.input)
		req.resp <- Response{Output: out, Err: err}
		if err != nil {
			return fmt.Errorf("serve step %d: %w", step, err)
		}
		if stepFn != nil {
			stepFn()
		}
	}
	return nil
}

// Close stops the server. Pending Enqueue calls fail; an active Run
// returns after its current step.
func (s *QueueServer) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func shapeSize(shape []int) int {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return size
}
