package serving

import (
	"encoding/gob"
	"fmt"
	"io"
)

func init() {
	// Register payload types for gob encoding
	gob.Register(PredictRequest{})
	gob.Register(PredictResponse{})
}

// MessageType defines message types for the serving wire protocol.
type MessageType int

const (
	MsgPredictRequest MessageType = iota
	MsgPredictResponse
	MsgDone
	MsgError
)

// Message represents a message on the wire.
type Message struct {
	Type    MessageType
	Payload interface{}
}

// PredictRequest carries one flat input vector.
type PredictRequest struct {
	ID    int
	Input []float64
}

// PredictResponse carries the prediction for the request with the same ID.
type PredictResponse struct {
	ID     int
	Output []float64
}

// Wire handles gob message exchange over a reader/writer pair.
type Wire struct {
	encoder *gob.Encoder
	decoder *gob.Decoder
}

// NewWire creates a wire protocol handler.
func NewWire(r io.Reader, w io.Writer) *Wire {
	return &Wire{
		encoder: gob.NewEncoder(w),
		decoder: gob.NewDecoder(r),
	}
}

// Send sends a message.
func (w *Wire) Send(msg *Message) error {
	return w.encoder.Encode(msg)
}

// Receive receives a message.
func (w *Wire) Receive() (*Message, error) {
	var msg Message
	if err := w.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendPredict sends a prediction request.
func (w *Wire) SendPredict(id int, input []float64) error {
	return w.Send(&Message{
		Type:    MsgPredictRequest,
		Payload: PredictRequest{ID: id, Input: input},
	})
}

// SendResponse sends a prediction response.
func (w *Wire) SendResponse(id int, output []float64) error {
	return w.Send(&Message{
		Type:    MsgPredictResponse,
		Payload: PredictResponse{ID: id, Output: output},
	})
}

// SendDone signals completion.
func (w *Wire) SendDone() error {
	return w.Send(&Message{Type: MsgDone})
}

// SendError sends an error message.
func (w *Wire) SendError(err error) error {
	return w.Send(&Message{Type: MsgError, Payload: err.Error()})
}

// ReceivePredict receives a prediction request. io.EOF signals an orderly
// MsgDone from the peer.
func (w *Wire) ReceivePredict() (*PredictRequest, error) {
	msg, err := w.Receive()
	if err != nil {
		return nil, err
	}
	switch msg.Type {
	case MsgError:
		return nil, fmt.Errorf("remote error: %v", msg.Payload)
	case MsgDone:
		return nil, io.EOF
	case MsgPredictRequest:
	default:
		return nil, fmt.Errorf("expected predict request, got %d", msg.Type)
	}
	payload, ok := msg.Payload.(PredictRequest)
	if !ok {
		return nil, fmt.Errorf("invalid predict request payload type")
	}
	return &payload, nil
}

// ReceiveResponse receives a prediction response.
func (w *Wire) ReceiveResponse() (*PredictResponse, error) {
	msg, err := w.Receive()
	if err != nil {
		return nil, err
	}
	switch msg.Type {
	case MsgError:
		return nil, fmt.Errorf("remote error: %v", msg.Payload)
	case MsgDone:
		return nil, io.EOF
	case MsgPredictResponse:
	default:
		return nil, fmt.Errorf("expected predict response, got %d", msg.Type)
	}
	payload, ok := msg.Payload.(PredictResponse)
	if !ok {
		return nil, fmt.Errorf("invalid predict response payload type")
	}
	return &payload, nil
}
