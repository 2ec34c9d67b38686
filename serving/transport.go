package serving

import (
	"io"
	"net"

	"secureshare/tensor"
)

// ServeWire bridges one wire connection into the queue: each received
// request is enqueued, its response awaited and sent back. Returns when
// the peer sends MsgDone or the connection drops.
func (s *QueueServer) ServeWire(w *Wire) error {
	for {
		req, err := w.ReceivePredict()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		respCh, err := s.Enqueue(tensor.NewWithData(req.Input))
		if err != nil {
			if sendErr := w.SendError(err); sendErr != nil {
				return sendErr
			}
			continue
		}
		resp := <-respCh
		if resp.Err != nil {
			if sendErr := w.SendError(resp.Err); sendErr != nil {
				return sendErr
			}
			continue
		}
		if err := w.SendResponse(req.ID, resp.Output.Data); err != nil {
			return err
		}
	}
}

// AcceptLoop accepts connections and serves each on its own goroutine
// until the listener closes. Per-connection errors are not fatal to the
// loop; the caller owns the listener's lifetime.
func (s *QueueServer) AcceptLoop(l net.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		go func(c net.Conn) {
			defer c.Close()
			_ = s.ServeWire(NewWire(c, c))
		}(conn)
	}
}
