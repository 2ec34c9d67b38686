package serving

import (
	"fmt"
	"net"
)

// Client sends prediction requests to a remote queue server.
type Client struct {
	conn   net.Conn
	wire   *Wire
	nextID int
}

// Dial connects to a queue server at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, wire: NewWire(conn, conn)}, nil
}

// Predict sends one input vector and waits for the prediction.
func (c *Client) Predict(input []float64) ([]float64, error) {
	c.nextID++
	if err := c.wire.SendPredict(c.nextID, input); err != nil {
		return nil, err
	}
	resp, err := c.wire.ReceiveResponse()
	if err != nil {
		return nil, err
	}
	if resp.ID != c.nextID {
		return nil, fmt.Errorf("response id %d, want %d", resp.ID, c.nextID)
	}
	return resp.Output, nil
}

// Close signals completion and closes the connection.
func (c *Client) Close() error {
	_ = c.wire.SendDone()
	return c.conn.Close()
}
