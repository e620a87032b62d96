// Package ws implements the presentation WebSocket client. One connection
// serves one playback session; it is closed on stop and never reconnected.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"nhooyr.io/websocket"

	"podium/internal/logging"
)

// Conn abstracts the underlying socket so tests can substitute a fake.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Client handles the WebSocket connection for a presentation session.
type Client struct {
	url     string
	logger  *slog.Logger
	conn    Conn
	msgChan chan Message
	errChan chan error
	done    chan struct{}
	closed  bool
	mu      sync.Mutex
}

// NewClient creates a presentation socket client for the given URL.
func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{
		url:     url,
		logger:  logging.NewComponentLogger(logger, "ws"),
		msgChan: make(chan Message, 16),
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	// Section payloads can carry full content text plus image lists.
	conn.SetReadLimit(1 << 20)

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// connectRaw wires a pre-built connection; used by tests.
func (c *Client) connectRaw(conn Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	go c.readLoop()
}

// Send issues a client action on the socket.
func (c *Client) Send(ctx context.Context, action string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return errors.New("not connected")
	}
	data, err := json.Marshal(Action{Action: action})
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Messages returns the channel of server events. It is closed when the read
// loop ends.
func (c *Client) Messages() <-chan Message {
	return c.msgChan
}

// Errors returns a channel that receives the terminal read error, if any.
func (c *Client) Errors() <-chan error {
	return c.errChan
}

// Close closes the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)

	if c.conn != nil {
		return c.conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

func (c *Client) readLoop() {
	defer close(c.msgChan)

	ctx := context.Background()
	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := c.conn.Read(ctx)
		if err != nil {
			select {
			case <-c.done:
				// Close() interrupted the read; not an error.
			default:
				c.errChan <- fmt.Errorf("websocket read: %w", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("discarding malformed server message",
				logging.Error(err),
				logging.String(logging.FieldEventType, "ws_decode_failed"))
			continue
		}

		select {
		case c.msgChan <- msg:
		case <-c.done:
			return
		}
	}
}
