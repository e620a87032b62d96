package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"podium/internal/logging"
)

// fakeConn feeds scripted frames to the read loop and records writes.
type fakeConn struct {
	mu      sync.Mutex
	frames  chan []byte
	written [][]byte
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 16)}
}

func (f *fakeConn) push(data []byte) {
	f.frames <- data
}

func (f *fakeConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case data, ok := <-f.frames:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.MessageText, data, nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (f *fakeConn) Write(_ context.Context, _ websocket.MessageType, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, data)
	return nil
}

func (f *fakeConn) Close(websocket.StatusCode, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("already closed")
	}
	f.closed = true
	close(f.frames)
	return nil
}

func (f *fakeConn) lastWrite(t *testing.T) []byte {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		t.Fatal("expected a written frame")
	}
	return f.written[len(f.written)-1]
}

func newTestClient(conn *fakeConn) *Client {
	client := NewClient("ws://test.invalid/ws", logging.NewNop())
	client.connectRaw(conn)
	return client
}

func receiveMessage(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-client.Messages():
		if !ok {
			t.Fatal("message channel closed unexpectedly")
		}
		return msg
	case err := <-client.Errors():
		t.Fatalf("unexpected read error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestClientDecodesServerMessages(t *testing.T) {
	conn := newFakeConn()
	client := newTestClient(conn)
	defer client.Close()

	conn.push([]byte(`{"type":"start","title":"Demo","total_sections":3}`))
	conn.push([]byte(`{"type":"section","section_index":1,"content":"Hello","images":["a.png"],"key_takeaways":["fast"]}`))

	start := receiveMessage(t, client)
	if start.Type != TypeStart || start.Title != "Demo" || start.TotalSections != 3 {
		t.Fatalf("unexpected start message: %#v", start)
	}

	section := receiveMessage(t, client)
	if section.Type != TypeSection || section.SectionIndex != 1 || section.Content != "Hello" {
		t.Fatalf("unexpected section message: %#v", section)
	}
	if len(section.Images) != 1 || section.Images[0] != "a.png" {
		t.Fatalf("unexpected section images: %#v", section.Images)
	}
	if len(section.KeyTakeaways) != 1 || section.KeyTakeaways[0] != "fast" {
		t.Fatalf("unexpected takeaways: %#v", section.KeyTakeaways)
	}
}

func TestClientSkipsMalformedFrames(t *testing.T) {
	conn := newFakeConn()
	client := newTestClient(conn)
	defer client.Close()

	conn.push([]byte(`{not json`))
	conn.push([]byte(`{"type":"complete"}`))

	msg := receiveMessage(t, client)
	if msg.Type != TypeComplete {
		t.Fatalf("expected complete after malformed frame, got %#v", msg)
	}
}

func TestClientSendMarshalsAction(t *testing.T) {
	conn := newFakeConn()
	client := newTestClient(conn)
	defer client.Close()

	if err := client.Send(context.Background(), ActionSectionDone); err != nil {
		t.Fatalf("send: %v", err)
	}

	var action Action
	if err := json.Unmarshal(conn.lastWrite(t), &action); err != nil {
		t.Fatalf("decode written frame: %v", err)
	}
	if action.Action != ActionSectionDone {
		t.Fatalf("expected %q, got %q", ActionSectionDone, action.Action)
	}
}

func TestClientSendBeforeConnect(t *testing.T) {
	client := NewClient("ws://test.invalid/ws", logging.NewNop())

	if err := client.Send(context.Background(), ActionPlay); err == nil {
		t.Fatal("expected error when sending before connect")
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	conn := newFakeConn()
	client := newTestClient(conn)

	if err := client.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}

	// The read loop ends and closes the message channel.
	select {
	case _, ok := <-client.Messages():
		if ok {
			t.Fatal("expected message channel to drain and close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message channel close")
	}
}

func TestClientSurfacesReadErrors(t *testing.T) {
	conn := newFakeConn()
	client := newTestClient(conn)

	close(conn.frames)

	select {
	case err := <-client.Errors():
		if !errors.Is(err, io.EOF) {
			t.Fatalf("expected wrapped EOF, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for read error")
	}
}
