package client

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the transport the session runs over: an ordered, reliable,
// message-oriented duplex stream of frames tagged text or binary.
// *websocket.Conn satisfies it directly; tests substitute a scripted fake.
type Conn interface {
	// ReadMessage reads the next frame, returning its type and payload.
	ReadMessage() (messageType int, p []byte, err error)

	// WriteMessage writes one frame of the given type.
	WriteMessage(messageType int, data []byte) error

	// SetReadDeadline bounds the next read.
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline bounds the next write.
	SetWriteDeadline(t time.Time) error

	// Close releases the underlying connection.
	Close() error
}

// dial opens the WebSocket transport for a session.
func dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// streamEnded reports whether a read error means the peer is gone rather
// than a transport fault on our side. An exhausted stream during a control
// round-trip is a protocol error, not a transport one.
func streamEnded(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var ce *websocket.CloseError
	return errors.As(err, &ce)
}
