package client

import (
	"errors"
	"fmt"
)

// Kind classifies a client error.
type Kind uint8

const (
	// KindTransport covers underlying connect/send/receive/close failures.
	// Never retried by the client; retry policy belongs to the caller.
	KindTransport Kind = iota

	// KindEncoding covers request serialization failures. These indicate a
	// programming error in request construction and are fatal to the call.
	KindEncoding

	// KindProtocol covers a control channel that produced no decodable
	// response before stream exhaustion, or a download that ended short.
	// The session is left in an undefined state and should be closed.
	KindProtocol

	// KindNotAttached covers operations that require attachment, detected
	// locally before any network I/O. Safe to retry after attaching.
	KindNotAttached
)

// String returns the kind label.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindEncoding:
		return "encoding"
	case KindProtocol:
		return "protocol"
	case KindNotAttached:
		return "not_attached"
	default:
		return "unknown"
	}
}

// Sentinel errors.
var (
	// ErrNotAttached is returned when an operation requiring attachment is
	// invoked before Attach.
	ErrNotAttached = errors.New("client: not attached to device")

	// ErrNoMessage is returned when the stream ends before a decodable
	// Results frame arrives.
	ErrNoMessage = errors.New("client: no message")

	// ErrShortRead is returned when a memory download ends before the
	// requested byte count has accumulated.
	ErrShortRead = errors.New("client: short read")
)

// Error carries the operation attempted, the failure class, and the
// underlying cause, so callers can decide on retry without string matching.
type Error struct {
	Op   string // operation attempted, e.g. "DeviceList" or "dial"
	Kind Kind
	Err  error
}

// Error returns the error message with operation context.
func (e *Error) Error() string {
	return fmt.Sprintf("client: %s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a client error of the given kind.
func IsKind(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

func wrapErr(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}
