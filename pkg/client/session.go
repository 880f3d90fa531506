package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/ratelimit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/snesctl/snesctl/pkg/protocol"
)

// Default tracer name for client spans.
const defaultTracerName = "snesctl"

// Default per-step timeouts. The protocol has no heartbeat or liveness
// signal, so every blocking network step is bounded by a deadline and
// expiry surfaces as a transport error.
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// State is the session lifecycle state.
type State uint8

const (
	StateDisconnected State = iota
	StateConnected
	StateAttached
)

// String returns the state label.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnected:
		return "Connected"
	case StateAttached:
		return "Attached"
	default:
		return "Unknown"
	}
}

// Session is one connection to a USB2SNES bridge. It exclusively owns its
// transport and attachment state for its lifetime.
//
// A session is single-use and strictly half-duplex: every operation is a
// blocking round-trip, and no second request may be issued while a reply
// is outstanding, because frames correlate with requests purely by arrival
// order. Sessions are not safe for concurrent use.
type Session struct {
	conn   Conn
	state  State
	device string

	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
	metrics      *Metrics
	tracer       trace.Tracer
	bucket       *ratelimit.Bucket
}

// Option configures a session.
type Option func(*Session)

// WithLogger sets the session logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics attaches Prometheus metrics to the session.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithReadTimeout bounds each blocking read step.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.readTimeout = d
	}
}

// WithWriteTimeout bounds each blocking write step.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.writeTimeout = d
	}
}

// WithUploadRate throttles upload frames to roughly bytesPerSecond.
// The device consumes frames eagerly with no flow control back to the
// host; a throttle keeps slow bridges from being flooded. Zero disables.
func WithUploadRate(bytesPerSecond int64) Option {
	return func(s *Session) {
		if bytesPerSecond > 0 {
			s.bucket = ratelimit.NewBucketWithRate(float64(bytesPerSecond), bytesPerSecond)
		}
	}
}

// WithTracerName sets the OpenTelemetry tracer name. Default: "snesctl".
func WithTracerName(name string) Option {
	return func(s *Session) {
		s.tracer = otel.Tracer(name)
	}
}

// newSession wires a session around an existing transport.
func newSession(conn Conn, opts ...Option) *Session {
	s := &Session{
		conn:         conn,
		state:        StateConnected,
		readTimeout:  DefaultReadTimeout,
		writeTimeout: DefaultWriteTimeout,
		logger:       slog.Default(),
		tracer:       otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial opens a session to the bridge at url (e.g. "ws://localhost:8080").
// The session starts Connected and unattached.
func Dial(ctx context.Context, url string, opts ...Option) (*Session, error) {
	conn, err := dial(ctx, url)
	if err != nil {
		return nil, wrapErr("dial", KindTransport, err)
	}

	s := newSession(conn, opts...)
	s.metrics.observeConnect()
	s.logger.Debug("connected", "url", url)
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Device returns the identifier passed to Attach, or "" before attachment.
func (s *Session) Device() string {
	return s.device
}

// Close sends the protocol-level close and releases the transport.
// The session is single-use; calling Close twice is undefined.
func (s *Session) Close() error {
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	err := s.conn.Close()
	s.state = StateDisconnected
	s.device = ""
	if err != nil {
		return wrapErr("close", KindTransport, err)
	}
	return nil
}

// DeviceList enumerates attached devices. Identifiers come back in the
// order the bridge's device pool reports them, typically discovery order.
func (s *Session) DeviceList(ctx context.Context) ([]string, error) {
	ctx, span := s.startSpan(ctx, protocol.OpDeviceList)
	defer span.End()

	results, err := s.roundTrip(ctx, protocol.NewRequest(protocol.OpDeviceList))
	if err != nil {
		return nil, s.fail(span, protocol.OpDeviceList, err)
	}
	span.SetAttributes(attribute.Int("snes.devices", len(results)))
	return results, nil
}

// Attach binds the session to one of the devices reported by DeviceList.
// The protocol does not acknowledge attach: this is fire-and-forget, and
// the session transitions to Attached as soon as the send succeeds.
// Attachment is irreversible within a connection.
func (s *Session) Attach(ctx context.Context, device string) error {
	ctx, span := s.startSpan(ctx, protocol.OpAttach)
	defer span.End()

	if _, err := s.roundTrip(ctx, protocol.NewRequest(protocol.OpAttach, device)); err != nil {
		return s.fail(span, protocol.OpAttach, err)
	}
	s.state = StateAttached
	s.device = device
	s.logger.Debug("attached", "device", device)
	return nil
}

// Info queries device and firmware information. Requires attachment.
func (s *Session) Info(ctx context.Context) ([]string, error) {
	ctx, span := s.startSpan(ctx, protocol.OpInfo)
	defer span.End()

	if s.state != StateAttached {
		return nil, s.fail(span, protocol.OpInfo,
			wrapErr(protocol.OpInfo.String(), KindNotAttached, ErrNotAttached))
	}
	results, err := s.roundTrip(ctx, protocol.NewRequest(protocol.OpInfo))
	if err != nil {
		return nil, s.fail(span, protocol.OpInfo, err)
	}
	return results, nil
}

// ListFiles lists a directory on the device filesystem. The path is
// normalized before transmission; a trailing separator on the wire stalls
// the device-side listener, so the client strips it rather than relying
// on callers to know.
func (s *Session) ListFiles(ctx context.Context, path string) ([]protocol.FileInfo, error) {
	ctx, span := s.startSpan(ctx, protocol.OpList)
	defer span.End()

	path = protocol.NormalizePath(path)
	results, err := s.roundTrip(ctx, protocol.NewRequest(protocol.OpList, path))
	if err != nil {
		return nil, s.fail(span, protocol.OpList, err)
	}
	files, err := protocol.ParseListing(results)
	if err != nil {
		return nil, s.fail(span, protocol.OpList,
			wrapErr(protocol.OpList.String(), KindProtocol, err))
	}
	return files, nil
}

// Remove deletes a file on the device. The device emits no response for
// this opcode; only the outbound frame is flushed.
func (s *Session) Remove(ctx context.Context, path string) error {
	ctx, span := s.startSpan(ctx, protocol.OpRemove)
	defer span.End()

	if _, err := s.roundTrip(ctx, protocol.NewRequest(protocol.OpRemove, path)); err != nil {
		return s.fail(span, protocol.OpRemove, err)
	}
	return nil
}

// roundTrip sends one request and, when the opcode's reply expectation
// table says a text reply follows, blocks for it. Fire-and-forget opcodes
// return immediately after the send; binary-reply opcodes have their own
// accumulation loops and never come through here.
func (s *Session) roundTrip(ctx context.Context, req *protocol.Request) ([]string, error) {
	if err := s.send(ctx, req); err != nil {
		return nil, err
	}
	if req.Opcode.Reply() != protocol.ReplyText {
		return nil, nil
	}
	return s.recv(ctx, req.Opcode.String())
}

// send serializes one request and writes it as a single text frame.
func (s *Session) send(ctx context.Context, req *protocol.Request) error {
	op := req.Opcode.String()

	data, err := req.Encode()
	if err != nil {
		return wrapErr(op, KindEncoding, err)
	}

	s.conn.SetWriteDeadline(s.stepDeadline(ctx, s.writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return wrapErr(op, KindTransport, err)
	}

	s.metrics.observeRequest(op)
	s.logger.Debug("request sent", "opcode", op, "bytes", len(data))
	return nil
}

// recv blocks for the next Results text frame, skipping frames that are
// neither text nor binary. Responses carry no correlation ID; whatever
// arrives belongs to the request just sent.
func (s *Session) recv(ctx context.Context, op string) ([]string, error) {
	for {
		s.conn.SetReadDeadline(s.stepDeadline(ctx, s.readTimeout))
		mt, payload, err := s.conn.ReadMessage()
		if err != nil {
			if streamEnded(err) {
				return nil, wrapErr(op, KindProtocol, ErrNoMessage)
			}
			return nil, wrapErr(op, KindTransport, err)
		}

		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		res, err := protocol.DecodeResults(payload)
		if err != nil {
			return nil, wrapErr(op, KindProtocol, err)
		}
		return res.Results, nil
	}
}

// stepDeadline bounds one network step by the configured timeout, or by
// the context deadline when that is sooner.
func (s *Session) stepDeadline(ctx context.Context, d time.Duration) time.Time {
	t := time.Now().Add(d)
	if dl, ok := ctx.Deadline(); ok && dl.Before(t) {
		return dl
	}
	return t
}

func (s *Session) startSpan(ctx context.Context, op protocol.Opcode) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "snes."+op.String(),
		trace.WithAttributes(attribute.String("snes.opcode", op.String())))
}

// fail records the error on the span and metrics, then returns it.
func (s *Session) fail(span trace.Span, op protocol.Opcode, err error) error {
	kind := KindTransport
	var ce *Error
	if errors.As(err, &ce) {
		kind = ce.Kind
	}
	s.metrics.observeError(op.String(), kind)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Debug("operation failed", "opcode", op.String(), "error", err)
	return err
}
