package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	"github.com/snesctl/snesctl/pkg/protocol"
)

// PutFile uploads data to remotePath on the device.
//
// The control request carries the destination and the payload length as an
// uppercase hex operand, then the payload streams as binary frames of at
// most protocol.PutChunkSize bytes, in order, one write per frame. The
// device consumes frames eagerly and sends no flow-control signal back, so
// each frame must reach the transport before the next is queued.
//
// No completion acknowledgment exists for this opcode. Callers that need
// confirmation should follow up with AwaitCompletion.
func (s *Session) PutFile(ctx context.Context, remotePath string, data []byte) error {
	ctx, span := s.startSpan(ctx, protocol.OpPutFile)
	defer span.End()
	span.SetAttributes(attribute.Int("snes.bytes", len(data)))

	req := protocol.NewRequest(protocol.OpPutFile,
		remotePath, protocol.HexUint(uint64(len(data))))
	if err := s.send(ctx, req); err != nil {
		return s.fail(span, protocol.OpPutFile, err)
	}

	start := time.Now()
	for off := 0; off < len(data); off += protocol.PutChunkSize {
		if err := ctx.Err(); err != nil {
			return s.fail(span, protocol.OpPutFile,
				wrapErr(protocol.OpPutFile.String(), KindTransport, err))
		}

		end := off + protocol.PutChunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		if s.bucket != nil {
			s.bucket.Wait(int64(len(chunk)))
		}

		s.conn.SetWriteDeadline(s.stepDeadline(ctx, s.writeTimeout))
		if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			return s.fail(span, protocol.OpPutFile,
				wrapErr(protocol.OpPutFile.String(), KindTransport, err))
		}
	}

	s.metrics.observeUpload(len(data), time.Since(start))
	s.logger.Debug("file uploaded", "path", remotePath, "bytes", len(data))
	return nil
}

// ReadMemory reads length bytes of device memory starting at addr.
//
// The reply arrives as binary frames with no framing of their own; the
// device may split the payload across any number of frames of any size.
// Frames accumulate into the result buffer until exactly length bytes have
// been written. Text frames arriving during accumulation are ignored.
func (s *Session) ReadMemory(ctx context.Context, addr, length uint32) ([]byte, error) {
	ctx, span := s.startSpan(ctx, protocol.OpGetAddress)
	defer span.End()
	span.SetAttributes(
		attribute.String("snes.addr", protocol.HexUint(uint64(addr))),
		attribute.Int("snes.bytes", int(length)),
	)

	req := protocol.NewRequest(protocol.OpGetAddress,
		protocol.HexUint(uint64(addr)), protocol.HexUint(uint64(length)))
	if err := s.send(ctx, req); err != nil {
		return nil, s.fail(span, protocol.OpGetAddress, err)
	}

	start := time.Now()
	buf := make([]byte, length)
	got := 0
	for got < int(length) {
		if err := ctx.Err(); err != nil {
			return nil, s.fail(span, protocol.OpGetAddress,
				wrapErr(protocol.OpGetAddress.String(), KindTransport, err))
		}

		s.conn.SetReadDeadline(s.stepDeadline(ctx, s.readTimeout))
		mt, payload, err := s.conn.ReadMessage()
		if err != nil {
			if streamEnded(err) {
				return nil, s.fail(span, protocol.OpGetAddress,
					wrapErr(protocol.OpGetAddress.String(), KindProtocol,
						fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, got, length)))
			}
			return nil, s.fail(span, protocol.OpGetAddress,
				wrapErr(protocol.OpGetAddress.String(), KindTransport, err))
		}

		if mt != websocket.BinaryMessage {
			continue
		}

		got += copy(buf[got:], payload)
	}

	s.metrics.observeDownload(got, time.Since(start))
	return buf, nil
}

// AwaitCompletion blocks until the device has drained outstanding work by
// issuing a harmless root listing and discarding the result. PutFile has no
// completion acknowledgment, so a subsequent idempotent query is the only
// synchronization point the protocol offers. Best effort: nothing in the
// protocol guarantees the listing is serviced after the upload finishes
// device-side, it merely orders the requests on the wire.
func (s *Session) AwaitCompletion(ctx context.Context) error {
	_, err := s.ListFiles(ctx, "")
	return err
}
