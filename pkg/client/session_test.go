package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/snesctl/snesctl/pkg/protocol"
)

// frame is one scripted or captured transport frame.
type frame struct {
	mt   int
	data []byte
}

// fakeConn is a scripted transport: reads serve the incoming queue in
// order, writes are captured. Once the queue drains, reads fail with a
// normal close, like a peer that went away.
type fakeConn struct {
	incoming []frame
	sent     []frame
	readErr  error
	writeErr error
	closed   bool
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	if len(c.incoming) == 0 {
		if c.readErr != nil {
			return 0, nil, c.readErr
		}
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	f := c.incoming[0]
	c.incoming = c.incoming[1:]
	return f.mt, f.data, nil
}

func (c *fakeConn) WriteMessage(mt int, data []byte) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.sent = append(c.sent, frame{mt: mt, data: buf})
	return nil
}

func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func resultsFrame(t *testing.T, results ...string) frame {
	t.Helper()
	data, err := json.Marshal(map[string][]string{"Results": results})
	if err != nil {
		t.Fatalf("marshal results: %v", err)
	}
	return frame{mt: websocket.TextMessage, data: data}
}

func binFrame(data []byte) frame {
	return frame{mt: websocket.BinaryMessage, data: data}
}

// textSent returns the captured text frames as strings.
func textSent(c *fakeConn) []string {
	var out []string
	for _, f := range c.sent {
		if f.mt == websocket.TextMessage {
			out = append(out, string(f.data))
		}
	}
	return out
}

// binSent returns the captured binary frames.
func binSent(c *fakeConn) [][]byte {
	var out [][]byte
	for _, f := range c.sent {
		if f.mt == websocket.BinaryMessage {
			out = append(out, f.data)
		}
	}
	return out
}

func TestDeviceList(t *testing.T) {
	conn := &fakeConn{incoming: []frame{resultsFrame(t, "SD2SNES COM3", "Lua")}}
	s := newSession(conn)

	devices, err := s.DeviceList(context.Background())
	if err != nil {
		t.Fatalf("DeviceList() error = %v", err)
	}
	if len(devices) != 2 || devices[0] != "SD2SNES COM3" || devices[1] != "Lua" {
		t.Errorf("DeviceList() = %v, want [SD2SNES COM3 Lua]", devices)
	}

	sent := textSent(conn)
	if len(sent) != 1 || sent[0] != `{"Opcode":"DeviceList","Space":"SNES"}` {
		t.Errorf("sent = %v, want single DeviceList request", sent)
	}
}

func TestAttachFireAndForget(t *testing.T) {
	conn := &fakeConn{}
	s := newSession(conn)

	if s.State() != StateConnected {
		t.Fatalf("initial state = %v, want Connected", s.State())
	}

	if err := s.Attach(context.Background(), "SD2SNES COM3"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if s.State() != StateAttached {
		t.Errorf("state after Attach = %v, want Attached", s.State())
	}
	if s.Device() != "SD2SNES COM3" {
		t.Errorf("Device() = %q, want %q", s.Device(), "SD2SNES COM3")
	}

	sent := textSent(conn)
	want := `{"Opcode":"Attach","Space":"SNES","Operands":["SD2SNES COM3"]}`
	if len(sent) != 1 || sent[0] != want {
		t.Errorf("sent = %v, want [%s]", sent, want)
	}
}

func TestInfoRequiresAttachment(t *testing.T) {
	conn := &fakeConn{incoming: []frame{resultsFrame(t, "ROM: FF4")}}
	s := newSession(conn)

	_, err := s.Info(context.Background())
	if !errors.Is(err, ErrNotAttached) {
		t.Fatalf("Info() before attach error = %v, want ErrNotAttached", err)
	}
	if !IsKind(err, KindNotAttached) {
		t.Errorf("Info() error kind = %v, want KindNotAttached", err)
	}
	if len(conn.sent) != 0 {
		t.Errorf("Info() before attach wrote %d frames, want 0", len(conn.sent))
	}

	if err := s.Attach(context.Background(), "deviceA"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	info, err := s.Info(context.Background())
	if err != nil {
		t.Fatalf("Info() after attach error = %v", err)
	}
	if len(info) != 1 || info[0] != "ROM: FF4" {
		t.Errorf("Info() = %v, want [ROM: FF4]", info)
	}
}

func TestListFiles(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantPath string
	}{
		{name: "plain", path: "/roms", wantPath: "/roms"},
		{name: "trailing_separator_stripped", path: "/roms/", wantPath: "/roms"},
		{name: "many_separators_stripped", path: "/roms///", wantPath: "/roms"},
		{name: "root", path: "", wantPath: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := &fakeConn{incoming: []frame{resultsFrame(t, "0", "roms", "1", "game.sfc")}}
			s := newSession(conn)

			files, err := s.ListFiles(context.Background(), tc.path)
			if err != nil {
				t.Fatalf("ListFiles() error = %v", err)
			}
			if len(files) != 2 {
				t.Fatalf("ListFiles() returned %d entries, want 2", len(files))
			}
			if files[0].Type != protocol.TypeDir || files[0].Name != "roms" {
				t.Errorf("entry 0 = %+v, want Dir roms", files[0])
			}
			if files[1].Type != protocol.TypeFile || files[1].Name != "game.sfc" {
				t.Errorf("entry 1 = %+v, want File game.sfc", files[1])
			}

			want := fmt.Sprintf(`{"Opcode":"List","Space":"SNES","Operands":[%q]}`, tc.wantPath)
			sent := textSent(conn)
			if len(sent) != 1 || sent[0] != want {
				t.Errorf("sent = %v, want [%s]", sent, want)
			}
		})
	}
}

func TestListFilesOddReply(t *testing.T) {
	conn := &fakeConn{incoming: []frame{resultsFrame(t, "0", "roms", "1")}}
	s := newSession(conn)

	_, err := s.ListFiles(context.Background(), "")
	if !errors.Is(err, protocol.ErrOddListing) {
		t.Fatalf("ListFiles(odd reply) error = %v, want ErrOddListing", err)
	}
	if !IsKind(err, KindProtocol) {
		t.Errorf("error kind = %v, want KindProtocol", err)
	}
}

func TestRemoveNoResponse(t *testing.T) {
	conn := &fakeConn{}
	s := newSession(conn)

	if err := s.Remove(context.Background(), "old.sfc"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	sent := textSent(conn)
	want := `{"Opcode":"Remove","Space":"SNES","Operands":["old.sfc"]}`
	if len(sent) != 1 || sent[0] != want {
		t.Errorf("sent = %v, want [%s]", sent, want)
	}
}

func TestRecvSkipsNonDataFrames(t *testing.T) {
	conn := &fakeConn{incoming: []frame{
		{mt: websocket.PongMessage, data: nil},
		resultsFrame(t, "deviceA"),
	}}
	s := newSession(conn)

	devices, err := s.DeviceList(context.Background())
	if err != nil {
		t.Fatalf("DeviceList() error = %v", err)
	}
	if len(devices) != 1 || devices[0] != "deviceA" {
		t.Errorf("DeviceList() = %v, want [deviceA]", devices)
	}
}

func TestRecvStreamExhausted(t *testing.T) {
	conn := &fakeConn{}
	s := newSession(conn)

	_, err := s.DeviceList(context.Background())
	if !errors.Is(err, ErrNoMessage) {
		t.Fatalf("DeviceList() on dead stream error = %v, want ErrNoMessage", err)
	}
	if !IsKind(err, KindProtocol) {
		t.Errorf("error kind = %v, want KindProtocol", err)
	}
}

func TestRecvUndecodableFrame(t *testing.T) {
	conn := &fakeConn{incoming: []frame{{mt: websocket.TextMessage, data: []byte("not json")}}}
	s := newSession(conn)

	_, err := s.DeviceList(context.Background())
	if !IsKind(err, KindProtocol) {
		t.Fatalf("DeviceList() on garbage frame error = %v, want protocol kind", err)
	}
}

func TestSendTransportError(t *testing.T) {
	conn := &fakeConn{writeErr: errors.New("broken pipe")}
	s := newSession(conn)

	_, err := s.DeviceList(context.Background())
	if !IsKind(err, KindTransport) {
		t.Fatalf("DeviceList() on broken conn error = %v, want transport kind", err)
	}
}

func TestClose(t *testing.T) {
	conn := &fakeConn{}
	s := newSession(conn)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !conn.closed {
		t.Error("Close() did not close the transport")
	}
	if s.State() != StateDisconnected {
		t.Errorf("state after Close = %v, want Disconnected", s.State())
	}
	if len(conn.sent) != 1 || conn.sent[0].mt != websocket.CloseMessage {
		t.Errorf("Close() sent %d frames, want one close frame", len(conn.sent))
	}
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithMetricsRegistry(reg))

	conn := &fakeConn{incoming: []frame{resultsFrame(t, "deviceA")}}
	s := newSession(conn, WithMetrics(m))

	if _, err := s.DeviceList(context.Background()); err != nil {
		t.Fatalf("DeviceList() error = %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "snesctl_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("snesctl_requests_total not registered after request")
	}
}

// Scenario from the protocol walkthrough: connect, enumerate, attach,
// query info, list the root.
func TestSessionScenario(t *testing.T) {
	conn := &fakeConn{incoming: []frame{
		resultsFrame(t, "deviceA"),
		resultsFrame(t, "ROM: FF4"),
		resultsFrame(t, "0", "roms"),
	}}
	s := newSession(conn)
	ctx := context.Background()

	devices, err := s.DeviceList(ctx)
	if err != nil {
		t.Fatalf("DeviceList() error = %v", err)
	}
	if len(devices) != 1 || devices[0] != "deviceA" {
		t.Fatalf("DeviceList() = %v, want [deviceA]", devices)
	}

	if err := s.Attach(ctx, devices[0]); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	info, err := s.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if len(info) != 1 || info[0] != "ROM: FF4" {
		t.Fatalf("Info() = %v, want [ROM: FF4]", info)
	}

	files, err := s.ListFiles(ctx, "")
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 1 || files[0].Type != protocol.TypeDir || files[0].Name != "roms" {
		t.Fatalf("ListFiles() = %+v, want [{Dir roms}]", files)
	}
}
