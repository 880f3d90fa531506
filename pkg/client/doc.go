// Package client implements a USB2SNES session over a WebSocket transport.
//
// A Session is created with Dial, optionally attached to a device, and then
// drives the device through blocking request/response round-trips:
//
//	s, err := client.Dial(ctx, "ws://localhost:8080")
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	devices, err := s.DeviceList(ctx)
//	if err != nil {
//		return err
//	}
//	if err := s.Attach(ctx, devices[0]); err != nil {
//		return err
//	}
//	data, err := s.ReadMemory(ctx, 0xF50000, 0x100)
//
// The wire protocol is strictly half-duplex: responses correlate with
// requests by arrival order only, so a session must never have two
// operations in flight. Sessions share no global state; each owns its
// transport and attachment flag exclusively.
package client
