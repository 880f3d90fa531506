// Package protocol defines the USB2SNES wire protocol types and codec.
//
// The protocol multiplexes two channels over one ordered WebSocket stream:
//
//   - a control channel of JSON text frames (Request out, Results back)
//   - a raw binary data channel whose meaning is set entirely by the
//     preceding control request (upload chunks or downloaded memory)
//
// Binary frames carry no header or type tag of their own, and responses
// carry no correlation ID: frames pair with requests purely by arrival
// order. The protocol is therefore strictly half-duplex at the application
// level: a second request must never be sent while a reply is outstanding.
//
// # Control frame format
//
// One JSON object per text frame, field order fixed:
//
//	{"Opcode":"List","Space":"SNES","Operands":["/roms"]}
//
// Flags and Operands are omitted when unset. Responses are always
// {"Results":[...]}. Numeric operands (addresses, lengths) are uppercase
// hex strings with no 0x prefix and no padding.
package protocol
