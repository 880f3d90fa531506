package protocol

import (
	"errors"
	"fmt"
)

// Opcode identifies the operation a control request performs.
// The set is closed: the device rejects anything outside it, so decoding
// validates against the table below rather than passing strings through.
type Opcode uint8

const (
	OpAttach     Opcode = iota // Bind the session to one device
	OpDeviceList               // Enumerate attached devices
	OpGetAddress               // Read raw device memory
	OpInfo                     // Query device/firmware info
	OpList                     // List a directory on the device
	OpPutFile                  // Upload a file to the device
	OpRemove                   // Delete a file on the device
)

// opcodeNames maps opcodes to their exact wire identifiers.
var opcodeNames = [...]string{
	OpAttach:     "Attach",
	OpDeviceList: "DeviceList",
	OpGetAddress: "GetAddress",
	OpInfo:       "Info",
	OpList:       "List",
	OpPutFile:    "PutFile",
	OpRemove:     "Remove",
}

// ErrUnknownOpcode is returned when decoding an identifier outside the opcode set.
var ErrUnknownOpcode = errors.New("protocol: unknown opcode")

// String returns the wire identifier of the opcode.
func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "Unknown"
}

// MarshalJSON encodes the opcode as its wire identifier.
func (op Opcode) MarshalJSON() ([]byte, error) {
	if int(op) >= len(opcodeNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, op)
	}
	return []byte(`"` + opcodeNames[op] + `"`), nil
}

// UnmarshalJSON decodes a wire identifier, rejecting anything outside the set.
func (op *Opcode) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrUnknownOpcode, data)
	}
	name := string(data[1 : len(data)-1])
	for i, n := range opcodeNames {
		if n == name {
			*op = Opcode(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
}

// Reply describes what a request elicits from the device. Not every opcode
// yields a Results frame; this is a protocol property, captured statically
// here so callers never special-case individual operations.
type Reply uint8

const (
	ReplyNone   Reply = iota // Fire-and-forget, nothing comes back
	ReplyText                // One Results text frame
	ReplyBinary              // A run of binary frames, length set by the request
)

// replyTable records the reply expectation for every opcode.
var replyTable = [...]Reply{
	OpAttach:     ReplyNone,
	OpDeviceList: ReplyText,
	OpGetAddress: ReplyBinary,
	OpInfo:       ReplyText,
	OpList:       ReplyText,
	OpPutFile:    ReplyNone,
	OpRemove:     ReplyNone,
}

// Reply returns the reply expectation for the opcode.
func (op Opcode) Reply() Reply {
	if int(op) < len(replyTable) {
		return replyTable[op]
	}
	return ReplyNone
}

// Space names the addressable resource domain an opcode targets.
// The protocol currently defines a single space.
type Space uint8

const (
	// SpaceSNES addresses the device's memory and filesystem namespace.
	SpaceSNES Space = iota
)

// ErrUnknownSpace is returned when decoding an identifier outside the space set.
var ErrUnknownSpace = errors.New("protocol: unknown space")

// String returns the wire identifier of the space.
func (s Space) String() string {
	if s == SpaceSNES {
		return "SNES"
	}
	return "Unknown"
}

// MarshalJSON encodes the space as its wire identifier.
func (s Space) MarshalJSON() ([]byte, error) {
	if s != SpaceSNES {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSpace, s)
	}
	return []byte(`"SNES"`), nil
}

// UnmarshalJSON decodes a wire identifier, rejecting anything outside the set.
func (s *Space) UnmarshalJSON(data []byte) error {
	if string(data) != `"SNES"` {
		return fmt.Errorf("%w: %s", ErrUnknownSpace, data)
	}
	*s = SpaceSNES
	return nil
}
