package protocol

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Limits and constants of the wire protocol.
const (
	// PutChunkSize is the maximum payload of one binary upload frame.
	// The device consumes frames eagerly and offers no flow-control
	// signal back, so chunks are kept small and flushed one at a time.
	PutChunkSize = 1024
)

// Request is one control message, sent as a single JSON text frame.
//
// Field order on the wire is fixed: Opcode, Space, Flags, Operands.
// Flags and Operands are omitted entirely when unset; the wire never
// carries them as null or empty arrays.
type Request struct {
	Opcode   Opcode   `json:"Opcode"`
	Space    Space    `json:"Space"`
	Flags    []string `json:"Flags,omitempty"`
	Operands []string `json:"Operands,omitempty"`
}

// NewRequest builds a request in the SNES space with the given operands.
func NewRequest(op Opcode, operands ...string) *Request {
	return &Request{
		Opcode:   op,
		Space:    SpaceSNES,
		Operands: operands,
	}
}

// Encode serializes the request to single-line JSON.
func (r *Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Results is the sole shape of a control response: an ordered sequence of
// strings under a single capitalized key.
type Results struct {
	Results []string `json:"Results"`
}

// DecodeResults parses a text frame payload as a Results message.
func DecodeResults(data []byte) (*Results, error) {
	var res Results
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// HexUint renders a numeric operand the way the device expects it:
// uppercase hexadecimal, no 0x prefix, no leading-zero padding.
func HexUint(n uint64) string {
	return strings.ToUpper(strconv.FormatUint(n, 16))
}
