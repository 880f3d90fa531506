package protocol

import (
	"encoding/json"
	"testing"
)

func TestRequestEncode(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want string
	}{
		{
			name: "no_flags_no_operands",
			req:  NewRequest(OpDeviceList),
			want: `{"Opcode":"DeviceList","Space":"SNES"}`,
		},
		{
			name: "attach_with_operand",
			req:  NewRequest(OpAttach, "SD2SNES COM3"),
			want: `{"Opcode":"Attach","Space":"SNES","Operands":["SD2SNES COM3"]}`,
		},
		{
			name: "list_with_path",
			req:  NewRequest(OpList, "/roms"),
			want: `{"Opcode":"List","Space":"SNES","Operands":["/roms"]}`,
		},
		{
			name: "put_file_with_length",
			req:  NewRequest(OpPutFile, "game.sfc", HexUint(4096)),
			want: `{"Opcode":"PutFile","Space":"SNES","Operands":["game.sfc","1000"]}`,
		},
		{
			name: "get_address",
			req:  NewRequest(OpGetAddress, HexUint(0x1FF000), HexUint(4)),
			want: `{"Opcode":"GetAddress","Space":"SNES","Operands":["1FF000","4"]}`,
		},
		{
			name: "flags_before_operands",
			req: &Request{
				Opcode:   OpPutFile,
				Space:    SpaceSNES,
				Flags:    []string{"NORESP"},
				Operands: []string{"a"},
			},
			want: `{"Opcode":"PutFile","Space":"SNES","Flags":["NORESP"],"Operands":["a"]}`,
		},
		{
			name: "empty_operand_slice_omitted",
			req: &Request{
				Opcode:   OpInfo,
				Space:    SpaceSNES,
				Operands: []string{},
			},
			want: `{"Opcode":"Info","Space":"SNES"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.req.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("Encode() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestOpcodeRoundTrip(t *testing.T) {
	ops := []Opcode{OpAttach, OpDeviceList, OpGetAddress, OpInfo, OpList, OpPutFile, OpRemove}
	for _, op := range ops {
		t.Run(op.String(), func(t *testing.T) {
			data, err := json.Marshal(op)
			if err != nil {
				t.Fatalf("Marshal(%v) error = %v", op, err)
			}
			var back Opcode
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", data, err)
			}
			if back != op {
				t.Errorf("round trip = %v, want %v", back, op)
			}
		})
	}
}

func TestOpcodeUnmarshalRejectsUnknown(t *testing.T) {
	var op Opcode
	if err := json.Unmarshal([]byte(`"Boot"`), &op); err == nil {
		t.Error("Unmarshal(\"Boot\") error = nil, want unknown opcode error")
	}
	if err := json.Unmarshal([]byte(`7`), &op); err == nil {
		t.Error("Unmarshal(7) error = nil, want unknown opcode error")
	}
}

func TestSpaceUnmarshalRejectsUnknown(t *testing.T) {
	var s Space
	if err := json.Unmarshal([]byte(`"CMD"`), &s); err == nil {
		t.Error("Unmarshal(\"CMD\") error = nil, want unknown space error")
	}
}

func TestDecodeResults(t *testing.T) {
	res, err := DecodeResults([]byte(`{"Results":["SD2SNES COM3","Lua"]}`))
	if err != nil {
		t.Fatalf("DecodeResults() error = %v", err)
	}
	if len(res.Results) != 2 || res.Results[0] != "SD2SNES COM3" || res.Results[1] != "Lua" {
		t.Errorf("Results = %v, want [SD2SNES COM3 Lua]", res.Results)
	}

	if _, err := DecodeResults([]byte(`not json`)); err == nil {
		t.Error("DecodeResults(garbage) error = nil, want parse error")
	}
}

func TestHexUint(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want string
	}{
		{name: "zero", n: 0, want: "0"},
		{name: "small", n: 4, want: "4"},
		{name: "no_padding", n: 4096, want: "1000"},
		{name: "uppercase", n: 0xe07080, want: "E07080"},
		{name: "max_u32", n: 0xFFFFFFFF, want: "FFFFFFFF"},
		{name: "past_u32", n: 1 << 32, want: "100000000"},
		{name: "five_gib", n: 5 << 30, want: "140000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HexUint(tc.n); got != tc.want {
				t.Errorf("HexUint(%#x) = %q, want %q", tc.n, got, tc.want)
			}
		})
	}
}

func TestReplyTable(t *testing.T) {
	tests := []struct {
		op   Opcode
		want Reply
	}{
		{OpAttach, ReplyNone},
		{OpDeviceList, ReplyText},
		{OpGetAddress, ReplyBinary},
		{OpInfo, ReplyText},
		{OpList, ReplyText},
		{OpPutFile, ReplyNone},
		{OpRemove, ReplyNone},
	}

	for _, tc := range tests {
		t.Run(tc.op.String(), func(t *testing.T) {
			if got := tc.op.Reply(); got != tc.want {
				t.Errorf("%v.Reply() = %v, want %v", tc.op, got, tc.want)
			}
		})
	}
}
