package tracker

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"
)

// MemoryReader is the slice of the session the tracker depends on.
type MemoryReader interface {
	ReadMemory(ctx context.Context, addr, length uint32) ([]byte, error)
}

// Memory layout of the Free Enterprise tracking block.
const (
	// flagsLenAddr holds the seed flag string length, u32 little-endian.
	flagsLenAddr = 0x1FF000

	// flagsDataAddr holds the seed flag string bytes.
	flagsDataAddr = 0x1FF004

	// keyItemTableAddr holds one u16 little-endian location code per key item.
	keyItemTableAddr = 0xE07080

	// maxFlagsLen caps the flag string read; anything larger means the
	// tracking block is absent or garbage.
	maxFlagsLen = 4096
)

// KeyItem is one of the Free Enterprise key items, in table order.
type KeyItem uint8

const (
	Package KeyItem = iota
	SandRuby
	LegendSword
	BaronKey
	TwinHarp
	EarthCrystal
	MagmaKey
	TowerKey
	Hook
	LucaKey
	DarknessCrystal
	RatTail
	Adamant
	Pan
	Spoon
	PinkTail
	Crystal

	numKeyItems = int(Crystal) + 1
)

var keyItemNames = [...]string{
	Package:         "Package",
	SandRuby:        "SandRuby",
	LegendSword:     "LegendSword",
	BaronKey:        "BaronKey",
	TwinHarp:        "TwinHarp",
	EarthCrystal:    "EarthCrystal",
	MagmaKey:        "MagmaKey",
	TowerKey:        "TowerKey",
	Hook:            "Hook",
	LucaKey:         "LucaKey",
	DarknessCrystal: "DarknessCrystal",
	RatTail:         "RatTail",
	Adamant:         "Adamant",
	Pan:             "Pan",
	Spoon:           "Spoon",
	PinkTail:        "PinkTail",
	Crystal:         "Crystal",
}

// String returns the key item name.
func (k KeyItem) String() string {
	if int(k) < len(keyItemNames) {
		return keyItemNames[k]
	}
	return fmt.Sprintf("KeyItem(%d)", uint8(k))
}

// locationNames maps the location codes the randomizer writes into the
// tracking block. The range is sparse; 0x5b and 0x5c are unassigned.
var locationNames = map[uint16]string{
	0x20: "StartingItem",
	0x21: "Antlion",
	0x22: "DefendingFabul",
	0x23: "MtOrdeals",
	0x24: "BaronInn",
	0x25: "BaronCastle",
	0x26: "EdwardInToroia",
	0x27: "CaveMagnes",
	0x28: "TowerOfZot",
	0x29: "LowerBabIlBoss",
	0x2a: "SuperCannon",
	0x2b: "Luca",
	0x2c: "SealedCave",
	0x2d: "FeymarchChest",
	0x2e: "RatTail",
	0x2f: "YangsWife",
	0x30: "YangsWifePan",
	0x31: "FeymarchQueen",
	0x32: "FeymarchKing",
	0x33: "Odin",
	0x34: "Sylphs",
	0x35: "CaveBahamut",
	0x36: "PaleDim",
	0x37: "Wyvern",
	0x38: "Plague",
	0x39: "DLunar1",
	0x3a: "DLunar2",
	0x3b: "Ogopogo",
	0x3c: "TowerOfZotTrappedChest",
	0x3d: "EblanTrappedChest1",
	0x3e: "EblanTrappedChest2",
	0x3f: "EblanTrappedChest3",
	0x40: "LowerBabIlTrappedChest1",
	0x41: "LowerBabIlTrappedChest2",
	0x42: "LowerBabIlTrappedChest3",
	0x43: "LowerBabIlTrappedChest4",
	0x44: "CaveEblanTrappedChest",
	0x45: "UpperBabIlTrappedChest",
	0x46: "CaveOfSummonsTrappedChest",
	0x47: "SylphCaveTrappedChest1",
	0x48: "SylphCaveTrappedChest2",
	0x49: "SylphCaveTrappedChest3",
	0x4a: "SylphCaveTrappedChest4",
	0x4b: "SylphCaveTrappedChest5",
	0x4c: "SylphCaveTrappedChest6",
	0x4d: "SylphCaveTrappedChest7",
	0x4e: "GiantOfBabIlTrappedChest",
	0x4f: "LunarPathTrappedChest",
	0x50: "LunarCoreTrappedChest1",
	0x51: "LunarCoreTrappedChest2",
	0x52: "LunarCoreTrappedChest3",
	0x53: "LunarCoreTrappedChest4",
	0x54: "LunarCoreTrappedChest5",
	0x55: "LunarCoreTrappedChest6",
	0x56: "LunarCoreTrappedChest7",
	0x57: "LunarCoreTrappedChest8",
	0x58: "LunarCoreTrappedChest9",
	0x59: "RydiasMom",
	0x5a: "FallenGolbez",
	0x5d: "ObjectiveCompletion",
}

// LocationName returns the name for a location code, or "" when the code
// is outside the table (item not yet located).
func LocationName(code uint16) string {
	return locationNames[code]
}

// ItemState is the tracked placement of one key item.
type ItemState struct {
	Item     string `json:"item"`
	Code     uint16 `json:"code"`
	Location string `json:"location,omitempty"`
}

// Snapshot is one read of the whole tracking block.
type Snapshot struct {
	Items   []ItemState `json:"items"`
	TakenAt time.Time   `json:"taken_at"`
}

// TakeSnapshot reads the key item table in one memory request and decodes
// each u16 little-endian location code.
func TakeSnapshot(ctx context.Context, r MemoryReader) (*Snapshot, error) {
	buf, err := r.ReadMemory(ctx, keyItemTableAddr, uint32(2*numKeyItems))
	if err != nil {
		return nil, fmt.Errorf("tracker: read key item table: %w", err)
	}

	snap := &Snapshot{
		Items:   make([]ItemState, 0, numKeyItems),
		TakenAt: time.Now(),
	}
	for i := 0; i < numKeyItems; i++ {
		code := binary.LittleEndian.Uint16(buf[2*i:])
		snap.Items = append(snap.Items, ItemState{
			Item:     KeyItem(i).String(),
			Code:     code,
			Location: LocationName(code),
		})
	}
	return snap, nil
}

// ReadFlags reads the seed flag string: a u32 little-endian length followed
// by that many bytes of UTF-8.
func ReadFlags(ctx context.Context, r MemoryReader) (string, error) {
	lenBuf, err := r.ReadMemory(ctx, flagsLenAddr, 4)
	if err != nil {
		return "", fmt.Errorf("tracker: read flags length: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf)
	if n == 0 {
		return "", nil
	}
	if n > maxFlagsLen {
		return "", fmt.Errorf("tracker: implausible flags length %d", n)
	}

	data, err := r.ReadMemory(ctx, flagsDataAddr, n)
	if err != nil {
		return "", fmt.Errorf("tracker: read flags: %w", err)
	}
	return string(data), nil
}
