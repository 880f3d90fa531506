package protocol

import (
	"errors"
	"strings"
)

// FileType distinguishes directory entries in a listing.
type FileType uint8

const (
	TypeFile FileType = iota
	TypeDir
)

// String returns a short human-readable label.
func (t FileType) String() string {
	if t == TypeDir {
		return "Dir"
	}
	return "File"
}

// FileInfo is one entry of a device directory listing.
type FileInfo struct {
	Type FileType
	Name string
}

// dirMarker is the type marker the device uses for directories; any other
// marker value denotes a regular file.
const dirMarker = "0"

// ErrOddListing is returned when a List reply has an odd number of strings.
// The device reports entries as (marker, name) pairs; an odd count means the
// reply is truncated or corrupt and cannot be paired up.
var ErrOddListing = errors.New("protocol: listing results not in pairs")

// ParseListing decodes a flat List reply into entries, preserving the
// device-reported order. Entries arrive as consecutive (marker, name) pairs.
func ParseListing(results []string) ([]FileInfo, error) {
	if len(results)%2 != 0 {
		return nil, ErrOddListing
	}
	files := make([]FileInfo, 0, len(results)/2)
	for i := 0; i < len(results); i += 2 {
		ty := TypeFile
		if results[i] == dirMarker {
			ty = TypeDir
		}
		files = append(files, FileInfo{Type: ty, Name: results[i+1]})
	}
	return files, nil
}

// NormalizePath strips trailing separators from a device path. Listing a
// path that ends in a separator stalls the device-side listener, so the
// client refuses to put one on the wire. Idempotent.
func NormalizePath(path string) string {
	return strings.TrimRight(path, "/")
}
