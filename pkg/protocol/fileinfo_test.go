package protocol

import (
	"errors"
	"testing"
)

func TestParseListing(t *testing.T) {
	tests := []struct {
		name    string
		results []string
		want    []FileInfo
	}{
		{
			name:    "empty",
			results: []string{},
			want:    []FileInfo{},
		},
		{
			name:    "single_dir",
			results: []string{"0", "roms"},
			want:    []FileInfo{{Type: TypeDir, Name: "roms"}},
		},
		{
			name:    "single_file",
			results: []string{"1", "game.sfc"},
			want:    []FileInfo{{Type: TypeFile, Name: "game.sfc"}},
		},
		{
			name:    "mixed_preserves_order",
			results: []string{"0", ".", "0", "..", "1", "menu.bin", "2", "save.srm"},
			want: []FileInfo{
				{Type: TypeDir, Name: "."},
				{Type: TypeDir, Name: ".."},
				{Type: TypeFile, Name: "menu.bin"},
				{Type: TypeFile, Name: "save.srm"},
			},
		},
		{
			name:    "non_zero_marker_is_file",
			results: []string{"99", "odd-marker"},
			want:    []FileInfo{{Type: TypeFile, Name: "odd-marker"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseListing(tc.results)
			if err != nil {
				t.Fatalf("ParseListing() error = %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("ParseListing() returned %d entries, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestParseListingOddLength(t *testing.T) {
	_, err := ParseListing([]string{"0", "roms", "1"})
	if !errors.Is(err, ErrOddListing) {
		t.Errorf("ParseListing(odd) error = %v, want ErrOddListing", err)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty", path: "", want: ""},
		{name: "root_slash", path: "/", want: ""},
		{name: "no_trailing", path: "/roms", want: "/roms"},
		{name: "one_trailing", path: "/roms/", want: "/roms"},
		{name: "many_trailing", path: "/roms///", want: "/roms"},
		{name: "interior_kept", path: "/roms/fe", want: "/roms/fe"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePath(tc.path)
			if got != tc.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.path, got, tc.want)
			}
			if again := NormalizePath(got); again != got {
				t.Errorf("NormalizePath not idempotent: %q -> %q", got, again)
			}
		})
	}
}
