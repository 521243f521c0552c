package typoutil

import (
	"reflect"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		max  int
		want int
	}{
		{"both empty", "", "", 3, 0},
		{"a empty", "", "ninja", 5, 5},
		{"identical", "cmake", "cmake", 2, 0},
		{"substitution", "kitten", "sitten", 2, 1},
		{"insertion", "ninja", "ninjas", 2, 1},
		{"deletion", "arm-gcc", "arm-cc", 2, 1},
		{"transposition", "cmake", "cmkae", 2, 1},
		{"multiple edits", "saturday", "sunday", 3, 3},
		{"unicode", "résumé", "resume", 2, 2},
		{"over the limit by length", "a", "abcdef", 2, 3},
		{"over the limit by edits", "abcdef", "uvwxyz", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b, tt.max)
			if got != tt.want {
				t.Errorf("Distance(%q, %q, %d) = %d, want %d", tt.a, tt.b, tt.max, got, tt.want)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"arm-gcc", "cmake", "kitware/cmake", "ninja", "tools/cmake", "tools/ninja"}

	tests := []struct {
		name        string
		term        string
		maxDistance int
		maxResults  int
		want        []string
	}{
		{"single typo", "cmkae", 1, 5, []string{"cmake"}},
		{"longer names", "tools/cmak", 2, 5, []string{"tools/cmake"}},
		{"case insensitive", "NINJA", 1, 5, []string{"ninja"}},
		{"exact term excluded", "ninja", 1, 5, nil},
		{"limited", "tools/ninj", 2, 1, []string{"tools/ninja"}},
		{"nothing close", "boost", 1, 5, nil},
		{"no tolerance", "cmkae", 0, 5, nil},
		{"empty term", "", 2, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.term, names, tt.maxDistance, tt.maxResults)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q, ..., %d, %d) = %v, want %v", tt.term, tt.maxDistance, tt.maxResults, got, tt.want)
			}
		})
	}
}

func TestSuggest_ClosestFirst(t *testing.T) {
	got := Suggest("gbc", []string{"gdb", "g++", "gcc", "clang"}, 2, 5)
	want := []string{"gcc", "g++", "gdb"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(%q) = %v, want %v", "gbc", got, want)
	}
}

func TestMaxDistanceFor(t *testing.T) {
	tests := map[string]int{
		"gcc":         0,
		"cmake":       1,
		"arm-gcc":     1,
		"tools/ninja": 2,
		"résumé":      1,
	}
	for term, want := range tests {
		if got := MaxDistanceFor(term); got != want {
			t.Errorf("MaxDistanceFor(%q) = %d, want %d", term, got, want)
		}
	}
}
