package base62

import (
	"strings"
	"testing"
)

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{9, "9"},
		{10, "A"},
		{35, "Z"},
		{36, "a"},
		{61, "z"},
		{62, "10"},
		{63, "11"},
		{3843, "zz"},
		{3844, "100"},
	}

	for _, tt := range tests {
		if got := Encode(tt.n); got != tt.want {
			t.Errorf("Encode(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestEncodeAlphabetOnly(t *testing.T) {
	for n := uint64(0); n < 5000; n++ {
		code := Encode(n)
		for _, ch := range code {
			if !strings.ContainsRune(Alphabet, ch) {
				t.Fatalf("Encode(%d) = %q contains character outside alphabet", n, code)
			}
		}
	}
}

func TestEncodeInjective(t *testing.T) {
	seen := make(map[string]uint64)
	for n := uint64(0); n < 100000; n++ {
		code := Encode(n)
		if prev, ok := seen[code]; ok {
			t.Fatalf("Encode(%d) and Encode(%d) both produced %q", prev, n, code)
		}
		seen[code] = n
	}
}

func TestEncodeSameLengthOrdering(t *testing.T) {
	// Within one digit-length, encoding preserves order lexicographically.
	for n := uint64(62); n < 3843; n++ {
		a, b := Encode(n), Encode(n+1)
		if len(a) == len(b) && a >= b {
			t.Fatalf("Encode(%d) = %q not lexicographically before Encode(%d) = %q", n, a, n+1, b)
		}
	}
}

func TestEncodeGrowsWithMagnitude(t *testing.T) {
	if len(Encode(61)) != 1 || len(Encode(62)) != 2 || len(Encode(3844)) != 3 {
		t.Errorf("digit-length boundaries wrong: %q %q %q", Encode(61), Encode(62), Encode(3844))
	}
}
