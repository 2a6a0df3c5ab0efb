package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBase62(t *testing.T) {
	tests := []struct {
		name     string
		input    uint64
		expected string
	}{
		{"zero", 0, "0"},
		{"single digit max", 61, "z"},
		{"two digits", 62, "10"},
		{"first offset code", 10001, "2bJ"},
		{"larger number", 12345, "3D7"},
		{"max uint64", 18446744073709551615, "LygHa16AHYF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EncodeBase62(tt.input)
			assert.Equal(t, tt.expected, result, "EncodeBase62(%d)", tt.input)
		})
	}
}

func TestEncodeBase62_AlphabetOnly(t *testing.T) {
	for _, n := range []uint64{0, 1, 61, 62, 3843, 10000, 123456789} {
		code := EncodeBase62(n)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(base62Chars, c),
				"EncodeBase62(%d) produced invalid character %c", n, c)
		}
	}
}

func TestDecodeBase62_RoundTrip(t *testing.T) {
	inputs := []uint64{0, 1, 9, 10, 35, 36, 61, 62, 100, 3844, 10000, 10001, 999999999, 18446744073709551615}
	for _, n := range inputs {
		decoded, err := DecodeBase62(EncodeBase62(n))
		require.NoError(t, err)
		assert.Equal(t, n, decoded, "round trip failed for %d", n)
	}
}

func TestDecodeBase62_Invalid(t *testing.T) {
	_, err := DecodeBase62("")
	require.Error(t, err)

	_, err = DecodeBase62("abc-def")
	require.Error(t, err)
}

func TestEncodeBase62_NoCollisions(t *testing.T) {
	seen := make(map[string]uint64, 20000)
	for n := uint64(0); n < 20000; n++ {
		code := EncodeBase62(n)
		if prev, ok := seen[code]; ok {
			t.Fatalf("collision: EncodeBase62(%d) == EncodeBase62(%d) == %q", n, prev, code)
		}
		seen[code] = n
	}
}
