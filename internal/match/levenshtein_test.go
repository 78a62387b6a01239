package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"a", "a", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"a", "ab", 1},
		{"ab", "a", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"ABC", "abc", 3},

		{"mojang_to_spigot", "mojang_to_spigot", 0},
		{"mojang_to_spigt", "mojang_to_spigot", 1},
		{"obf_to_mojang", "obf_to_spigot", 6},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a), "symmetry")
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected float64
	}{
		{"", "", 1.0},
		{"hello", "hello", 1.0},
		{"abc", "xyz", 0.0},
		{"kitten", "sitting", 1.0 - 3.0/7.0},
		{"abc", "ab", 1.0 - 1.0/3.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 0.001)
		})
	}
}

func TestClosest(t *testing.T) {
	kinds := []string{"MOJANG_TO_SPIGOT", "MOJANG_TO_OBF", "OBF_TO_MOJANG", "OBF_TO_SPIGOT", "SPIGOT_TO_MOJANG", "SPIGOT_TO_OBF"}

	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"mojang-to-spigot", "MOJANG_TO_SPIGOT", true},
		{"MOJANG_TO_SPIGT", "MOJANG_TO_SPIGOT", true},
		{"spigot to obf", "SPIGOT_TO_OBF", true},
		{"obf_to_mojnag", "OBF_TO_MOJANG", true},
		{"yarn", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Closest(tt.input, kinds)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Closest("anything", nil)
	assert.False(t, ok)
}

func BenchmarkLevenshtein(b *testing.B) {
	for b.Loop() {
		Levenshtein("mojang_to_spigot", "spigot_to_mojang")
	}
}
