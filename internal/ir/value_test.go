package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{"c": IRInt(1), "a": IRInt(2), "b": IRInt(3)}
	assert.Equal(t, []string{"a", "b", "c"}, obj.SortedKeys())
}

func TestIRObjectEmpty(t *testing.T) {
	assert.Empty(t, IRObject{}.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"a", "ab", -1},
		{"", "a", -1},
		{"\U00010000", "\uE000", -1}, // surrogate pair sorts before U+E000
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, compareKeysRFC8785(tt.a, tt.b), "compare(%q, %q)", tt.a, tt.b)
	}
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, IRArray{IRString("x"), IRString("y")}, StringArray([]string{"x", "y"}))
	assert.Equal(t, IRObject{"A": IRString("true")}, StringObject(map[string]string{"A": "true"}))
	assert.Equal(t, IRArray{}, StringArray(nil))
}
