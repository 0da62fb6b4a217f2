package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition(t *testing.T) {
	input := "ab\ncdé f"

	tests := []struct {
		name                     string
		offset                   int
		wantOffset, line, column int
	}{
		{"start", 0, 0, 1, 1},
		{"second line", 4, 4, 2, 2},
		{"after multibyte rune", 7, 7, 2, 4},
		{"clamped", 100, len(input), 2, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, line, column := Position(input, tt.offset)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.column, column)
		})
	}
}

func TestFound(t *testing.T) {
	assert.Equal(t, `"SELECT"`, Found("SELECT ?x", 0, 16))
	assert.Equal(t, `"SEL"`, Found("SELECT ?x", 0, 3))
	assert.Equal(t, `" "`, Found("SELECT ?x", 6, 16))
	assert.Equal(t, EndOfInput, Found("SELECT", 6, 16))
}

func TestMergeExpected(t *testing.T) {
	merged := MergeExpected([]string{"'{'", "WHERE"}, "WHERE", "FROM")
	assert.Equal(t, []string{"'{'", "WHERE", "FROM"}, merged)
}

func TestJoinExpected(t *testing.T) {
	assert.Equal(t, "'}'", JoinExpected([]string{"'}'"}))
	assert.Equal(t, "one of 'a', 'b'", JoinExpected([]string{"'a'", "'b'"}))
}
