package script

import (
	"math"
	"testing"

	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/stretchr/testify/assert"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   value.Value
		want string
	}{
		{value.Null(), "None"},
		{value.Number(3), "3"},
		{value.Number(0.5), "0.5"},
		{value.Number(-2), "-2"},
		{value.Number(math.Inf(1)), "float('inf')"},
		{value.Bool(true), "True"},
		{value.Bool(false), "False"},
		{value.Text("stand"), "'stand'"},
		{value.Text("it's"), `'it\'s'`},
		{value.Text("a\nb\\"), `'a\nb\\'`},
		{value.Text(`{{state "x"}}`), `'\x7b\x7bstate "x"\x7d\x7d'`},
		{value.Text("\x01"), `'\x01'`},
		{value.RecordOf(nil), "{}"},
		{value.RecordOf(value.Record{"speed": value.Number(1), "dir": value.Text("left")}), "{'dir': 'left', 'speed': 1}"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Literal(tc.in))
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "sense__value", Var("sense", "value"))
	assert.Equal(t, "_st_count__n", StateVar("count", "n"))
	assert.Equal(t, "_st_count__a_b", StateVar("count", "a-b"))
	assert.Equal(t, "_guard_loop", GuardVar("loop"))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "abc_1", Identifier("abc_1"))
	assert.Equal(t, "_1x", Identifier("1x"))
	assert.Equal(t, "a_b_c", Identifier("a b.c"))
	assert.Equal(t, "_", Identifier(""))
}

func TestComment(t *testing.T) {
	assert.Equal(t, "# one\n#\n# two", Comment("one\n\ntwo\n"))
}
