package comparison_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/testutil"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/specialistvlad/robogrid/modules/comparison"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Operators(t *testing.T) {
	tests := []struct {
		op    string
		left  float64
		right value.Value
		want  bool
	}{
		{"==", 3, value.Number(3), true},
		{"!=", 3, value.Number(3), false},
		{">", 7, value.Number(5), true},
		{"<", 7, value.Number(5), false},
		{">=", 5, value.Text("5"), true},
		{"<=", 6, value.Number(5), false},
		{">", 7, value.Null(), true},
	}
	for _, tc := range tests {
		t.Run(tc.op, func(t *testing.T) {
			rc := testutil.NewRunContext(value.Record{
				"operator":      value.Text(tc.op),
				"compare_value": value.Number(5),
			}, nil)
			out, err := comparison.Behavior{}.Execute(context.Background(), node.Values{
				"left":  value.Number(tc.left),
				"right": tc.right,
			}, rc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out["result"].AsBool())
		})
	}
}

func TestExecute_UnknownOperator(t *testing.T) {
	rc := testutil.NewRunContext(value.Record{"operator": value.Text("~=")}, nil)
	_, err := comparison.Behavior{}.Execute(context.Background(), node.Values{}, rc)
	assert.ErrorContains(t, err, "~=")
}

func TestCode(t *testing.T) {
	code := comparison.Behavior{}.Code(value.Record{"operator": value.Text(">="), "compare_value": value.Number(2)})
	assert.Equal(t, `{{out "result"}} = {{in "left"}} >= _coalesce({{in "right"}}, 2)`, code)
	assert.Contains(t, comparison.Behavior{}.Code(value.Record{"operator": value.Text("and")}), "raise ValueError")
}
