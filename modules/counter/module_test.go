package counter_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/testutil"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/specialistvlad/robogrid/modules/counter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_CountsAndResets(t *testing.T) {
	rc := testutil.NewRunContext(value.Record{"start": value.Number(10), "step": value.Number(2)}, nil)
	b := counter.Behavior{}

	var got []float64
	for _, reset := range []bool{false, false, true, false} {
		out, err := b.Execute(context.Background(), node.Values{"reset": value.Bool(reset)}, rc)
		require.NoError(t, err)
		got = append(got, out["count"].AsNumber())
	}
	assert.Equal(t, []float64{12, 14, 12, 14}, got)
}

func TestSpec_Stateful(t *testing.T) {
	assert.True(t, counter.Spec().Stateful)
}

func TestCode(t *testing.T) {
	code := counter.Behavior{}.Code(counter.Spec().Params)
	assert.Contains(t, code, `{{state "count"}} = _coalesce({{state "count"}}, 0) + 1`)
	assert.Contains(t, code, `{{out "count"}} = {{state "count"}}`)
}
