package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestCoerce_Table(t *testing.T) {
	rec := RecordOf(Record{"value": Number(3), "unit": Text("cm")})

	tests := []struct {
		name string
		in   Value
		kind Kind
		want Value
	}{
		{"null to number", Null(), KindNumber, Number(0)},
		{"null to bool", Null(), KindBool, Bool(false)},
		{"null to text", Null(), KindText, Text("")},
		{"null to record", Null(), KindRecord, RecordOf(Record{})},
		{"true to number", Bool(true), KindNumber, Number(1)},
		{"number to bool", Number(-0.5), KindBool, Bool(true)},
		{"zero to bool", Number(0), KindBool, Bool(false)},
		{"integral number to text", Number(7), KindText, Text("7")},
		{"fractional number to text", Number(0.25), KindText, Text("0.25")},
		{"padded text to number", Text(" 7.5 "), KindNumber, Number(7.5)},
		{"garbage text to number", Text("seven"), KindNumber, Number(0)},
		{"yes to bool", Text("Yes"), KindBool, Bool(true)},
		{"garbage text to bool", Text("maybe"), KindBool, Bool(false)},
		{"record to number", rec, KindNumber, Number(3)},
		{"record to bool", rec, KindBool, Bool(true)},
		{"record to text", rec, KindText, Text(`{"unit":"cm","value":3}`)},
		{"scalar to record", Text("x"), KindRecord, RecordOf(Record{"value": Text("x")})},
		{"any passthrough", Text("x"), KindAny, Text("x")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Coerce(tc.in, tc.kind)
			assert.True(t, Equal(tc.want, got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestZero(t *testing.T) {
	assert.True(t, Equal(Number(0), Zero(KindNumber)))
	assert.True(t, Equal(Bool(false), Zero(KindBool)))
	assert.True(t, Equal(Text(""), Zero(KindText)))
	assert.True(t, Equal(RecordOf(nil), Zero(KindRecord)))
	assert.True(t, Zero(KindAny).IsNull())
}

func TestEqual_DistinguishesKinds(t *testing.T) {
	assert.False(t, Equal(Number(1), Bool(true)))
	assert.False(t, Equal(Text("1"), Number(1)))
	assert.True(t, Equal(
		RecordOf(Record{"a": Number(1), "b": RecordOf(Record{"c": Text("d")})}),
		RecordOf(Record{"b": RecordOf(Record{"c": Text("d")}), "a": Number(1)}),
	))
	assert.False(t, Equal(RecordOf(Record{"a": Number(1)}), RecordOf(Record{"a": Number(2)})))
}

func TestString(t *testing.T) {
	v := RecordOf(Record{"b": Text("x"), "a": Bool(true)})
	assert.Equal(t, `{a: true, b: "x"}`, v.String())
	assert.Equal(t, "null", Null().String())
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"distance": 12.5,
		"ok":       true,
		"tags":     []any{"front", "left"},
		"nested":   map[string]any{"n": 1},
		"missing":  nil,
	})
	require.NoError(t, err)

	rec := v.AsRecord()
	assert.Equal(t, 12.5, rec.Get("distance").AsNumber())
	assert.True(t, rec.Get("ok").AsBool())
	assert.Equal(t, "left", rec.Get("tags").AsRecord().Get("1").AsText())
	assert.Equal(t, float64(1), rec.Get("nested").AsRecord().Get("n").AsNumber())
	assert.True(t, rec.Get("missing").IsNull())

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	in := RecordOf(Record{"pitch": Number(0.5), "label": Text("imu")})
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pitch":0.5,"label":"imu"}`, string(data))

	var out Value
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, Equal(in, out))
}

func TestCtyConversion(t *testing.T) {
	cv := cty.ObjectVal(map[string]cty.Value{
		"action":    cty.StringVal("walk"),
		"speed":     cty.NumberIntVal(2),
		"careful":   cty.True,
		"metadata":  cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}),
		"nullified": cty.NullVal(cty.String),
	})

	v, err := FromCty(cv)
	require.NoError(t, err)
	rec := v.AsRecord()
	assert.Equal(t, "walk", rec.Get("action").AsText())
	assert.Equal(t, float64(2), rec.Get("speed").AsNumber())
	assert.True(t, rec.Get("careful").AsBool())
	assert.Equal(t, "v", rec.Get("metadata").AsRecord().Get("k").AsText())
	assert.True(t, rec.Get("nullified").IsNull())

	back, err := FromCty(v.ToCty())
	require.NoError(t, err)
	assert.True(t, Equal(v, back))

	_, err = FromCty(cty.ListVal([]cty.Value{cty.StringVal("a")}))
	assert.Error(t, err)
	_, err = FromCty(cty.UnknownVal(cty.String))
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindNull, KindNumber, KindBool, KindText, KindRecord, KindAny} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("list")
	assert.Error(t, err)
}
