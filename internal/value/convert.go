package value

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ToAny converts v into plain Go data: nil, float64, bool, string or
// map[string]any.
func (v Value) ToAny() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindText:
		return v.text
	case KindRecord:
		return v.rec.ToAny()
	}
	return nil
}

// ToAny converts r into a map[string]any.
func (r Record) ToAny() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v.ToAny()
	}
	return out
}

// FromAny converts decoded JSON-like data into a Value. Slices are converted
// into records keyed by their decimal index because the payload model has no
// list variant.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return Text(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Number(n), nil
	case map[string]any:
		rec := make(Record, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Null(), fmt.Errorf("field %q: %w", k, err)
			}
			rec[k] = v
		}
		return RecordOf(rec), nil
	case []any:
		rec := make(Record, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Null(), fmt.Errorf("index %d: %w", i, err)
			}
			rec[fmt.Sprint(i)] = v
		}
		return RecordOf(rec), nil
	}
	return Null(), fmt.Errorf("unsupported payload type %T", x)
}

// MarshalJSON renders v as natural JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// UnmarshalJSON decodes natural JSON into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ToCty converts v into a cty.Value. Null becomes a dynamically typed null.
func (v Value) ToCty() cty.Value {
	switch v.kind {
	case KindNumber:
		return cty.NumberFloatVal(v.num)
	case KindBool:
		return cty.BoolVal(v.b)
	case KindText:
		return cty.StringVal(v.text)
	case KindRecord:
		if len(v.rec) == 0 {
			return cty.EmptyObjectVal
		}
		attrs := make(map[string]cty.Value, len(v.rec))
		for k, item := range v.rec {
			attrs[k] = item.ToCty()
		}
		return cty.ObjectVal(attrs)
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// FromCty converts an HCL/cty value into a Value. Objects and maps become
// records. Lists, sets and tuples are rejected; unknown values are an error.
func FromCty(cv cty.Value) (Value, error) {
	if cv.IsNull() {
		return Null(), nil
	}
	if !cv.IsWhollyKnown() {
		return Null(), fmt.Errorf("value is not known until runtime")
	}
	ty := cv.Type()
	switch {
	case ty.Equals(cty.String):
		return Text(cv.AsString()), nil
	case ty.Equals(cty.Number):
		f, _ := cv.AsBigFloat().Float64()
		return Number(f), nil
	case ty.Equals(cty.Bool):
		return Bool(cv.True()), nil
	case ty.IsObjectType() || ty.IsMapType():
		rec := make(Record, cv.LengthInt())
		for it := cv.ElementIterator(); it.Next(); {
			k, item := it.Element()
			key := k.AsString()
			v, err := FromCty(item)
			if err != nil {
				return Null(), fmt.Errorf("attribute %q: %w", key, err)
			}
			rec[key] = v
		}
		return RecordOf(rec), nil
	}
	return Null(), fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}
