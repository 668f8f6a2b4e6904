// Package value implements the dynamically typed payload carried by node ports.
//
// A Value is a closed sum type over null, number, bool, text and record. Ports
// declare the Kind they want to consume and the producer's value is coerced at
// consumption time (see Coerce). Coercion never fails: anything that cannot be
// interpreted degrades to the zero value of the requested kind.
//
// Null doubles as the "not produced" marker. A port whose source has not run in
// the current pass reads Null, which then coerces to the consumer's zero value.
package value

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindText
	KindRecord
	// KindAny is only meaningful on port declarations: a port of kind Any
	// receives the producer's value untouched.
	KindAny
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindNumber: "number",
	KindBool:   "bool",
	KindText:   "text",
	KindRecord: "record",
	KindAny:    "any",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindNull, fmt.Errorf("unknown value kind %q", s)
}

// Value is an immutable tagged payload. The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	b    bool
	text string
	rec  Record
}

// Record is a string-keyed structured value. Records held by a Value are
// treated as immutable; use Clone before modifying one obtained from a Value.
type Record map[string]Value

// Null returns the null value.
func Null() Value { return Value{} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Int wraps an integer as a number.
func Int(n int) Value { return Number(float64(n)) }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// RecordOf wraps a record. A nil record is stored as an empty one.
func RecordOf(r Record) Value {
	if r == nil {
		r = Record{}
	}
	return Value{kind: KindRecord, rec: r}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Equal reports whether a and b hold the same variant and payload.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.b == b.b
	case KindText:
		return a.text == b.text
	case KindRecord:
		return maps.EqualFunc(a.rec, b.rec, Equal)
	}
	return false
}

// Equal is the method form of the package-level Equal. It lets go-cmp compare
// Values and Records without reaching into unexported fields.
func (v Value) Equal(other Value) bool { return Equal(v, other) }

// String renders v for humans. Text is quoted so that Text("1") and Number(1)
// are distinguishable in logs.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindText:
		return fmt.Sprintf("%q", v.text)
	case KindRecord:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range v.rec.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(v.rec[k].String())
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		return v.AsText()
	}
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value {
	switch v.kind {
	case KindNumber:
		return slog.Float64Value(v.num)
	case KindBool:
		return slog.BoolValue(v.b)
	case KindText:
		return slog.StringValue(v.text)
	default:
		return slog.StringValue(v.String())
	}
}

// Get returns the value stored under key, or Null.
func (r Record) Get(key string) Value {
	if r == nil {
		return Null()
	}
	return r[key]
}

// Keys returns the record keys in sorted order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Clone returns a shallow copy of r. Nested records are shared, which is safe
// because Values are immutable.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Equal reports whether r and other hold equal values under equal keys.
func (r Record) Equal(other Record) bool {
	return maps.EqualFunc(r, other, Equal)
}
