package value

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// truthyText lists the (trimmed, lower-cased) spellings of true in text form.
var truthyText = map[string]bool{
	"1":    true,
	"t":    true,
	"true": true,
	"y":    true,
	"yes":  true,
	"on":   true,
}

// Zero returns the zero value of kind k.
func Zero(k Kind) Value {
	switch k {
	case KindNumber:
		return Number(0)
	case KindBool:
		return Bool(false)
	case KindText:
		return Text("")
	case KindRecord:
		return RecordOf(Record{})
	default:
		return Null()
	}
}

// Coerce converts v to kind k. KindAny and KindNull return v unchanged.
func Coerce(v Value, k Kind) Value {
	switch k {
	case KindNumber:
		return Number(v.AsNumber())
	case KindBool:
		return Bool(v.AsBool())
	case KindText:
		return Text(v.AsText())
	case KindRecord:
		return RecordOf(v.AsRecord())
	default:
		return v
	}
}

// AsNumber interprets v as a number.
func (v Value) AsNumber() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0
		}
		return n
	case KindRecord:
		return v.rec.Get("value").AsNumber()
	}
	return 0
}

// AsBool interprets v as a boolean.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0
	case KindBool:
		return v.b
	case KindText:
		return truthyText[strings.ToLower(strings.TrimSpace(v.text))]
	case KindRecord:
		return v.rec.Get("value").AsBool()
	}
	return false
}

// AsText interprets v as text. Integral numbers render without a fractional
// part; records render as compact JSON with sorted keys.
func (v Value) AsText() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindText:
		return v.text
	case KindRecord:
		b, err := json.Marshal(v.rec.ToAny())
		if err != nil {
			return ""
		}
		return string(b)
	}
	return ""
}

// AsRecord interprets v as a record. Scalars are wrapped under "value".
func (v Value) AsRecord() Record {
	switch v.kind {
	case KindNull:
		return Record{}
	case KindRecord:
		return v.rec
	}
	return Record{"value": v}
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
