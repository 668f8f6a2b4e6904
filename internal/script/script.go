// Package script renders values and identifiers of the generated Python
// scripts.
package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/specialistvlad/robogrid/internal/value"
)

// Literal renders v as a Python literal. Text literals escape braces, so a
// literal embedded in a code fragment can never open a template directive.
func Literal(v value.Value) string {
	switch v.Kind() {
	case value.KindNumber:
		return Number(v.AsNumber())
	case value.KindBool:
		if v.AsBool() {
			return "True"
		}
		return "False"
	case value.KindText:
		return String(v.AsText())
	case value.KindRecord:
		rec := v.AsRecord()
		if len(rec) == 0 {
			return "{}"
		}
		parts := make([]string, 0, len(rec))
		for _, k := range rec.Keys() {
			parts = append(parts, String(k)+": "+Literal(rec[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "None"
}

// Number renders n the way value.AsText formats numbers, with Python spellings
// for the non-finite values.
func Number(n float64) string {
	switch {
	case math.IsNaN(n):
		return "float('nan')"
	case math.IsInf(n, 1):
		return "float('inf')"
	case math.IsInf(n, -1):
		return "float('-inf')"
	}
	return value.Number(n).AsText()
}

// String renders s as a single-quoted Python string literal.
func String(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '{':
			sb.WriteString(`\x7b`)
		case '}':
			sb.WriteString(`\x7d`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, r)
				continue
			}
			if !strconv.IsPrint(r) {
				if r > 0xffff {
					fmt.Fprintf(&sb, `\U%08x`, r)
				} else {
					fmt.Fprintf(&sb, `\u%04x`, r)
				}
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// Var names the variable holding an output port of a node.
func Var(nodeID, port string) string { return nodeID + "__" + port }

// StateVar names the variable holding run-scoped state of a node.
func StateVar(nodeID, key string) string { return "_st_" + nodeID + "__" + Identifier(key) }

// GuardVar names the pass counter of a loop node.
func GuardVar(nodeID string) string { return "_guard_" + nodeID }

// SeenVar names the flag recording whether the back-edge source of a loop
// node produced since the loop was entered.
func SeenVar(nodeID string) string { return "_seen_" + nodeID }

// Identifier maps s onto the Python identifier alphabet.
func Identifier(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

// Comment renders text as Python comment lines.
func Comment(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("# "+l, " ")
	}
	return strings.Join(lines, "\n")
}
