// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single identifier segment.
var segmentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Ref addresses one port of one node.
type Ref struct {
	Node string
	Port string
}

// String returns the canonical `node.port` form.
func (r Ref) String() string {
	return r.Node + "." + r.Port
}

// Validate reports whether raw is an acceptable node id. Ids starting with an
// underscore are reserved for names the script generator derives from ids.
func Validate(raw string) error {
	if raw == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if err := validateSegment(raw); err != nil {
		return err
	}
	if strings.HasPrefix(raw, "_") {
		return fmt.Errorf("invalid identifier %q: must not start with an underscore", raw)
	}
	return nil
}

// ValidatePort reports whether raw is an acceptable port name. Port names
// follow the node id rules.
func ValidatePort(raw string) error {
	if raw == "" {
		return fmt.Errorf("port name cannot be empty")
	}
	return validateSegment(raw)
}

func validateSegment(s string) error {
	if !segmentRegex.MatchString(s) {
		return fmt.Errorf("invalid identifier %q: must match %s", s, segmentRegex.String())
	}
	if strings.Contains(s, "__") {
		return fmt.Errorf("invalid identifier %q: must not contain a double underscore", s)
	}
	return nil
}

// ParseRef parses the canonical `node.port` form.
func ParseRef(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, fmt.Errorf("port reference cannot be empty")
	}
	nodePart, portPart, ok := strings.Cut(raw, ".")
	if !ok {
		return Ref{}, fmt.Errorf("invalid port reference %q: expected 'node.port'", raw)
	}
	if strings.Contains(portPart, ".") {
		return Ref{}, fmt.Errorf("invalid port reference %q: too many segments", raw)
	}
	if err := Validate(nodePart); err != nil {
		return Ref{}, fmt.Errorf("invalid port reference %q: %w", raw, err)
	}
	if err := ValidatePort(portPart); err != nil {
		return Ref{}, fmt.Errorf("invalid port reference %q: %w", raw, err)
	}
	return Ref{Node: nodePart, Port: portPart}, nil
}
