package nodeid

import (
	"fmt"
	"strings"
	"sync"
)

// Generator hands out process-unique ids of the form `<type>_<n>`.
type Generator struct {
	mu   sync.Mutex
	next map[string]int
}

// NewGenerator creates an empty generator.
func NewGenerator() *Generator {
	return &Generator{next: make(map[string]int)}
}

// Next returns the next free id for typeID. taken reports ids that are already
// in use and must be skipped; it may be nil.
func (g *Generator) Next(typeID string, taken func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := sanitize(typeID)
	for {
		g.next[base]++
		id := fmt.Sprintf("%s_%d", base, g.next[base])
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// sanitize maps an arbitrary type id onto the identifier alphabet.
func sanitize(typeID string) string {
	var sb strings.Builder
	for i, r := range typeID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('n')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	s := sb.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_")
	if s == "" {
		return "node"
	}
	return s
}
