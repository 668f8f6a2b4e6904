package scheduler

// Region is one node of the control region tree.
type Region struct {
	// Control is the id of the if or while_loop opening the region. It is
	// empty for the root region.
	Control string
	// Port is the region-opening output port of Control.
	Port   string
	Parent *Region
	Depth  int
	// Steps lists the nodes owned directly by this region in execution order.
	Steps []string
}

// IsRoot reports whether r is the root region.
func (r *Region) IsRoot() bool { return r.Parent == nil }

// Contains reports whether other is r or nested anywhere inside r.
func (r *Region) Contains(other *Region) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == r {
			return true
		}
	}
	return false
}

func (r *Region) String() string {
	if r.IsRoot() {
		return "root"
	}
	return r.Control + "." + r.Port
}

// lca returns the lowest common ancestor of a and b.
func lca(a, b *Region) *Region {
	for a.Depth > b.Depth {
		a = a.Parent
	}
	for b.Depth > a.Depth {
		b = b.Parent
	}
	for a != b {
		a, b = a.Parent, b.Parent
	}
	return a
}

// childToward returns the child of ancestor on the path down to r. ancestor
// must strictly contain r.
func childToward(ancestor, r *Region) *Region {
	cur := r
	for cur.Parent != ancestor {
		cur = cur.Parent
	}
	return cur
}
