// Package classtree rebuilds the resource classification hierarchy from
// the flat rows the catalog sync persists.
package classtree

import (
	"github.com/sirupsen/logrus"
)

// Node is one classification entry. Children are populated by Build in
// input order; the flat form leaves them empty.
type Node struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parent_id,omitempty"`
	Depth    int     `json:"depth"`
	Name     string  `json:"name"`
	Children []*Node `json:"children,omitempty"`
}

// Result carries both renderings of the same node set.
type Result struct {
	Roots []*Node
	Flat  []*Node
}

// Build assembles a rooted forest from flat nodes in a single pass. The
// input slice is not mutated and no node is ever dropped: a node whose
// parent cannot be resolved, or that names itself as its own parent, is
// promoted to a root with a warning. Build performs no sorting; callers
// pre-sort (by depth then name) and that relative order is preserved in
// the root list and inside every children list.
//
// The output is not a validated acyclic tree for malformed input beyond
// the self-parent case; consumers must not assume more than what the
// source rows guarantee.
func Build(log *logrus.Entry, nodes []Node) Result {
	// The flat form is a separate set of copies: linking children below
	// must not bleed the hierarchy into it.
	byID := make(map[string]*Node, len(nodes))
	linked := make([]*Node, 0, len(nodes))
	flat := make([]*Node, 0, len(nodes))
	for i := range nodes {
		n := nodes[i]
		n.Children = nil
		linked = append(linked, &n)
		byID[n.ID] = linked[i]

		f := nodes[i]
		f.Children = nil
		flat = append(flat, &f)
	}

	roots := make([]*Node, 0)
	for _, n := range linked {
		switch {
		case n.ParentID == "":
			roots = append(roots, n)
		case n.ParentID == n.ID:
			log.WithField("id", n.ID).Warn("Classification node lists itself as parent, promoting to root")
			roots = append(roots, n)
		default:
			parent, ok := byID[n.ParentID]
			if !ok {
				log.WithFields(logrus.Fields{
					"id":     n.ID,
					"parent": n.ParentID,
				}).Warn("Dangling parent reference, promoting node to root")
				roots = append(roots, n)
				continue
			}
			parent.Children = append(parent.Children, n)
		}
	}

	return Result{Roots: roots, Flat: flat}
}
