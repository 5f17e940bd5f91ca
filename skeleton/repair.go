/*
	This file holds the skeleton repair operations: fragment detection,
	healing, rerooting and canonical renumbering.
*/

package skeleton

import (
	"fmt"
	"math"
	"sort"

	"github.com/flyconnectome/dvidtools/dvid"
)

// component is one connected fragment: node ids in graph insertion order.
type component struct {
	ids  []uint64
	root uint64 // the fragment's top node: Parent == NoParent or a dangling parent
}

// components partitions the graph into connected fragments by undirected
// parent/child connectivity.  Fragments are returned ordered by their
// smallest node id.  A parent reference to a missing node does not connect;
// the referencing node is that fragment's root.
func (g *Graph) components() ([]component, error) {
	adjacency := make(map[uint64][]uint64, len(g.nodes))
	for _, node := range g.nodes {
		if node.Parent >= 0 {
			parent := uint64(node.Parent)
			if _, found := g.nodes[parent]; found {
				adjacency[node.ID] = append(adjacency[node.ID], parent)
				adjacency[parent] = append(adjacency[parent], node.ID)
			}
		}
	}

	assigned := make(map[uint64]int, len(g.nodes))
	var comps []component
	for _, id := range g.order {
		if _, found := assigned[id]; found {
			continue
		}
		ci := len(comps)
		members := make(map[uint64]struct{})
		stack := []uint64{id}
		assigned[id] = ci
		members[id] = struct{}{}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range adjacency[cur] {
				if _, found := assigned[next]; !found {
					assigned[next] = ci
					members[next] = struct{}{}
					stack = append(stack, next)
				}
			}
		}

		var comp component
		foundRoot := false
		for _, oid := range g.order {
			if _, in := members[oid]; !in {
				continue
			}
			comp.ids = append(comp.ids, oid)
			node := g.nodes[oid]
			if node.Parent == NoParent {
				comp.root = oid
				foundRoot = true
			} else if node.Parent >= 0 {
				if _, exists := g.nodes[uint64(node.Parent)]; !exists && !foundRoot {
					comp.root = oid
					foundRoot = true
				}
			}
		}
		if !foundRoot {
			return nil, fmt.Errorf("fragment containing node %d: %w", id, dvid.ErrDisconnected)
		}
		comps = append(comps, comp)
	}

	sort.SliceStable(comps, func(i, j int) bool {
		return minID(comps[i].ids) < minID(comps[j].ids)
	})
	return comps, nil
}

func minID(ids []uint64) uint64 {
	min := ids[0]
	for _, id := range ids[1:] {
		if id < min {
			min = id
		}
	}
	return min
}

// NumFragments returns the number of connected fragments in the graph.
func (g *Graph) NumFragments() (int, error) {
	comps, err := g.components()
	if err != nil {
		return 0, err
	}
	return len(comps), nil
}

// Heal stitches a fragmented skeleton into a single tree.
//
// The main component is the one containing the explicit root if given,
// otherwise the largest fragment with ties broken by smallest node id.
// While fragments remain, the fragment with the smallest Euclidean distance
// between any of its nodes and any node of the main component is attached:
// its own root node is redirected to point at the nearest main-component
// node.  Distance ties break on graph insertion order, first minimal pair
// wins, so healing is deterministic for any input permutation.
//
// Healing an already-connected skeleton is a no-op.  Returns
// dvid.ErrNotFound if the explicit root id is absent and
// dvid.ErrDisconnected if a fragment has no attachable root, which cannot
// happen for a table that parsed cleanly.
func (g *Graph) Heal(root *uint64) error {
	if root != nil {
		// Reroot the designated node's own fragment to it up front so it
		// both seeds the main component and survives as the final root.
		if err := g.Reroot(*root); err != nil {
			return err
		}
	}
	comps, err := g.components()
	if err != nil {
		return err
	}
	if len(comps) <= 1 {
		g.finishHeal()
		return nil
	}
	dvid.Infof("Healing skeleton with %d fragments, %d nodes\n", len(comps), len(g.nodes))

	mainIdx := 0
	if root != nil {
		for i, comp := range comps {
			if containsID(comp.ids, *root) {
				mainIdx = i
				break
			}
		}
	} else {
		for i, comp := range comps {
			if len(comp.ids) > len(comps[mainIdx].ids) {
				mainIdx = i
			}
		}
	}

	main := comps[mainIdx]
	remaining := make([]component, 0, len(comps)-1)
	for i, comp := range comps {
		if i != mainIdx {
			remaining = append(remaining, comp)
		}
	}

	for len(remaining) > 0 {
		bestFrag, bestTarget := -1, uint64(0)
		bestDist := math.Inf(1)
		for fi, frag := range remaining {
			for _, mid := range main.ids {
				mpos := g.nodes[mid].Pos
				for _, fid := range frag.ids {
					if d := mpos.Distance(g.nodes[fid].Pos); d < bestDist {
						bestDist = d
						bestFrag = fi
						bestTarget = mid
					}
				}
			}
		}

		frag := remaining[bestFrag]
		g.nodes[frag.root].Parent = int64(bestTarget)
		main.ids = append(main.ids, frag.ids...)
		remaining = append(remaining[:bestFrag], remaining[bestFrag+1:]...)
	}

	g.finishHeal()
	return nil
}

// finishHeal normalizes the healed tree so exactly one node has no parent:
// a dangling parent reference on the surviving root becomes NoParent.
func (g *Graph) finishHeal() {
	for _, node := range g.nodes {
		if node.Parent >= 0 {
			if _, found := g.nodes[uint64(node.Parent)]; !found {
				node.Parent = NoParent
			}
		}
	}
}

func containsID(ids []uint64, id uint64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Reroot makes the given node the tree's root by reversing the parent
// direction along the path from it to the current root.  Edges off that path
// are untouched.  Returns dvid.ErrNotFound if the node id is absent.
func (g *Graph) Reroot(newRoot uint64) error {
	node, found := g.nodes[newRoot]
	if !found {
		return fmt.Errorf("reroot target node %d: %w", newRoot, dvid.ErrNotFound)
	}

	// Walk up to the current root, recording the path.
	path := []uint64{newRoot}
	for cur := node; cur.Parent >= 0; {
		parent, found := g.nodes[uint64(cur.Parent)]
		if !found {
			break // dangling parent acts as the fragment root
		}
		path = append(path, parent.ID)
		if len(path) > len(g.nodes) {
			return fmt.Errorf("cycle detected while walking to root from node %d: %w",
				newRoot, dvid.ErrDisconnected)
		}
		cur = parent
	}

	// Flip each parent edge along the path.
	for i := len(path) - 1; i > 0; i-- {
		g.nodes[path[i]].Parent = int64(path[i-1])
	}
	node.Parent = NoParent
	return nil
}

// SnapToClosestNode returns the id of the node nearest to the given physical
// position, used to map an external soma coordinate onto the skeleton before
// rerooting.  Distance ties keep the earliest node in insertion order.
// Returns dvid.ErrNotFound for an empty graph.
func (g *Graph) SnapToClosestNode(pos dvid.Vector3d) (uint64, error) {
	if len(g.order) == 0 {
		return 0, fmt.Errorf("cannot snap position %s to empty skeleton: %w", pos, dvid.ErrNotFound)
	}
	best := g.order[0]
	bestDist := math.Inf(1)
	for _, id := range g.order {
		if d := g.nodes[id].Pos.Distance(pos); d < bestDist {
			bestDist = d
			best = id
		}
	}
	return best, nil
}

// Renumber reassigns node ids to the dense ascending sequence 1..N required
// by the canonical on-disk table, numbering parents before children.  The
// tree shape is unchanged; the returned mapping is old id to new id.
// Children of a node are visited in ascending old-id order, and in an
// unhealed forest each fragment is numbered in turn, so the result is
// deterministic.
func (g *Graph) Renumber() (map[uint64]uint64, error) {
	comps, err := g.components()
	if err != nil {
		return nil, err
	}

	children := make(map[uint64][]uint64, len(g.nodes))
	for _, id := range g.order {
		node := g.nodes[id]
		if node.Parent >= 0 {
			if _, found := g.nodes[uint64(node.Parent)]; found {
				children[uint64(node.Parent)] = append(children[uint64(node.Parent)], id)
			}
		}
	}
	for _, kids := range children {
		sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	}

	mapping := make(map[uint64]uint64, len(g.nodes))
	next := uint64(1)
	for _, comp := range comps {
		stack := []uint64{comp.root}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			mapping[cur] = next
			next++
			kids := children[cur]
			// Push in reverse so the smallest old id pops first.
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}

	renumbered := make(map[uint64]*Node, len(g.nodes))
	order := make([]uint64, 0, len(g.nodes))
	for oldID, newID := range mapping {
		node := g.nodes[oldID]
		node.ID = newID
		if node.Parent >= 0 {
			if newParent, found := mapping[uint64(node.Parent)]; found {
				node.Parent = int64(newParent)
			} else {
				node.Parent = NoParent
			}
		}
		renumbered[newID] = node
	}
	for newID := uint64(1); newID < next; newID++ {
		order = append(order, newID)
	}
	g.nodes = renumbered
	g.order = order
	return mapping, nil
}
