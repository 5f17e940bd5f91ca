/*
	Package skeleton provides an in-memory forest of skeleton nodes parsed
	from the SWC-like text tables served for segmentation bodies, plus the
	repair operations used to turn a fragmented, arbitrarily rooted forest
	into a single canonical tree: healing, rerooting and renumbering.

	A table row is

		node_id type x y z radius parent_id

	with whitespace-separated columns and '#'-prefixed comment lines.  The
	comment header may embed a `"mutation id": N` that ties a skeleton to the
	segmentation version it was computed from; it is carried through verbatim
	so callers can cross-check staleness against the service.
*/
package skeleton

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/flyconnectome/dvidtools/dvid"
)

// Node is one skeleton sample point.
type Node struct {
	ID     uint64
	Label  int32 // SWC structure type column
	Pos    dvid.Vector3d
	Radius float64
	Parent int64 // parent node id, -1 = no parent
}

// NoParent marks a node without a parent, i.e., a root.
const NoParent int64 = -1

// Header holds the comment lines preceding the node table, preserved
// verbatim, and the mutation id embedded in them if any.
type Header struct {
	Comments   []string
	MutationID uint64
	HasMutID   bool
}

// Graph is a directed forest of skeleton nodes with edges pointing from
// child to parent.  A Graph is exclusively owned by its creator; Heal,
// Reroot and Renumber mutate it in place and must not run concurrently on
// the same instance.
type Graph struct {
	Header Header

	nodes map[uint64]*Node
	order []uint64 // node ids in insertion order, the deterministic iteration basis
}

var mutidExp = regexp.MustCompile(`"mutation id":\s*(\d+)`)

// ParseTable parses an SWC-like table into a Graph.  Malformed rows, rows
// with the wrong column count, self-parenting rows and duplicate node ids
// return dvid.ErrParse.
func ParseTable(text string) (*Graph, error) {
	g := &Graph{nodes: make(map[uint64]*Node)}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			g.Header.Comments = append(g.Header.Comments, line)
			if m := mutidExp.FindStringSubmatch(line); m != nil {
				mutid, err := strconv.ParseUint(m[1], 10, 64)
				if err == nil {
					g.Header.MutationID = mutid
					g.Header.HasMutID = true
				}
			}
			continue
		}
		node, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", lineNum, err, dvid.ErrParse)
		}
		if _, found := g.nodes[node.ID]; found {
			return nil, fmt.Errorf("line %d: duplicate node id %d: %w", lineNum, node.ID, dvid.ErrParse)
		}
		g.nodes[node.ID] = node
		g.order = append(g.order, node.ID)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading skeleton table: %v: %w", err, dvid.ErrParse)
	}
	return g, nil
}

func parseRow(line string) (*Node, error) {
	fields := strings.Fields(line)
	if len(fields) != 7 {
		return nil, fmt.Errorf("expected 7 columns, got %d", len(fields))
	}
	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad node id %q", fields[0])
	}
	label, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad type %q", fields[1])
	}
	var pos dvid.Vector3d
	for i := 0; i < 3; i++ {
		pos[i], err = strconv.ParseFloat(fields[2+i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q", fields[2+i])
		}
	}
	radius, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return nil, fmt.Errorf("bad radius %q", fields[5])
	}
	parent, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad parent id %q", fields[6])
	}
	if parent >= 0 && uint64(parent) == id {
		return nil, fmt.Errorf("node %d is its own parent", id)
	}
	return &Node{
		ID:     id,
		Label:  int32(label),
		Pos:    pos,
		Radius: radius,
		Parent: parent,
	}, nil
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// Node returns the node with the given id, or nil if absent.
func (g *Graph) Node(id uint64) *Node {
	return g.nodes[id]
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// FindLeaves returns ids, in insertion order, of nodes never referenced as
// any other node's parent.  These are the candidate tips for open-end
// detection.
func (g *Graph) FindLeaves() []uint64 {
	isParent := make(map[uint64]struct{}, len(g.nodes))
	for _, node := range g.nodes {
		if node.Parent >= 0 {
			isParent[uint64(node.Parent)] = struct{}{}
		}
	}
	var leaves []uint64
	for _, id := range g.order {
		if _, found := isParent[id]; !found {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// SerializeTable writes the graph back to canonical SWC-like text: preserved
// comment lines first, then one row per node in table order with
// single-space separated columns.  After Renumber the table order is the
// dense ascending id order required by the on-disk format.
func (g *Graph) SerializeTable() string {
	var b strings.Builder
	for _, comment := range g.Header.Comments {
		b.WriteString(comment)
		b.WriteByte('\n')
	}
	for _, node := range g.Nodes() {
		b.WriteString(strconv.FormatUint(node.ID, 10))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(int64(node.Label), 10))
		for i := 0; i < 3; i++ {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(node.Pos[i], 'g', -1, 64))
		}
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(node.Radius, 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(node.Parent, 10))
		b.WriteByte('\n')
	}
	return b.String()
}
