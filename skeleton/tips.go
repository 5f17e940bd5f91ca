/*
	This file supports open-end detection: finding skeleton tips that are not
	explained by a nearby postsynaptic density or a prior proofreading mark.
	The positions of those sites come from external annotation queries; only
	the geometry filtering happens here.
*/

package skeleton

import (
	"sort"

	"github.com/flyconnectome/dvidtools/dvid"
)

// TipOptions filters candidate open ends.  A zero distance disables the
// corresponding check.  Positions are in the same units as node positions.
type TipOptions struct {
	// PSDDist suppresses tips within this distance of a postsynaptic site.
	PSDDist float64
	PSDs    []dvid.Vector3d

	// DoneDist suppresses tips within this distance of a DONE tag.
	DoneDist float64
	DoneTags []dvid.Vector3d

	// CheckedDist suppresses tips within this distance of a previously
	// checked assignment.
	CheckedDist float64
	Checked     []dvid.Vector3d

	// Keep restricts candidates to positions for which it returns true,
	// e.g., a bounding-box filter.  Nil keeps everything.
	Keep func(pos dvid.Vector3d) bool
}

// OpenEnds returns copies of the leaf nodes that pass all configured
// proximity filters, sorted by descending radius on the assumption that
// larger radii indicate more likely continuations.  Radius ties order by
// ascending node id.
func (g *Graph) OpenEnds(opts TipOptions) []Node {
	var open []Node
	for _, id := range g.FindLeaves() {
		node := g.nodes[id]
		if opts.Keep != nil && !opts.Keep(node.Pos) {
			continue
		}
		if opts.PSDDist > 0 && withinDist(node.Pos, opts.PSDs, opts.PSDDist) {
			continue
		}
		if opts.DoneDist > 0 && withinDist(node.Pos, opts.DoneTags, opts.DoneDist) {
			continue
		}
		if opts.CheckedDist > 0 && withinDist(node.Pos, opts.Checked, opts.CheckedDist) {
			continue
		}
		open = append(open, *node)
	}

	sort.SliceStable(open, func(i, j int) bool {
		if open[i].Radius != open[j].Radius {
			return open[i].Radius > open[j].Radius
		}
		return open[i].ID < open[j].ID
	})
	return open
}

func withinDist(pos dvid.Vector3d, sites []dvid.Vector3d, dist float64) bool {
	for _, site := range sites {
		if pos.Distance(site) < dist {
			return true
		}
	}
	return false
}
