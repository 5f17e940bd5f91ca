/*
	This file holds the dense binary occupancy grid that marching cubes runs
	over.  The grid covers the voxel bounding box padded by one voxel on each
	side so surfaces close at the volume boundary.
*/

package mesh

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/flyconnectome/dvidtools/dvid"
)

// DefaultMaxGridVoxels bounds the dense occupancy grid since its memory is
// proportional to the bounding-box volume, not the voxel count.
const DefaultMaxGridVoxels = 512 * 512 * 512

// occupancyGrid is 3d binary data including a 3d offset back into voxel
// coordinate space.
type occupancyGrid struct {
	offset dvid.Point3d // voxel coordinate of grid position (0,0,0)
	size   dvid.Point3d
	data   []uint8
}

// newOccupancyGrid rasterizes discrete voxels into a dense grid padded by one
// voxel per side.  Returns dvid.ErrEmptyVolume for no voxels and
// dvid.ErrVolumeTooLarge when the padded bounding box exceeds maxGridVoxels.
func newOccupancyGrid(voxels []dvid.Point3d, maxGridVoxels int64) (*occupancyGrid, error) {
	if len(voxels) == 0 {
		return nil, fmt.Errorf("cannot rasterize zero voxels: %w", dvid.ErrEmptyVolume)
	}

	minPt := voxels[0]
	maxPt := voxels[0]
	for _, pt := range voxels[1:] {
		minPt.SetMinimum(pt)
		maxPt.SetMaximum(pt)
	}

	size := maxPt.Sub(minPt).AddScalar(3) // extents + 1 voxel pad per side
	numVoxels := size.Prod()
	if numVoxels > maxGridVoxels {
		return nil, fmt.Errorf("padded bounding box %s needs %s voxels, max is %s: %w",
			size, humanize.Comma(numVoxels), humanize.Comma(maxGridVoxels), dvid.ErrVolumeTooLarge)
	}

	grid := &occupancyGrid{
		offset: minPt.AddScalar(-1),
		size:   size,
		data:   make([]uint8, numVoxels),
	}
	dvid.Debugf("Allocated %s occupancy grid %s for %s voxels\n",
		humanize.Bytes(uint64(numVoxels)), size, humanize.Comma(int64(len(voxels))))

	nx := int64(size[0])
	nxy := nx * int64(size[1])
	for _, pt := range voxels {
		p := pt.Sub(grid.offset)
		grid.data[int64(p[2])*nxy+int64(p[1])*nx+int64(p[0])] = 1
	}
	return grid, nil
}

// value returns the occupancy at grid coordinates, reading out-of-range
// samples as empty so strided marching never indexes past the buffer.
func (grid *occupancyGrid) value(x, y, z int32) uint8 {
	if x < 0 || y < 0 || z < 0 || x >= grid.size[0] || y >= grid.size[1] || z >= grid.size[2] {
		return 0
	}
	nx := int64(grid.size[0])
	nxy := nx * int64(grid.size[1])
	return grid.data[int64(z)*nxy+int64(y)*nx+int64(x)]
}
