/*
	This file runs marching cubes over the occupancy grid at isovalue 0.5,
	placing surface vertices at crossed-edge midpoints.
*/

package mesh

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/flyconnectome/dvidtools/dvid"
	"github.com/flyconnectome/dvidtools/sparsevol"
)

// cornerOffsets orders the eight cell corners to match the case tables:
// corners 0-3 on the lower z face counterclockwise, 4-7 directly above.
var cornerOffsets = [8][3]int32{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// cubeEdges lists the corner pair joined by each of the twelve cell edges.
var cubeEdges = [12][2]uint8{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Mesher extracts triangle meshes from voxel data.  The zero value uses
// DefaultMaxGridVoxels.
type Mesher struct {
	// MaxGridVoxels caps the dense grid the voxels are rasterized into.
	// Zero or negative selects DefaultMaxGridVoxels.
	MaxGridVoxels int64
}

// FromVoxels meshes a set of discrete voxels.  Each voxel is treated as an
// occupied unit sample and the surface is extracted at isovalue 0.5, so the
// mesh passes halfway between occupied and empty neighbors.  A nil voxelSize
// leaves vertices in voxel units; otherwise it must give the per-axis
// physical size (x, y, z) used to scale vertices, typically to nanometers.
// stepSize is the cell stride: 1 meshes at full resolution, larger values
// downsample by sampling every stepSize-th voxel.
func (m Mesher) FromVoxels(voxels []dvid.Point3d, voxelSize dvid.NdFloat32, stepSize int) (*Mesh, error) {
	if stepSize < 1 {
		return nil, fmt.Errorf("mesh step size %d, must be >= 1: %w", stepSize, dvid.ErrFormat)
	}
	scale := dvid.NdFloat32{1, 1, 1}
	if voxelSize != nil {
		if len(voxelSize) != 3 {
			return nil, fmt.Errorf("voxel size has %d dimensions instead of 3: %w", len(voxelSize), dvid.ErrFormat)
		}
		scale = voxelSize
	}
	maxGridVoxels := m.MaxGridVoxels
	if maxGridVoxels <= 0 {
		maxGridVoxels = DefaultMaxGridVoxels
	}

	grid, err := newOccupancyGrid(voxels, maxGridVoxels)
	if err != nil {
		return nil, err
	}

	s := int32(stepSize)
	mesh := new(Mesh)

	// Midpoint vertices land on half-integer grid coordinates, so doubled
	// coordinates key them exactly for sharing across adjacent cells.
	vertexIndex := make(map[[3]int32]uint32)

	var corners [8][3]int32
	var edgeVerts [12]uint32
	for z := int32(0); z < grid.size[2]; z += s {
		for y := int32(0); y < grid.size[1]; y += s {
			for x := int32(0); x < grid.size[0]; x += s {
				cubeIndex := 0
				for i, off := range cornerOffsets {
					corners[i] = [3]int32{x + off[0]*s, y + off[1]*s, z + off[2]*s}
					if grid.value(corners[i][0], corners[i][1], corners[i][2]) == 0 {
						cubeIndex |= 1 << i
					}
				}
				edges := edgeTable[cubeIndex]
				if edges == 0 {
					continue
				}
				for e := 0; e < 12; e++ {
					if edges&(1<<e) == 0 {
						continue
					}
					a := corners[cubeEdges[e][0]]
					b := corners[cubeEdges[e][1]]
					key := [3]int32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
					idx, found := vertexIndex[key]
					if !found {
						idx = uint32(len(mesh.Vertices))
						vertexIndex[key] = idx
						mesh.Vertices = append(mesh.Vertices, dvid.Vector3d{
							(float64(key[0])/2 + float64(grid.offset[0])) * float64(scale[0]),
							(float64(key[1])/2 + float64(grid.offset[1])) * float64(scale[1]),
							(float64(key[2])/2 + float64(grid.offset[2])) * float64(scale[2]),
						})
					}
					edgeVerts[e] = idx
				}
				tris := &triTable[cubeIndex]
				for t := 0; tris[t] != -1; t += 3 {
					mesh.Faces = append(mesh.Faces, [3]uint32{
						edgeVerts[tris[t]],
						edgeVerts[tris[t+1]],
						edgeVerts[tris[t+2]],
					})
				}
			}
		}
	}

	dvid.Debugf("Meshed %s voxels into %s vertices / %s triangles at step %d\n",
		humanize.Comma(int64(len(voxels))), humanize.Comma(int64(len(mesh.Vertices))),
		humanize.Comma(int64(len(mesh.Faces))), stepSize)
	return mesh, nil
}

// FromSparseVol meshes the voxels of a sparse volume.
func (m Mesher) FromSparseVol(vol *sparsevol.SparseVol, voxelSize dvid.NdFloat32, stepSize int) (*Mesh, error) {
	if vol == nil || vol.NumVoxels() == 0 {
		return nil, fmt.Errorf("cannot mesh empty sparse volume: %w", dvid.ErrEmptyVolume)
	}
	return m.FromVoxels(vol.Expand(), voxelSize, stepSize)
}

// FromVoxels meshes voxels with the default grid cap.  See Mesher.FromVoxels.
func FromVoxels(voxels []dvid.Point3d, voxelSize dvid.NdFloat32, stepSize int) (*Mesh, error) {
	return Mesher{}.FromVoxels(voxels, voxelSize, stepSize)
}

// FromSparseVol meshes a sparse volume with the default grid cap.
func FromSparseVol(vol *sparsevol.SparseVol, voxelSize dvid.NdFloat32, stepSize int) (*Mesh, error) {
	return Mesher{}.FromSparseVol(vol, voxelSize, stepSize)
}
