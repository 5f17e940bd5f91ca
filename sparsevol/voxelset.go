/*
	This file holds the SparseVol aggregate: a collection of runs with a
	running bounding box, plus expansion, scaling and erosion of the voxel set.
*/

package sparsevol

import (
	"fmt"
	"sort"

	"github.com/flyconnectome/dvidtools/dvid"
)

// SparseVol represents a collection of voxels that may be in an arbitrary
// shape and have a label.  It is particularly good for storing sparse voxels
// that may traverse large amounts of space.
type SparseVol struct {
	initialized bool
	numVoxels   uint64
	minPt       dvid.Point3d
	maxPt       dvid.Point3d
	label       uint64
	rles        RLEs
}

func (vol *SparseVol) MinimumPoint3d() dvid.Point3d {
	return vol.minPt
}

func (vol *SparseVol) MaximumPoint3d() dvid.Point3d {
	return vol.maxPt
}

// BoundingBox returns the inclusive per-axis minimum and maximum voxel
// coordinates of the volume.
func (vol *SparseVol) BoundingBox() (minPt, maxPt dvid.Point3d) {
	return vol.minPt, vol.maxPt
}

// Size returns the extents of the bounding box in voxels.
func (vol *SparseVol) Size() dvid.Point3d {
	if !vol.initialized {
		return dvid.Point3d{}
	}
	return dvid.Point3d{
		vol.maxPt[0] - vol.minPt[0] + 1,
		vol.maxPt[1] - vol.minPt[1] + 1,
		vol.maxPt[2] - vol.minPt[2] + 1,
	}
}

func (vol *SparseVol) RLEs() RLEs {
	return vol.rles
}

func (vol *SparseVol) NumVoxels() uint64 {
	return vol.numVoxels
}

func (vol *SparseVol) Label() uint64 {
	return vol.label
}

func (vol *SparseVol) SetLabel(label uint64) {
	vol.label = label
}

func (vol *SparseVol) Clear() {
	vol.initialized = false
	vol.numVoxels = 0
	vol.rles = vol.rles[:0]
}

// AddRLEs adds runs to the SparseVol, growing the bounding box.
func (vol *SparseVol) AddRLEs(rles RLEs) {
	for _, rle := range rles {
		vol.rles = append(vol.rles, rle)
		vol.numVoxels += uint64(rle.length)
		endPt := rle.start
		endPt[0] += rle.length - 1
		if vol.initialized {
			vol.minPt.SetMinimum(rle.start)
			vol.maxPt.SetMaximum(endPt)
		} else {
			vol.minPt = rle.start
			vol.maxPt = endPt
			vol.initialized = true
		}
	}
}

// AddSerializedRLEs adds a binary encoding of runs (with no header) to the
// SparseVol.
func (vol *SparseVol) AddSerializedRLEs(encoding []byte) error {
	var rles RLEs
	if err := rles.UnmarshalBinary(encoding); err != nil {
		return err
	}
	vol.AddRLEs(rles)
	return nil
}

// FromEncoding decodes a complete sparse-volume buffer, header included, into
// a SparseVol.
func FromEncoding(b []byte) (*SparseVol, error) {
	_, rles, err := Decode(b)
	if err != nil {
		return nil, err
	}
	vol := new(SparseVol)
	vol.AddRLEs(rles)
	return vol, nil
}

// FromVoxels builds a run-compressed SparseVol from discrete voxel
// coordinates.  Voxels are sorted (Z, Y, X) and consecutive X coordinates are
// merged into runs; duplicates collapse.
func FromVoxels(voxels []dvid.Point3d) *SparseVol {
	sorted := make([]dvid.Point3d, len(voxels))
	copy(sorted, voxels)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][2] != sorted[j][2] {
			return sorted[i][2] < sorted[j][2]
		}
		if sorted[i][1] != sorted[j][1] {
			return sorted[i][1] < sorted[j][1]
		}
		return sorted[i][0] < sorted[j][0]
	})

	vol := new(SparseVol)
	var cur RLE
	var open bool
	for _, pt := range sorted {
		switch {
		case !open:
			cur = RLE{pt, 1}
			open = true
		case pt[1] == cur.start[1] && pt[2] == cur.start[2] && pt[0] == cur.start[0]+cur.length-1:
			// duplicate of run end, skip
		case pt[1] == cur.start[1] && pt[2] == cur.start[2] && pt[0] == cur.start[0]+cur.length:
			cur.length++
		default:
			vol.AddRLEs(RLEs{cur})
			cur = RLE{pt, 1}
		}
	}
	if open {
		vol.AddRLEs(RLEs{cur})
	}
	return vol
}

// Expand materializes the volume into discrete voxel coordinates.
func (vol *SparseVol) Expand() []dvid.Point3d {
	return vol.rles.Expand()
}

// Scale converts the voxel coordinates into physical space by elementwise
// multiplication with the per-axis voxel size, e.g., nanometers for a given
// resolution scale.
func (vol *SparseVol) Scale(voxelSize dvid.NdFloat32) ([]dvid.Vector3d, error) {
	if len(voxelSize) != 3 {
		return nil, fmt.Errorf("voxel size must have 3 elements, got %d: %w", len(voxelSize), dvid.ErrFormat)
	}
	voxels := vol.Expand()
	scaled := make([]dvid.Vector3d, len(voxels))
	for i, pt := range voxels {
		scaled[i] = dvid.Vector3d{
			float64(pt[0]) * float64(voxelSize[0]),
			float64(pt[1]) * float64(voxelSize[1]),
			float64(pt[2]) * float64(voxelSize[2]),
		}
	}
	return scaled, nil
}

// 6-connected neighborhood offsets.
var neighbors6 = [6]dvid.Point3d{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Erode returns a new SparseVol holding only interior voxels: those whose six
// face neighbors are all present.  An empty result is a normal termination
// signal for callers peeling a volume down to a well-interior point, not an
// error.
func (vol *SparseVol) Erode() *SparseVol {
	voxels := vol.Expand()
	present := make(map[dvid.Point3d]struct{}, len(voxels))
	for _, pt := range voxels {
		present[pt] = struct{}{}
	}

	interior := voxels[:0]
	for _, pt := range voxels {
		keep := true
		for _, off := range neighbors6 {
			if _, found := present[pt.Add(off)]; !found {
				keep = false
				break
			}
		}
		if keep {
			interior = append(interior, pt)
		}
	}
	return FromVoxels(interior)
}
