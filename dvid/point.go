/*
	This file contains point and vector types used for voxel and physical
	coordinates.
*/

package dvid

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Notes:
//   Whenever the units of a type are different, e.g., a voxel coordinate
//   versus a physical nanometer position, we use a separate type to reinforce
//   the distinct natures of the values.

// Point3d is an ordered list of three 32-bit signed integers, used for voxel
// and block coordinates.
type Point3d [3]int32

// Bytes returns a byte representation of the Point3d in little endian format.
func (p Point3d) Bytes() []byte {
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:4], uint32(p[0]))
	binary.LittleEndian.PutUint32(b[4:8], uint32(p[1]))
	binary.LittleEndian.PutUint32(b[8:12], uint32(p[2]))
	return b
}

// PointFromBytes returns a Point3d from 12 bytes of little endian data.
func PointFromBytes(b []byte) (p Point3d, err error) {
	if len(b) < 12 {
		err = fmt.Errorf("cannot read Point3d from %d bytes: %w", len(b), ErrFormat)
		return
	}
	p[0] = int32(binary.LittleEndian.Uint32(b[0:4]))
	p[1] = int32(binary.LittleEndian.Uint32(b[4:8]))
	p[2] = int32(binary.LittleEndian.Uint32(b[8:12]))
	return
}

// SetMinimum sets the point to the minimum elements of current and passed points.
func (p *Point3d) SetMinimum(p2 Point3d) {
	if p[0] > p2[0] {
		p[0] = p2[0]
	}
	if p[1] > p2[1] {
		p[1] = p2[1]
	}
	if p[2] > p2[2] {
		p[2] = p2[2]
	}
}

// SetMaximum sets the point to the maximum elements of current and passed points.
func (p *Point3d) SetMaximum(p2 Point3d) {
	if p[0] < p2[0] {
		p[0] = p2[0]
	}
	if p[1] < p2[1] {
		p[1] = p2[1]
	}
	if p[2] < p2[2] {
		p[2] = p2[2]
	}
}

// Value returns the point's value for the specified dimension without checking
// dim bounds.
func (p Point3d) Value(dim uint8) int32 {
	return p[dim]
}

// Add returns the addition of two points.
func (p Point3d) Add(p2 Point3d) Point3d {
	return Point3d{p[0] + p2[0], p[1] + p2[1], p[2] + p2[2]}
}

// Sub returns the subtraction of the passed point from the receiver.
func (p Point3d) Sub(p2 Point3d) Point3d {
	return Point3d{p[0] - p2[0], p[1] - p2[1], p[2] - p2[2]}
}

// AddScalar adds a scalar value to every element of this point.
func (p Point3d) AddScalar(value int32) Point3d {
	return Point3d{p[0] + value, p[1] + value, p[2] + value}
}

// Distance returns the integer distance (rounding down).
func (p Point3d) Distance(p2 Point3d) int32 {
	dx := float64(p[0] - p2[0])
	dy := float64(p[1] - p2[1])
	dz := float64(p[2] - p2[2])
	return int32(math.Sqrt(dx*dx + dy*dy + dz*dz))
}

// Prod returns the product of the point elements.
func (p Point3d) Prod() int64 {
	return int64(p[0]) * int64(p[1]) * int64(p[2])
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// Vector3d is a floating point position or direction, e.g., a skeleton node
// position in physical space.
type Vector3d [3]float64

// Distance returns the Euclidean distance between two vectors.
func (v Vector3d) Distance(v2 Vector3d) float64 {
	dx := v[0] - v2[0]
	dy := v[1] - v2[1]
	dz := v[2] - v2[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (v Vector3d) String() string {
	return fmt.Sprintf("(%f,%f,%f)", v[0], v[1], v[2])
}

// NdFloat32 is an N-dimensional slice of float32, used for per-axis voxel
// resolutions in nanometers.
type NdFloat32 []float32

// GetMin returns the minimum element of the N-dimensional float.
func (n NdFloat32) GetMin() float32 {
	if len(n) == 0 {
		Criticalf("GetMin() called on bad ndfloat32!")
		return 0.0
	}
	min := n[0]
	for i := 1; i < len(n); i++ {
		if n[i] < min {
			min = n[i]
		}
	}
	return min
}

// GetMax returns the maximum element of the N-dimensional float.
func (n NdFloat32) GetMax() float32 {
	if len(n) == 0 {
		Criticalf("GetMax() called on bad ndfloat32!")
		return 0.0
	}
	max := n[0]
	for i := 1; i < len(n); i++ {
		if n[i] > max {
			max = n[i]
		}
	}
	return max
}

// StringToNdFloat32 parses a string of format "%f,%f,%f,..." into a slice of
// float32.
func StringToNdFloat32(str, separator string) (nd NdFloat32, err error) {
	elems := strings.Split(str, separator)
	nd = make(NdFloat32, len(elems))
	var f float64
	for i, elem := range elems {
		f, err = strconv.ParseFloat(elem, 32)
		if err != nil {
			return
		}
		nd[i] = float32(f)
	}
	return
}
