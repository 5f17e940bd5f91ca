/*
	Package mesh extracts triangulated isosurfaces from sparse voxel data
	using marching cubes, for visualization and volume math.  Vertices are in
	physical units (nanometers) once a per-axis voxel size is applied.

	Triangle winding is emitted as produced by the case tables and is not
	normalized; callers needing consistent orientation must reorient
	downstream.
*/
package mesh

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/flyconnectome/dvidtools/dvid"
)

// Mesh is a triangle mesh: vertex positions plus faces indexing into them.
// Every face index is < len(Vertices).
type Mesh struct {
	Vertices []dvid.Vector3d
	Faces    [][3]uint32
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int {
	return len(m.Vertices)
}

// NumFaces returns the number of triangles.
func (m *Mesh) NumFaces() int {
	return len(m.Faces)
}

// Volume returns the enclosed volume via the divergence theorem, summing
// signed tetrahedron volumes against the origin.  The result is independent
// of winding because the absolute value is taken after summation, assuming
// consistent winding per connected surface.
func (m *Mesh) Volume() float64 {
	var total float64
	for _, f := range m.Faces {
		a := m.Vertices[f[0]]
		b := m.Vertices[f[1]]
		c := m.Vertices[f[2]]
		total += a[0]*(b[1]*c[2]-b[2]*c[1]) +
			a[1]*(b[2]*c[0]-b[0]*c[2]) +
			a[2]*(b[0]*c[1]-b[1]*c[0])
	}
	return math.Abs(total) / 6.0
}

// WriteOBJ writes the mesh in Wavefront OBJ format.  OBJ face indices are
// 1-based.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(w, "v %g %g %g\n", v[0], v[1], v[2]); err != nil {
			return err
		}
	}
	for _, f := range m.Faces {
		if _, err := fmt.Fprintf(w, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1); err != nil {
			return err
		}
	}
	return nil
}

// Serialize encodes the mesh into the standard compression+checksum data
// envelope for on-disk storage or caching.
func (m *Mesh) Serialize(compress dvid.Compression, checksum dvid.Checksum) ([]byte, error) {
	data := make([]byte, 8+24*len(m.Vertices)+12*len(m.Faces))
	binary.LittleEndian.PutUint32(data[0:4], uint32(len(m.Vertices)))
	binary.LittleEndian.PutUint32(data[4:8], uint32(len(m.Faces)))
	off := 8
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			binary.LittleEndian.PutUint64(data[off:], math.Float64bits(v[i]))
			off += 8
		}
	}
	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			binary.LittleEndian.PutUint32(data[off:], f[i])
			off += 4
		}
	}
	return dvid.SerializeData(data, compress, checksum)
}

// Deserialize decodes a mesh from the data envelope written by Serialize.
func Deserialize(b []byte) (*Mesh, error) {
	data, _, err := dvid.DeserializeData(b, true)
	if err != nil {
		return nil, err
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("mesh payload only %d bytes: %w", len(data), dvid.ErrFormat)
	}
	numVerts := binary.LittleEndian.Uint32(data[0:4])
	numFaces := binary.LittleEndian.Uint32(data[4:8])
	expected := 8 + 24*int(numVerts) + 12*int(numFaces)
	if len(data) != expected {
		return nil, fmt.Errorf("mesh payload %d bytes, expected %d for %d vertices / %d faces: %w",
			len(data), expected, numVerts, numFaces, dvid.ErrFormat)
	}

	m := &Mesh{
		Vertices: make([]dvid.Vector3d, numVerts),
		Faces:    make([][3]uint32, numFaces),
	}
	off := 8
	for i := range m.Vertices {
		for j := 0; j < 3; j++ {
			m.Vertices[i][j] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
			off += 8
		}
	}
	for i := range m.Faces {
		for j := 0; j < 3; j++ {
			m.Faces[i][j] = binary.LittleEndian.Uint32(data[off:])
			off += 4
		}
		for j := 0; j < 3; j++ {
			if m.Faces[i][j] >= numVerts {
				return nil, fmt.Errorf("face %d references vertex %d of %d: %w",
					i, m.Faces[i][j], numVerts, dvid.ErrFormat)
			}
		}
	}
	return m, nil
}
