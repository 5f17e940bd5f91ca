package mesh

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/flyconnectome/dvidtools/dvid"
	"github.com/flyconnectome/dvidtools/sparsevol"
)

// cubeVoxels returns a filled n x n x n cube of voxels anchored at origin.
func cubeVoxels(n int32) []dvid.Point3d {
	voxels := make([]dvid.Point3d, 0, n*n*n)
	for z := int32(0); z < n; z++ {
		for y := int32(0); y < n; y++ {
			for x := int32(0); x < n; x++ {
				voxels = append(voxels, dvid.Point3d{x, y, z})
			}
		}
	}
	return voxels
}

func checkFaces(t *testing.T, m *Mesh) {
	t.Helper()
	if m.NumFaces() == 0 {
		t.Fatal("mesh has no faces")
	}
	for i, f := range m.Faces {
		for _, v := range f {
			if v >= uint32(m.NumVertices()) {
				t.Fatalf("face %d references vertex %d of %d", i, v, m.NumVertices())
			}
		}
	}
}

func TestMeshSingleVoxel(t *testing.T) {
	m, err := FromVoxels([]dvid.Point3d{{5, 5, 5}}, nil, 1)
	if err != nil {
		t.Fatalf("FromVoxels: %v", err)
	}
	checkFaces(t, m)

	// A lone voxel meshes into the octahedron of its six edge midpoints.
	if m.NumVertices() != 6 || m.NumFaces() != 8 {
		t.Errorf("got %d vertices / %d faces, want 6 / 8", m.NumVertices(), m.NumFaces())
	}
	for _, v := range m.Vertices {
		for axis := 0; axis < 3; axis++ {
			if v[axis] < 4.5 || v[axis] > 5.5 {
				t.Errorf("vertex %v outside voxel neighborhood", v)
			}
		}
	}
	if vol := m.Volume(); math.Abs(vol-1.0/6.0) > 1e-9 {
		t.Errorf("octahedron volume = %g, want 1/6", vol)
	}
}

func TestMeshCubeScaled(t *testing.T) {
	m, err := FromVoxels(cubeVoxels(3), dvid.NdFloat32{8, 8, 8}, 1)
	if err != nil {
		t.Fatalf("FromVoxels: %v", err)
	}
	checkFaces(t, m)

	// Voxels span [0,2], so surface vertices stay within [-0.5, 2.5]
	// voxel units, scaled by 8 nm.
	for _, v := range m.Vertices {
		for axis := 0; axis < 3; axis++ {
			if v[axis] < -4 || v[axis] > 20 {
				t.Errorf("vertex %v outside scaled bounding region", v)
			}
		}
	}
}

func TestMeshVolume(t *testing.T) {
	m, err := FromVoxels(cubeVoxels(3), nil, 1)
	if err != nil {
		t.Fatalf("FromVoxels: %v", err)
	}
	// The surface encloses the 2-unit sample cube plus a chamfered margin,
	// so the volume lands strictly between 2^3 and 3^3.
	vol := m.Volume()
	if vol <= 8 || vol >= 27 {
		t.Errorf("cube mesh volume = %g, want within (8, 27)", vol)
	}
}

func TestMeshStepSize(t *testing.T) {
	voxels := cubeVoxels(6)
	fine, err := FromVoxels(voxels, nil, 1)
	if err != nil {
		t.Fatalf("step 1: %v", err)
	}
	coarse, err := FromVoxels(voxels, nil, 2)
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}
	checkFaces(t, fine)
	checkFaces(t, coarse)
	if coarse.NumFaces() >= fine.NumFaces() {
		t.Errorf("step 2 mesh has %d faces, step 1 has %d", coarse.NumFaces(), fine.NumFaces())
	}
}

func TestMeshBadArgs(t *testing.T) {
	voxels := []dvid.Point3d{{0, 0, 0}}
	if _, err := FromVoxels(voxels, nil, 0); !errors.Is(err, dvid.ErrFormat) {
		t.Errorf("step size 0: got %v, want ErrFormat", err)
	}
	if _, err := FromVoxels(voxels, dvid.NdFloat32{8, 8}, 1); !errors.Is(err, dvid.ErrFormat) {
		t.Errorf("2d voxel size: got %v, want ErrFormat", err)
	}
}

func TestMeshEmpty(t *testing.T) {
	if _, err := FromVoxels(nil, nil, 1); !errors.Is(err, dvid.ErrEmptyVolume) {
		t.Errorf("no voxels: got %v, want ErrEmptyVolume", err)
	}
	if _, err := FromSparseVol(nil, nil, 1); !errors.Is(err, dvid.ErrEmptyVolume) {
		t.Errorf("nil sparse volume: got %v, want ErrEmptyVolume", err)
	}
	if _, err := FromSparseVol(new(sparsevol.SparseVol), nil, 1); !errors.Is(err, dvid.ErrEmptyVolume) {
		t.Errorf("empty sparse volume: got %v, want ErrEmptyVolume", err)
	}
}

func TestMeshTooLarge(t *testing.T) {
	m := Mesher{MaxGridVoxels: 10}
	voxels := []dvid.Point3d{{0, 0, 0}, {100, 100, 100}}
	if _, err := m.FromVoxels(voxels, nil, 1); !errors.Is(err, dvid.ErrVolumeTooLarge) {
		t.Errorf("got %v, want ErrVolumeTooLarge", err)
	}
}

func TestMeshFromSparseVol(t *testing.T) {
	vol := sparsevol.FromVoxels(cubeVoxels(2))
	m, err := FromSparseVol(vol, dvid.NdFloat32{8, 8, 32}, 1)
	if err != nil {
		t.Fatalf("FromSparseVol: %v", err)
	}
	checkFaces(t, m)
}

func TestMeshSerializeRoundTrip(t *testing.T) {
	m, err := FromVoxels(cubeVoxels(2), nil, 1)
	if err != nil {
		t.Fatalf("FromVoxels: %v", err)
	}
	for _, compress := range []dvid.Compression{dvid.Uncompressed, dvid.Snappy, dvid.LZ4} {
		b, err := m.Serialize(compress, dvid.CRC32)
		if err != nil {
			t.Fatalf("%s: Serialize: %v", compress, err)
		}
		got, err := Deserialize(b)
		if err != nil {
			t.Fatalf("%s: Deserialize: %v", compress, err)
		}
		if got.NumVertices() != m.NumVertices() || got.NumFaces() != m.NumFaces() {
			t.Fatalf("%s: round trip %d/%d, want %d/%d", compress,
				got.NumVertices(), got.NumFaces(), m.NumVertices(), m.NumFaces())
		}
		for i, v := range got.Vertices {
			if v != m.Vertices[i] {
				t.Fatalf("%s: vertex %d = %v, want %v", compress, i, v, m.Vertices[i])
			}
		}
		for i, f := range got.Faces {
			if f != m.Faces[i] {
				t.Fatalf("%s: face %d = %v, want %v", compress, i, f, m.Faces[i])
			}
		}
	}
}

func TestDeserializeBadPayload(t *testing.T) {
	m := &Mesh{
		Vertices: []dvid.Vector3d{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:    [][3]uint32{{0, 1, 5}},
	}
	b, err := m.Serialize(dvid.Uncompressed, dvid.NoChecksum)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, err := Deserialize(b); !errors.Is(err, dvid.ErrFormat) {
		t.Errorf("out-of-range face index: got %v, want ErrFormat", err)
	}

	if _, err := Deserialize([]byte{byte(dvid.EncodeSerializationFormat(dvid.Uncompressed, dvid.NoChecksum)), 1, 2}); err == nil {
		t.Error("truncated payload deserialized without error")
	}
}

func TestWriteOBJ(t *testing.T) {
	m := &Mesh{
		Vertices: []dvid.Vector3d{{0, 0, 0}, {8, 0, 0}, {0, 8, 0}},
		Faces:    [][3]uint32{{0, 1, 2}},
	}
	var buf bytes.Buffer
	if err := m.WriteOBJ(&buf); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	want := "v 0 0 0\nv 8 0 0\nv 0 8 0\nf 1 2 3\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
