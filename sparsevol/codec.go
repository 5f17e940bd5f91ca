/*
	Package sparsevol decodes and encodes the binary sparse-volume format used
	by the segmentation service, and supports operations on the resulting sets
	of voxels.

	A sparse volume is transmitted as a fixed header followed by run-length
	encoded spans:

		byte    Payload descriptor (0 = binary)
		uint8   Number of dimensions (must be 3)
		uint8   Dimension of run (typically 0 = X)
		byte    Reserved
		uint32  # Runs
		Repeating unit of:
			int32  Coordinate of run start (dimension 0)
			int32  Coordinate of run start (dimension 1)
			int32  Coordinate of run start (dimension 2)
			int32  Length of run

	All integers are little endian.  Any deviation in field width or order
	breaks decoding silently with wrong coordinates, so decoders validate the
	total buffer length against the declared run count and fail loudly.
*/
package sparsevol

import (
	"encoding/binary"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/flyconnectome/dvidtools/dvid"
)

// Sparse volume binary encoding payload descriptors.
const (
	// EncodingBinary denotes no payload bytes since a binary sparse volume is
	// defined by just start and run length.
	EncodingBinary byte = 0x00

	// EncodingGrayscale8 denotes an 8-bit grayscale payload.
	EncodingGrayscale8 = 0x01

	// EncodingGrayscale16 denotes a 16-bit grayscale payload.
	EncodingGrayscale16 = 0x02

	// EncodingNormal16 denotes 16-bit encoded normals.
	EncodingNormal16 = 0x04
)

const (
	// HeaderSize is the byte size of the fixed sparse-volume header.
	HeaderSize = 8

	// RunSize is the byte size of one run record.
	RunSize = 16
)

// Header holds the parsed fixed-size prefix of a sparse-volume encoding.
type Header struct {
	Payload byte  // payload descriptor, EncodingBinary for segmentation bodies
	NumDims uint8 // dimensionality, only 3 is supported
	RunDim  uint8 // dimension along which runs extend, 0 = X
	NumRuns uint32
}

// RLE is a single run-length encoded span with a start coordinate and length
// along a coordinate (typically X).
type RLE struct {
	start  dvid.Point3d
	length int32
}

func NewRLE(start dvid.Point3d, length int32) RLE {
	return RLE{start, length}
}

// StartPt returns the first voxel coordinate of the run.
func (rle RLE) StartPt() dvid.Point3d {
	return rle.start
}

// Length returns the number of voxels in the run.
func (rle RLE) Length() int32 {
	return rle.length
}

// RLEs are simply a slice of RLE.
type RLEs []RLE

// MarshalBinary fulfills the encoding.BinaryMarshaler interface.
func (rles RLEs) MarshalBinary() ([]byte, error) {
	b := make([]byte, len(rles)*RunSize)
	off := 0
	for _, rle := range rles {
		binary.LittleEndian.PutUint32(b[off:], uint32(rle.start[0]))
		binary.LittleEndian.PutUint32(b[off+4:], uint32(rle.start[1]))
		binary.LittleEndian.PutUint32(b[off+8:], uint32(rle.start[2]))
		binary.LittleEndian.PutUint32(b[off+12:], uint32(rle.length))
		off += RunSize
	}
	return b, nil
}

// UnmarshalBinary fulfills the encoding.BinaryUnmarshaler interface.
func (rles *RLEs) UnmarshalBinary(b []byte) error {
	lenEncoding := len(b)
	if lenEncoding%RunSize != 0 {
		return fmt.Errorf("RLE encoding # bytes is not divisible by %d: %d: %w", RunSize, len(b), dvid.ErrFormat)
	}
	numRLEs := lenEncoding / RunSize
	*rles = make(RLEs, numRLEs)
	off := 0
	for i := 0; i < numRLEs; i++ {
		(*rles)[i].start[0] = int32(binary.LittleEndian.Uint32(b[off:]))
		(*rles)[i].start[1] = int32(binary.LittleEndian.Uint32(b[off+4:]))
		(*rles)[i].start[2] = int32(binary.LittleEndian.Uint32(b[off+8:]))
		(*rles)[i].length = int32(binary.LittleEndian.Uint32(b[off+12:]))
		off += RunSize
	}
	return nil
}

// Stats returns the total number of voxels and runs.
func (rles RLEs) Stats() (numVoxels uint64, numRuns int32) {
	if len(rles) == 0 {
		return 0, 0
	}
	for _, rle := range rles {
		numVoxels += uint64(rle.length)
	}
	return numVoxels, int32(len(rles))
}

// Expand materializes every run into discrete voxel coordinates, preserving
// run order and intra-run ascending order along the run dimension.
func (rles RLEs) Expand() []dvid.Point3d {
	numVoxels, _ := rles.Stats()
	voxels := make([]dvid.Point3d, 0, numVoxels)
	for _, rle := range rles {
		for i := int32(0); i < rle.length; i++ {
			voxels = append(voxels, dvid.Point3d{rle.start[0] + i, rle.start[1], rle.start[2]})
		}
	}
	return voxels
}

// Decode parses a complete sparse-volume encoding into its header and runs.
// The buffer must hold exactly the declared number of runs; a short or
// oversized buffer or unsupported dimensionality returns dvid.ErrFormat.
func Decode(b []byte) (Header, RLEs, error) {
	var hdr Header
	if len(b) < HeaderSize {
		return hdr, nil, fmt.Errorf("sparse volume buffer only %d bytes, less than %d byte header: %w",
			len(b), HeaderSize, dvid.ErrFormat)
	}
	hdr.Payload = b[0]
	hdr.NumDims = b[1]
	hdr.RunDim = b[2]
	hdr.NumRuns = binary.LittleEndian.Uint32(b[4:8])

	if hdr.NumDims != 3 {
		return hdr, nil, fmt.Errorf("sparse volume has %d dimensions, only 3 supported: %w",
			hdr.NumDims, dvid.ErrFormat)
	}
	expected := HeaderSize + int(hdr.NumRuns)*RunSize
	if len(b) != expected {
		return hdr, nil, fmt.Errorf("sparse volume declares %d runs (%d bytes) but buffer is %d bytes: %w",
			hdr.NumRuns, expected, len(b), dvid.ErrFormat)
	}

	var rles RLEs
	if err := rles.UnmarshalBinary(b[HeaderSize:]); err != nil {
		return hdr, nil, err
	}
	dvid.Debugf("Decoded sparse volume: %s runs from %s buffer\n",
		humanize.Comma(int64(hdr.NumRuns)), humanize.Bytes(uint64(len(b))))
	return hdr, rles, nil
}

// Encode is the inverse of Decode.  The header's run count is set from the
// passed runs.
func Encode(hdr Header, rles RLEs) ([]byte, error) {
	if hdr.NumDims != 3 {
		return nil, fmt.Errorf("cannot encode sparse volume with %d dimensions: %w", hdr.NumDims, dvid.ErrFormat)
	}
	runBytes, err := rles.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b := make([]byte, HeaderSize+len(runBytes))
	b[0] = hdr.Payload
	b[1] = hdr.NumDims
	b[2] = hdr.RunDim
	binary.LittleEndian.PutUint32(b[4:8], uint32(len(rles)))
	copy(b[HeaderSize:], runBytes)
	return b, nil
}
