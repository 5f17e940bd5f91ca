package sparsevol

import (
	"encoding/binary"
	"errors"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"

	"github.com/flyconnectome/dvidtools/dvid"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type CodecSuite struct {
	rles     RLEs
	encoding []byte
}

var _ = Suite(&CodecSuite{})

func (s *CodecSuite) SetUpSuite(c *C) {
	s.rles = RLEs{
		{dvid.Point3d{2, 3, 4}, 20},
		{dvid.Point3d{4, 4, 4}, 14},
		{dvid.Point3d{1, 3, 5}, 20},
	}
	var err error
	s.encoding, err = s.rles.MarshalBinary()
	c.Assert(err, IsNil)
}

func (s *CodecSuite) TestRLE(c *C) {
	var obtained RLEs
	err := obtained.UnmarshalBinary(s.encoding)
	c.Assert(err, IsNil)

	for i := range s.rles {
		c.Assert(obtained[i], DeepEquals, s.rles[i])
	}

	numVoxels, numRuns := obtained.Stats()
	c.Assert(numVoxels, Equals, uint64(54))
	c.Assert(numRuns, Equals, int32(3))
}

func (s *CodecSuite) TestRLEBadSize(c *C) {
	var obtained RLEs
	err := obtained.UnmarshalBinary(s.encoding[:len(s.encoding)-3])
	c.Assert(err, NotNil)
	c.Assert(errors.Is(err, dvid.ErrFormat), Equals, true)
}

func (s *CodecSuite) TestDecode(c *C) {
	buf, err := Encode(Header{Payload: EncodingBinary, NumDims: 3, RunDim: 0}, s.rles)
	c.Assert(err, IsNil)
	c.Assert(len(buf), Equals, HeaderSize+3*RunSize)

	hdr, rles, err := Decode(buf)
	c.Assert(err, IsNil)
	c.Assert(hdr.NumDims, Equals, uint8(3))
	c.Assert(hdr.NumRuns, Equals, uint32(3))
	c.Assert(rles, DeepEquals, s.rles)
}

// TestDecodeExpansion covers the documented two-run example: runs (0,0,0,3)
// and (5,0,0,2) expand to exactly five voxels.
func (s *CodecSuite) TestDecodeExpansion(c *C) {
	rles := RLEs{
		{dvid.Point3d{0, 0, 0}, 3},
		{dvid.Point3d{5, 0, 0}, 2},
	}
	buf, err := Encode(Header{NumDims: 3}, rles)
	c.Assert(err, IsNil)

	// Header bytes: descriptor, dims, run dim, reserved, then LE run count.
	c.Assert(buf[0], Equals, byte(0))
	c.Assert(buf[1], Equals, byte(3))
	c.Assert(buf[2], Equals, byte(0))
	c.Assert(binary.LittleEndian.Uint32(buf[4:8]), Equals, uint32(2))

	_, decoded, err := Decode(buf)
	c.Assert(err, IsNil)

	voxels := decoded.Expand()
	c.Assert(voxels, DeepEquals, []dvid.Point3d{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {5, 0, 0}, {6, 0, 0},
	})

	// Expansion count equals the sum of run lengths with no duplicates.
	seen := make(map[dvid.Point3d]struct{})
	for _, pt := range voxels {
		_, dup := seen[pt]
		c.Assert(dup, Equals, false)
		seen[pt] = struct{}{}
	}
	numVoxels, _ := decoded.Stats()
	c.Assert(uint64(len(voxels)), Equals, numVoxels)
}

func (s *CodecSuite) TestDecodeShortBuffer(c *C) {
	buf, err := Encode(Header{NumDims: 3}, s.rles)
	c.Assert(err, IsNil)

	_, _, err = Decode(buf[:5])
	c.Assert(errors.Is(err, dvid.ErrFormat), Equals, true)

	// Truncated run table disagrees with the declared count.
	_, _, err = Decode(buf[:len(buf)-RunSize])
	c.Assert(errors.Is(err, dvid.ErrFormat), Equals, true)

	// So does trailing garbage.
	_, _, err = Decode(append(append([]byte{}, buf...), 0xde, 0xad))
	c.Assert(errors.Is(err, dvid.ErrFormat), Equals, true)
}

func (s *CodecSuite) TestDecodeBadDims(c *C) {
	buf, err := Encode(Header{NumDims: 3}, s.rles)
	c.Assert(err, IsNil)
	buf[1] = 2

	_, _, err = Decode(buf)
	c.Assert(errors.Is(err, dvid.ErrFormat), Equals, true)
}
