package dvid

import (
	"testing"

	. "github.com/janelia-flyem/go/gocheck"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type KernelSuite struct{}

var _ = Suite(&KernelSuite{})

func (s *KernelSuite) TestPoint3d(c *C) {
	a := Point3d{10, 21, 837821}
	b := Point3d{78312, -200, 40123}

	result := a.Add(b)
	c.Assert(result, Equals, Point3d{a[0] + b[0], a[1] + b[1], a[2] + b[2]})

	result = a.Sub(b)
	c.Assert(result, Equals, Point3d{a[0] - b[0], a[1] - b[1], a[2] - b[2]})

	d := Point3d{1, 1, 1}
	e := Point3d{4, 4, 4}
	c.Assert(d.Distance(e), Equals, int32(5))

	c.Assert(a.String(), Equals, "(10,21,837821)")

	result = a.AddScalar(10)
	c.Assert(result, Equals, Point3d{20, 31, 837831})

	minPt := a
	minPt.SetMinimum(b)
	c.Assert(minPt, Equals, Point3d{10, -200, 40123})

	maxPt := a
	maxPt.SetMaximum(b)
	c.Assert(maxPt, Equals, Point3d{78312, 21, 837821})

	c.Assert(e.Prod(), Equals, int64(64))
}

func (s *KernelSuite) TestPoint3dBytes(c *C) {
	a := Point3d{123, -42, 190001}
	b := a.Bytes()
	c.Assert(len(b), Equals, 12)

	read, err := PointFromBytes(b)
	c.Assert(err, IsNil)
	c.Assert(read, Equals, a)

	_, err = PointFromBytes(b[:7])
	c.Assert(err, NotNil)
}

func (s *KernelSuite) TestVector3d(c *C) {
	v := Vector3d{0, 3, 4}
	c.Assert(v.Distance(Vector3d{0, 0, 0}), Equals, float64(5))
}

func (s *KernelSuite) TestNdFloat32(c *C) {
	res, err := StringToNdFloat32("8.0,8.0,32.0", ",")
	c.Assert(err, IsNil)
	c.Assert(res.GetMin(), Equals, float32(8.0))
	c.Assert(res.GetMax(), Equals, float32(32.0))
}
