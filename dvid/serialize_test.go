package dvid

import (
	. "github.com/janelia-flyem/go/gocheck"
)

func (s *KernelSuite) TestSerializationFormat(c *C) {
	for _, compress := range []Compression{Uncompressed, Snappy, LZ4} {
		for _, checksum := range []Checksum{NoChecksum, CRC32} {
			format := EncodeSerializationFormat(compress, checksum)
			gotCompress, gotChecksum := DecodeSerializationFormat(format)
			c.Assert(gotCompress, Equals, compress)
			c.Assert(gotChecksum, Equals, checksum)
		}
	}
}

func (s *KernelSuite) TestSerializeRoundTrip(c *C) {
	data := []byte("It's the end of the world as we know it and I feel fine.")

	for _, compress := range []Compression{Uncompressed, Snappy, LZ4} {
		for _, checksum := range []Checksum{NoChecksum, CRC32} {
			enc, err := SerializeData(data, compress, checksum)
			c.Assert(err, IsNil)

			dec, gotCompress, err := DeserializeData(enc, true)
			c.Assert(err, IsNil)
			c.Assert(gotCompress, Equals, compress)
			c.Assert(dec, DeepEquals, data)
		}
	}
}

func (s *KernelSuite) TestBadChecksum(c *C) {
	data := []byte("some stored value")
	enc, err := SerializeData(data, Snappy, CRC32)
	c.Assert(err, IsNil)

	// Corrupt a payload byte past the format and checksum prefix.
	enc[len(enc)-1] ^= 0xff
	_, _, err = DeserializeData(enc, true)
	c.Assert(err, NotNil)
}

func (s *KernelSuite) TestDeserializeEmpty(c *C) {
	_, _, err := DeserializeData(nil, true)
	c.Assert(err, NotNil)
}
