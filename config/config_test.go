package config

import (
	"errors"
	"testing"

	"github.com/flyconnectome/dvidtools/dvid"
)

const testConfig = `
[client]
server = "emdata4.int.janelia.org:8900"
node = "822524777d3048b8bd520043f90c1d28"
user = "flyem"

[logging]
logfile = "/var/log/dvidtools.log"
max_log_size = 500
max_log_age = 30

[mesher]
max_grid_voxels = 16777216
`

// testInfo mirrors the shape of a labelmap instance info response.
const testInfo = `{
	"Base": {"TypeName": "labelmap", "Name": "segmentation"},
	"Extended": {
		"VoxelSize": [8, 8, 8],
		"VoxelUnits": ["nanometers", "nanometers", "nanometers"],
		"BlockSize": [64, 64, 64],
		"MaxDownresLevel": 7
	}
}`

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig(testConfig)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if c.Client.Server != "emdata4.int.janelia.org:8900" || c.Client.User != "flyem" {
		t.Errorf("client params = %+v", c.Client)
	}
	if c.Client.Node != "822524777d3048b8bd520043f90c1d28" {
		t.Errorf("node = %q", c.Client.Node)
	}
	if c.Logging.Logfile != "/var/log/dvidtools.log" || c.Logging.MaxSize != 500 || c.Logging.MaxAge != 30 {
		t.Errorf("logging config = %+v", c.Logging)
	}
	if c.Mesher.MaxGridVoxels != 16777216 {
		t.Errorf("mesher config = %+v", c.Mesher)
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := ParseConfig("[client\nserver = 1"); !errors.Is(err, dvid.ErrParse) {
		t.Errorf("bad TOML: got %v, want ErrParse", err)
	}
	if _, err := LoadConfig(""); !errors.Is(err, dvid.ErrNotFound) {
		t.Errorf("empty filename: got %v, want ErrNotFound", err)
	}
}

func TestParseSegmentationInfo(t *testing.T) {
	info, err := ParseSegmentationInfo([]byte(testInfo))
	if err != nil {
		t.Fatalf("ParseSegmentationInfo: %v", err)
	}
	if info.Base.TypeName != "labelmap" || info.Base.Name != "segmentation" {
		t.Errorf("base = %+v", info.Base)
	}
	if info.Extended.MaxDownresLevel != 7 {
		t.Errorf("max downres level = %d", info.Extended.MaxDownresLevel)
	}

	if _, err := ParseSegmentationInfo([]byte("{")); !errors.Is(err, dvid.ErrParse) {
		t.Errorf("bad JSON: got %v, want ErrParse", err)
	}
	if _, err := ParseSegmentationInfo([]byte(`{"Extended": {"VoxelSize": [8, 8]}}`)); !errors.Is(err, dvid.ErrFormat) {
		t.Errorf("2d voxel size: got %v, want ErrFormat", err)
	}
}

func TestVoxelSizeScaling(t *testing.T) {
	info, err := ParseSegmentationInfo([]byte(testInfo))
	if err != nil {
		t.Fatalf("ParseSegmentationInfo: %v", err)
	}

	for scale, want := range map[int]float32{0: 8, 1: 16, 2: 32, 7: 1024} {
		size, err := info.VoxelSize(scale)
		if err != nil {
			t.Fatalf("VoxelSize(%d): %v", scale, err)
		}
		if size[0] != want || size[1] != want || size[2] != want {
			t.Errorf("VoxelSize(%d) = %v, want all %g", scale, size, want)
		}
	}

	for _, scale := range []int{-1, 8} {
		if _, err := info.VoxelSize(scale); !errors.Is(err, dvid.ErrNotFound) {
			t.Errorf("VoxelSize(%d): got %v, want ErrNotFound", scale, err)
		}
	}
}

func TestCoarseVoxelSize(t *testing.T) {
	info, err := ParseSegmentationInfo([]byte(testInfo))
	if err != nil {
		t.Fatalf("ParseSegmentationInfo: %v", err)
	}
	size, err := info.CoarseVoxelSize()
	if err != nil {
		t.Fatalf("CoarseVoxelSize: %v", err)
	}
	if size[0] != 512 || size[1] != 512 || size[2] != 512 {
		t.Errorf("coarse voxel size = %v, want all 512", size)
	}

	info.Extended.BlockSize = nil
	if _, err := info.CoarseVoxelSize(); !errors.Is(err, dvid.ErrFormat) {
		t.Errorf("missing block size: got %v, want ErrFormat", err)
	}
}
