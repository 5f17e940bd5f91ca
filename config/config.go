/*
	Package config holds explicit client parameters and segmentation
	instance metadata.  Server, node, and user are carried as values so
	multiple sessions against different servers can coexist in one process.
*/
package config

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/flyconnectome/dvidtools/dvid"
)

// Params identifies the DVID server, node, and user for a client session.
type Params struct {
	// Server is the DVID server address, e.g., "emdata4.int.janelia.org:8900".
	Server string `toml:"server"`

	// Node is the UUID of the version node being read.
	Node string `toml:"node"`

	// User is attached to requests for provenance tracking.
	User string `toml:"user"`
}

// MesherParams are guard knobs for mesh generation.
type MesherParams struct {
	// MaxGridVoxels caps the dense occupancy grid.  Zero selects the
	// built-in default.
	MaxGridVoxels int64 `toml:"max_grid_voxels"`
}

// Config is the top-level TOML client configuration.
type Config struct {
	Client  Params         `toml:"client"`
	Logging dvid.LogConfig `toml:"logging"`
	Mesher  MesherParams   `toml:"mesher"`
}

// LoadConfig loads client configuration from a TOML file.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("no TOML configuration file provided: %w", dvid.ErrNotFound)
	}
	var c Config
	if _, err := toml.DecodeFile(filename, &c); err != nil {
		return nil, fmt.Errorf("could not decode TOML config %q: %v: %w", filename, err, dvid.ErrParse)
	}
	return &c, nil
}

// ParseConfig parses client configuration from TOML text.
func ParseConfig(tomlText string) (*Config, error) {
	var c Config
	if _, err := toml.Decode(tomlText, &c); err != nil {
		return nil, fmt.Errorf("could not decode TOML config: %v: %w", err, dvid.ErrParse)
	}
	return &c, nil
}

// SegmentationInfo is the instance metadata returned by a segmentation
// data instance's info endpoint.  Only the fields the client needs are
// decoded; the rest of the payload is ignored.
type SegmentationInfo struct {
	Base struct {
		TypeName string
		Name     string
	}
	Extended struct {
		VoxelSize       dvid.NdFloat32
		VoxelUnits      []string
		BlockSize       []int32
		MaxDownresLevel int
	}
}

// ParseSegmentationInfo parses segmentation instance metadata from its JSON
// representation.
func ParseSegmentationInfo(jsonBytes []byte) (*SegmentationInfo, error) {
	var info SegmentationInfo
	if err := json.Unmarshal(jsonBytes, &info); err != nil {
		return nil, fmt.Errorf("could not parse instance info: %v: %w", err, dvid.ErrParse)
	}
	if len(info.Extended.VoxelSize) != 3 {
		return nil, fmt.Errorf("instance info has %d-d voxel size: %w",
			len(info.Extended.VoxelSize), dvid.ErrFormat)
	}
	return &info, nil
}

// VoxelSize returns the per-axis voxel size in physical units at the given
// downres scale.  Each scale level doubles the base resolution.
func (info *SegmentationInfo) VoxelSize(scale int) (dvid.NdFloat32, error) {
	if scale < 0 || scale > info.Extended.MaxDownresLevel {
		return nil, fmt.Errorf("scale %d outside downres levels 0..%d: %w",
			scale, info.Extended.MaxDownresLevel, dvid.ErrNotFound)
	}
	factor := float32(int32(1) << uint(scale))
	size := make(dvid.NdFloat32, 3)
	for i, base := range info.Extended.VoxelSize {
		size[i] = base * factor
	}
	return size, nil
}

// CoarseVoxelSize returns the physical size of one block, the voxel unit of
// coarse sparse volumes whose runs are in block coordinates.
func (info *SegmentationInfo) CoarseVoxelSize() (dvid.NdFloat32, error) {
	if len(info.Extended.BlockSize) != 3 {
		return nil, fmt.Errorf("instance info has %d-d block size: %w",
			len(info.Extended.BlockSize), dvid.ErrFormat)
	}
	size := make(dvid.NdFloat32, 3)
	for i, base := range info.Extended.VoxelSize {
		size[i] = base * float32(info.Extended.BlockSize[i])
	}
	return size, nil
}
