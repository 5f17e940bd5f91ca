package dvid

import "errors"

// Sentinel errors for the dvidtools core.  Failure sites wrap these with
// fmt.Errorf("...: %w", ...) so callers can test categories with errors.Is
// while still getting specifics in the message.
var (
	// ErrFormat is returned for malformed or truncated binary buffers and
	// unsupported dimensionality in the sparse-volume wire format.
	ErrFormat = errors.New("bad binary format")

	// ErrParse is returned for malformed skeleton table rows, including
	// non-numeric fields and duplicate node ids.
	ErrParse = errors.New("bad table row")

	// ErrNotFound is returned when an operation references a node or scale
	// that does not exist, e.g., rerooting to an absent node id.
	ErrNotFound = errors.New("not found")

	// ErrEmptyVolume is returned when surface extraction is attempted on a
	// volume with no set voxels.
	ErrEmptyVolume = errors.New("empty volume")

	// ErrDisconnected indicates healing could not find an attachable root in
	// a fragment.  This should be unreachable for well-formed input and is an
	// invariant violation rather than a recoverable condition.
	ErrDisconnected = errors.New("fragment has no attachable root")

	// ErrVolumeTooLarge is returned when a dense occupancy grid would exceed
	// the configured maximum volume.
	ErrVolumeTooLarge = errors.New("volume too large")
)
