/*
dvidtools provides the compute core for working with neuron segmentation
data served by DVID: decoding sparse-volume run-length encodings into
voxel sets, repairing and rerooting skeletons stored as SWC-like tables,
and extracting triangle meshes from voxel data.

The packages here do no network or file I/O of their own.  Byte and text
buffers are handed in by whatever HTTP client or storage layer retrieved
them, and results are handed back as structured values or canonical text.

	Raw sparse-volume bytes -> sparsevol -> mesh -> (vertices, faces)
	Raw SWC text            -> skeleton  -> heal -> reroot -> renumber -> SWC text

Supporting packages: dvid (shared kernel: points, errors, logging, data
envelope), config (explicit client parameters and segmentation instance
metadata), payload (schema-less annotation elements and their validation),
and batch (bounded-parallel drivers for per-body work).
*/
package dvidtools
