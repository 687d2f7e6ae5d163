// Package lodkit implements adaptive level-of-detail selection and
// draw-call batching for renderers that manage large object
// populations. Every frame it decides which mesh variant each
// registered object should use (driven by camera distance, object
// importance and live performance feedback), advances smooth LOD
// transitions, and compacts the frame's render list into instanced
// draw batches ordered to minimize GPU state changes.
//
// The package owns no GPU resources. Mesh, material and texture
// handles are opaque identifiers minted by the host's asset system;
// the final []RenderBatch is handed to an external graphics backend
// for submission.
package lodkit
