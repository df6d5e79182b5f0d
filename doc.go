// Package foldsum computes fast fixed-size integrity digests over 4096-byte
// messages by combining a linear XOR-fold pre-pass with one or two SM3
// compression calls.
//
// The pipeline is: message → XOR-fold (4096B → 128B or 64B) → SM3
// compression → digest. The fold stage is a strided parity reduction chosen
// for throughput, not security: it is linear and trivially invertible per
// output bit, so foldsum digests do not carry the collision resistance of a
// general-purpose cryptographic hash. All nonlinear mixing comes from the
// SM3 compression stage. Use foldsum where per-message hashing throughput
// dominates and a cheap, deterministic integrity check is sufficient.
//
// # Entry points
//
//   - Hash / Sum256 / Sum128: one message at a time.
//   - BatchHash: many messages with a transposed state layout and advisory
//     prefetch scheduling; bit-identical to per-message Hash.
//   - ParallelHash: fan-out over worker goroutines; bit-identical to
//     element-wise sequential Hash.
//
// Inputs are always exactly 4096 bytes. There is no padding or streaming
// API; wrong-size input is rejected immediately.
//
// # Fold kernels
//
// Several fold kernels (scalar, word-wise, unrolled, interleaved) produce
// bit-identical output and differ only in instruction-level parallelism. A
// default is selected at startup from CPU capabilities and can be overridden
// with the FOLDSUM_STRATEGY environment variable or per call with
// WithStrategy.
package foldsum
