// Package session holds decoder state owned by the caller.
//
// Ownership boundary:
// - the last validated superframe header of one stream
// - per-stream frame and correction counters
// - a bounded store of named stream sessions for long-lived services
//
// A session is only updated from a header that passed RS decode, CRC check
// and validation. A failed decode never touches it.
package session
